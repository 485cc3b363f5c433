package units

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrajectoryInfo() model.TrajectoryInfo {
	return model.TrajectoryInfo{
		Scenario: "urban-delivery",
		Method:   planner.RouteBezier,
		Seed:     42,
		Samples:  50,
		Start:    planner.Waypoint{X: -500, Y: -500, Z: 100},
		End:      planner.Waypoint{X: 500, Y: 500, Z: 200},
	}
}

func TestNewGenerateTrajectoryJob(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		j, err := NewGenerateTrajectoryJob(validTrajectoryInfo(), 5)
		require.NoError(t, err)
		assert.Contains(t, j.ID(), generateTrajectoryJobName)
	})
	t.Run("missing scenario", func(t *testing.T) {
		info := validTrajectoryInfo()
		info.Scenario = ""
		_, err := NewGenerateTrajectoryJob(info, 0)
		assert.Error(t, err)
	})
	t.Run("invalid method", func(t *testing.T) {
		info := validTrajectoryInfo()
		info.Method = "great-circle"
		_, err := NewGenerateTrajectoryJob(info, 0)
		assert.Error(t, err)
	})
	t.Run("too many samples", func(t *testing.T) {
		info := validTrajectoryInfo()
		info.Samples = maxTrajectorySamples + 1
		_, err := NewGenerateTrajectoryJob(info, 0)
		assert.Error(t, err)
	})
	t.Run("negative obstacles", func(t *testing.T) {
		_, err := NewGenerateTrajectoryJob(validTrajectoryInfo(), -1)
		assert.Error(t, err)
	})
}

func TestNewDatasetJobs(t *testing.T) {
	t.Run("build requires id", func(t *testing.T) {
		_, err := NewDatasetBuildJob("")
		assert.Error(t, err)
	})
	t.Run("build id embeds dataset", func(t *testing.T) {
		j, err := NewDatasetBuildJob("abc123")
		require.NoError(t, err)
		assert.Equal(t, "dataset-build.abc123", j.ID())
	})
	t.Run("export requires id", func(t *testing.T) {
		_, err := NewExportDatasetJob("", model.FileCSV)
		assert.Error(t, err)
	})
	t.Run("export rejects unsupported formats", func(t *testing.T) {
		_, err := NewExportDatasetJob("abc123", model.FileText)
		assert.Error(t, err)
	})
	t.Run("export accepts csv and parquet", func(t *testing.T) {
		for _, format := range []model.FileDataFormat{model.FileCSV, model.FileParquet} {
			_, err := NewExportDatasetJob("abc123", format)
			assert.NoError(t, err)
		}
	})
	t.Run("rollup requires id", func(t *testing.T) {
		_, err := NewMetricsRollupJob("")
		assert.Error(t, err)
	})
}

func makeExported(n int, samples int) []exportedTrajectory {
	g := planner.NewGenerator(11)
	out := make([]exportedTrajectory, n)
	for i := range out {
		start, end := g.RandomRoutePair(200)
		route := make([]planner.Waypoint, samples)
		for s := range route {
			route[s] = start.Lerp(end, float64(s)/float64(samples-1))
		}
		info := validTrajectoryInfo()
		info.Seed = int64(i)
		out[i] = exportedTrajectory{ID: info.ID(), Info: info, Route: route}
	}
	return out
}

func TestSplitTrajectories(t *testing.T) {
	exported := makeExported(20, 10)
	ratios := model.DefaultSplitRatios()

	splits := splitTrajectories(exported, ratios, 7)
	assert.Len(t, splits[splitTrain], 14)
	assert.Len(t, splits[splitValidation], 3)
	assert.Len(t, splits[splitTest], 3)

	t.Run("deterministic", func(t *testing.T) {
		again := splitTrajectories(exported, ratios, 7)
		assert.Equal(t, splits, again)
	})
	t.Run("different seed shuffles differently", func(t *testing.T) {
		other := splitTrajectories(exported, ratios, 8)
		assert.NotEqual(t, splits[splitTrain], other[splitTrain])
	})
	t.Run("partition is disjoint and complete", func(t *testing.T) {
		seen := map[string]int{}
		for _, subset := range splits {
			for _, row := range subset {
				seen[row.ID]++
			}
		}
		assert.Len(t, seen, len(exported))
		for _, count := range seen {
			assert.Equal(t, 1, count)
		}
	})
}

func TestWriteTrajectoryCSV(t *testing.T) {
	exported := makeExported(3, 5)

	buf := &bytes.Buffer{}
	require.NoError(t, writeTrajectoryCSV(buf, 5, exported))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header := records[0]
	assert.Equal(t, "sample_id", header[0])
	assert.Equal(t, "method_type", header[7])
	assert.Equal(t, "point_0_x", header[8])
	assert.Equal(t, "point_4_z", header[len(header)-1])
	assert.Len(t, header, 8+5*3)

	for i, row := range records[1:] {
		assert.Equal(t, exported[i].ID, row[0])
		assert.Equal(t, exported[i].Info.Method, row[7])
		assert.Len(t, row, len(header))
		// start columns match the first waypoint columns
		assert.Equal(t, row[1], row[8])
		assert.Equal(t, row[2], row[9])
		assert.Equal(t, row[3], row[10])
	}

	t.Run("sample count mismatch", func(t *testing.T) {
		assert.Error(t, writeTrajectoryCSV(&bytes.Buffer{}, 6, exported))
	})
}
