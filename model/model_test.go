package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evergreen-ci/flightpath/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrajectoryInfoID(t *testing.T) {
	info := TrajectoryInfo{
		Scenario: "urban-delivery",
		Method:   planner.RouteBezier,
		Seed:     42,
		Samples:  50,
		Start:    planner.Waypoint{X: -500, Y: -500, Z: 100},
		End:      planner.Waypoint{X: 500, Y: 500, Z: 200},
		Tags:     []string{"b", "a"},
	}

	t.Run("stable", func(t *testing.T) {
		assert.Equal(t, info.ID(), info.ID())
	})
	t.Run("tag order does not matter", func(t *testing.T) {
		other := info
		other.Tags = []string{"a", "b"}
		assert.Equal(t, info.ID(), other.ID())
	})
	t.Run("changed fields change the id", func(t *testing.T) {
		for _, mutate := range []func(*TrajectoryInfo){
			func(i *TrajectoryInfo) { i.Scenario = "mountain-survey" },
			func(i *TrajectoryInfo) { i.Method = planner.RouteSpline },
			func(i *TrajectoryInfo) { i.Seed = 43 },
			func(i *TrajectoryInfo) { i.Samples = 51 },
			func(i *TrajectoryInfo) { i.Start.X++ },
			func(i *TrajectoryInfo) { i.End.Z++ },
		} {
			other := info
			mutate(&other)
			assert.NotEqual(t, info.ID(), other.ID())
		}
	})
	t.Run("unsupported schema panics", func(t *testing.T) {
		other := info
		other.Schema = 1
		assert.Panics(t, func() { other.ID() })
	})
}

func TestDatasetInfoID(t *testing.T) {
	info := DatasetInfo{
		Scenario:        "urban-delivery",
		Methods:         []string{planner.RouteSpline, planner.RouteBezier},
		SamplesPerRoute: 50,
		RoutesPerMethod: 10,
		Seed:            7,
		Splits:          DefaultSplitRatios(),
	}

	assert.Equal(t, info.ID(), info.ID())

	reordered := info
	reordered.Methods = []string{planner.RouteBezier, planner.RouteSpline}
	assert.Equal(t, info.ID(), reordered.ID())

	other := info
	other.Seed = 8
	assert.NotEqual(t, info.ID(), other.ID())
}

func TestSplitRatiosValidate(t *testing.T) {
	assert.NoError(t, DefaultSplitRatios().Validate())
	assert.NoError(t, SplitRatios{Train: 0.8, Validation: 0.1, Test: 0.1}.Validate())
	assert.NoError(t, SplitRatios{Train: 1}.Validate())

	assert.Error(t, SplitRatios{}.Validate())
	assert.Error(t, SplitRatios{Train: 0.7, Validation: 0.2, Test: 0.2}.Validate())
	assert.Error(t, SplitRatios{Train: 1.2, Validation: -0.1, Test: -0.1}.Validate())
}

func TestDatasetStateTransitions(t *testing.T) {
	assert.True(t, validStateTransition(DatasetStateScheduled, DatasetStateGenerating))
	assert.True(t, validStateTransition(DatasetStateScheduled, DatasetStateFailed))
	assert.True(t, validStateTransition(DatasetStateGenerating, DatasetStateCompleted))
	assert.True(t, validStateTransition(DatasetStateGenerating, DatasetStateFailed))

	assert.False(t, validStateTransition(DatasetStateScheduled, DatasetStateCompleted))
	assert.False(t, validStateTransition(DatasetStateCompleted, DatasetStateGenerating))
	assert.False(t, validStateTransition(DatasetStateFailed, DatasetStateScheduled))

	assert.Error(t, DatasetState("pending").Validate())
	assert.NoError(t, DatasetStateCompleted.Validate())
}

func TestFileFormats(t *testing.T) {
	for _, format := range []FileDataFormat{FileFTDC, FileBSON, FileJSON, FileCSV, FileParquet, FileText} {
		assert.NoError(t, format.Validate())
	}
	assert.Error(t, FileDataFormat("xml").Validate())

	assert.NoError(t, FileUncompressed.Validate())
	assert.Error(t, FileCompression("lz4").Validate())

	assert.NoError(t, SchemaRawRoute.Validate())
	assert.Error(t, FileSchema("histogram").Validate())
}

func TestArtifactInfoValidate(t *testing.T) {
	artifact := ArtifactInfo{
		Type:        PailLocal,
		Bucket:      "flightpath-test",
		Path:        "routes.ftdc",
		Format:      FileFTDC,
		Compression: FileUncompressed,
		Schema:      SchemaRawRoute,
	}
	assert.NoError(t, artifact.Validate())

	missingBucket := artifact
	missingBucket.Bucket = ""
	assert.Error(t, missingBucket.Validate())

	badFormat := artifact
	badFormat.Format = "xml"
	assert.Error(t, badFormat.Validate())
}

func TestLoadFlightpathConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFlightpathConfig(filepath.Join(t.TempDir(), "DNE.yaml"))
		assert.Error(t, err)
	})
	t.Run("invalid yaml", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "conf.yaml")
		require.NoError(t, os.WriteFile(file, []byte("{{{"), 0600))
		_, err := LoadFlightpathConfig(file)
		assert.Error(t, err)
	})
	t.Run("valid config", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "conf.yaml")
		data := []byte(`
bucket:
  type: local
  trajectory_bucket: traj
  dataset_bucket: ds
flags:
  disable_background_generation: true
`)
		require.NoError(t, os.WriteFile(file, data, 0600))

		conf, err := LoadFlightpathConfig(file)
		require.NoError(t, err)
		assert.False(t, conf.IsNil())
		assert.Equal(t, PailLocal, conf.Bucket.Type)
		assert.Equal(t, "traj", conf.Bucket.TrajectoryBucket)
		assert.True(t, conf.Flags.DisableBackgroundGeneration)
	})
}
