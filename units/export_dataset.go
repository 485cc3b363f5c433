package units

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/planner"
	"github.com/evergreen-ci/pail"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	exportDatasetJobName = "export-dataset"

	splitTrain      = "train"
	splitValidation = "validation"
	splitTest       = "test"
)

type exportDatasetJob struct {
	DatasetID string               `bson:"dataset_id" json:"dataset_id" yaml:"dataset_id"`
	Format    model.FileDataFormat `bson:"format" json:"format" yaml:"format"`

	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`
	env      flightpath.Environment
}

func init() {
	registry.AddJobType(exportDatasetJobName, func() amboy.Job { return makeExportDatasetJob() })
}

func makeExportDatasetJob() *exportDatasetJob {
	j := &exportDatasetJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    exportDatasetJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

func (j *exportDatasetJob) validate() error {
	if j.DatasetID == "" {
		return errors.New("no dataset id given")
	}

	switch j.Format {
	case model.FileCSV, model.FileParquet:
		return nil
	default:
		return errors.Errorf("cannot export dataset as '%s'", j.Format)
	}
}

// NewExportDatasetJob returns a job that partitions a completed dataset into
// training, validation, and test subsets and writes one file per subset to
// the dataset bucket.
func NewExportDatasetJob(datasetID string, format model.FileDataFormat) (amboy.Job, error) {
	j := makeExportDatasetJob()
	j.DatasetID = datasetID
	j.Format = format

	if err := j.validate(); err != nil {
		return nil, errors.Wrap(err, "failed to create new export dataset job")
	}

	j.SetID(fmt.Sprintf("%s.%s.%s", exportDatasetJobName, datasetID, format))

	return j, nil
}

func (j *exportDatasetJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = flightpath.GetEnvironment()
	}

	if err := j.validate(); err != nil {
		j.AddError(err)
		return
	}

	dataset := &model.DatasetRecord{ID: j.DatasetID}
	dataset.Setup(j.env)
	if err := dataset.Find(); err != nil {
		j.AddError(errors.Wrap(err, "problem finding dataset record"))
		return
	}
	if dataset.State != model.DatasetStateCompleted {
		j.AddError(errors.Errorf("cannot export dataset in state %s", dataset.State))
		return
	}

	exported, err := j.downloadTrajectories(ctx, dataset)
	if err != nil {
		j.AddError(err)
		return
	}

	splits := splitTrajectories(exported, dataset.Info.Splits, dataset.Info.Seed)

	conf := model.NewFlightpathConfig(j.env)
	if err = conf.Find(); err != nil {
		j.AddError(errors.Wrap(err, "problem getting application configuration"))
		return
	}
	bucketType := conf.Bucket.Type
	if bucketType == "" {
		bucketType = model.PailLocal
	}
	bucket, err := bucketType.Create(ctx, j.env, conf.Bucket.DatasetBucket, dataset.ID, string(pail.S3PermissionsPrivate))
	if err != nil {
		j.AddError(errors.Wrap(err, "problem creating bucket"))
		return
	}

	artifacts := make([]model.ArtifactInfo, 0, len(splits))
	for _, split := range []string{splitTrain, splitValidation, splitTest} {
		path := fmt.Sprintf("%s.%s", split, j.Format)

		switch j.Format {
		case model.FileCSV:
			buf := &bytes.Buffer{}
			if err = writeTrajectoryCSV(buf, dataset.Info.SamplesPerRoute, splits[split]); err != nil {
				j.AddError(errors.Wrapf(err, "problem writing %s subset", split))
				return
			}
			if err = bucket.Put(ctx, path, bytes.NewReader(buf.Bytes())); err != nil {
				j.AddError(errors.Wrapf(err, "problem uploading %s subset", split))
				return
			}
		case model.FileParquet:
			if err = j.putParquet(ctx, bucket, path, dataset.Info.Scenario, split, splits[split]); err != nil {
				j.AddError(errors.Wrapf(err, "problem uploading %s subset", split))
				return
			}
		}

		artifacts = append(artifacts, model.ArtifactInfo{
			Type:        bucketType,
			Bucket:      conf.Bucket.DatasetBucket,
			Prefix:      dataset.ID,
			Path:        path,
			Format:      j.Format,
			Compression: model.FileUncompressed,
			Schema:      model.SchemaDatasetSplit,
			Tags:        []string{split},
			CreatedAt:   time.Now(),
		})
	}

	if err = dataset.AppendArtifacts(artifacts); err != nil {
		j.AddError(errors.Wrap(err, "problem recording export artifacts"))
		return
	}

	grip.Warning(message.WrapError(j.env.GetStatsCache(flightpath.StatsCacheExport).AddStat(flightpath.Stat{
		Count:   len(exported),
		Dataset: dataset.ID,
	}), "failed to add stat"))

	grip.Info(message.Fields{
		"job_name":     exportDatasetJobName,
		"id":           j.DatasetID,
		"format":       j.Format,
		"trajectories": len(exported),
		"message":      "dataset export complete",
	})
}

func (j *exportDatasetJob) downloadTrajectories(ctx context.Context, dataset *model.DatasetRecord) ([]exportedTrajectory, error) {
	exported := make([]exportedTrajectory, 0, len(dataset.Trajectories))

	for _, id := range dataset.Trajectories {
		record := &model.TrajectoryRecord{ID: id}
		record.Setup(j.env)
		if err := record.Find(); err != nil {
			return nil, errors.Wrapf(err, "problem finding trajectory record %s", id)
		}

		route, err := record.DownloadRoute(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "problem downloading route for trajectory %s", id)
		}

		exported = append(exported, exportedTrajectory{
			ID:    record.ID,
			Info:  record.Info,
			Route: route,
		})
	}

	return exported, nil
}

func (j *exportDatasetJob) putParquet(ctx context.Context, bucket pail.Bucket, path, scenario, split string, rows []exportedTrajectory) error {
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("%s.%s.%s", j.DatasetID, split, "parquet"))
	defer func() {
		grip.Warning(message.WrapError(os.Remove(tmp), "failed to remove temporary parquet file"))
	}()

	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return errors.Wrap(err, "creating local file writer")
	}

	pw, err := writer.NewParquetWriter(fw, new(model.ParquetRouteSample), 4)
	if err != nil {
		return errors.Wrap(err, "creating new parquet writer")
	}
	for _, row := range rows {
		for seq, point := range row.Route {
			err = pw.Write(model.ParquetRouteSample{
				SampleID: row.ID,
				Scenario: scenario,
				Method:   row.Info.Method,
				Split:    split,
				Seq:      int32(seq),
				X:        point.X,
				Y:        point.Y,
				Z:        point.Z,
			})
			if err != nil {
				return errors.Wrapf(err, "writing waypoint %d of trajectory %s", seq, row.ID)
			}
		}
	}
	if err = pw.WriteStop(); err != nil {
		return errors.Wrap(err, "stopping parquet writer")
	}
	if err = fw.Close(); err != nil {
		return errors.Wrap(err, "closing local file writer")
	}

	file, err := os.Open(tmp)
	if err != nil {
		return errors.Wrap(err, "opening parquet file")
	}
	defer file.Close()

	return errors.Wrap(bucket.Put(ctx, path, file), "uploading parquet file")
}

// exportedTrajectory pairs a trajectory record with its downloaded route.
type exportedTrajectory struct {
	ID    string
	Info  model.TrajectoryInfo
	Route []planner.Waypoint
}

// splitTrajectories deterministically shuffles the trajectories with the
// dataset seed and partitions them by the split ratios. Leftover rows from
// integer truncation land in the test subset.
func splitTrajectories(exported []exportedTrajectory, ratios model.SplitRatios, seed int64) map[string][]exportedTrajectory {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(exported))

	trainN := int(float64(len(exported)) * ratios.Train)
	validationN := int(float64(len(exported)) * ratios.Validation)

	splits := map[string][]exportedTrajectory{
		splitTrain:      {},
		splitValidation: {},
		splitTest:       {},
	}
	for i, idx := range perm {
		switch {
		case i < trainN:
			splits[splitTrain] = append(splits[splitTrain], exported[idx])
		case i < trainN+validationN:
			splits[splitValidation] = append(splits[splitValidation], exported[idx])
		default:
			splits[splitTest] = append(splits[splitTest], exported[idx])
		}
	}

	return splits
}

// writeTrajectoryCSV writes one row per trajectory with flattened waypoint
// columns.
func writeTrajectoryCSV(w io.Writer, samples int, rows []exportedTrajectory) error {
	out := csv.NewWriter(w)

	header := []string{"sample_id", "start_x", "start_y", "start_z", "end_x", "end_y", "end_z", "method_type"}
	for i := 0; i < samples; i++ {
		header = append(header,
			fmt.Sprintf("point_%d_x", i),
			fmt.Sprintf("point_%d_y", i),
			fmt.Sprintf("point_%d_z", i),
		)
	}
	if err := out.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for _, row := range rows {
		if len(row.Route) != samples {
			return errors.Errorf("trajectory %s has %d waypoints, expected %d", row.ID, len(row.Route), samples)
		}

		start := row.Route[0]
		end := row.Route[len(row.Route)-1]
		record := []string{
			row.ID,
			formatCoord(start.X), formatCoord(start.Y), formatCoord(start.Z),
			formatCoord(end.X), formatCoord(end.Y), formatCoord(end.Z),
			row.Info.Method,
		}
		for _, point := range row.Route {
			record = append(record, formatCoord(point.X), formatCoord(point.Y), formatCoord(point.Z))
		}
		if err := out.Write(record); err != nil {
			return errors.Wrapf(err, "writing trajectory %s", row.ID)
		}
	}

	out.Flush()
	return errors.Wrap(out.Error(), "flushing csv writer")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
