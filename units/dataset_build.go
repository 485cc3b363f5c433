package units

import (
	"context"
	"fmt"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/model"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const datasetBuildJobName = "dataset-build"

type datasetBuildJob struct {
	DatasetID string `bson:"dataset_id" json:"dataset_id" yaml:"dataset_id"`

	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`
	env      flightpath.Environment
}

func init() {
	registry.AddJobType(datasetBuildJobName, func() amboy.Job { return makeDatasetBuildJob() })
}

func makeDatasetBuildJob() *datasetBuildJob {
	j := &datasetBuildJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    datasetBuildJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

// NewDatasetBuildJob returns a job that generates every trajectory of a
// scheduled dataset build and moves the dataset through its lifecycle.
func NewDatasetBuildJob(datasetID string) (amboy.Job, error) {
	if datasetID == "" {
		return nil, errors.New("no dataset id given")
	}

	j := makeDatasetBuildJob()
	j.DatasetID = datasetID
	j.SetID(fmt.Sprintf("%s.%s", datasetBuildJobName, datasetID))

	return j, nil
}

func (j *datasetBuildJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = flightpath.GetEnvironment()
	}

	dataset := &model.DatasetRecord{ID: j.DatasetID}
	dataset.Setup(j.env)
	if err := dataset.Find(); err != nil {
		j.AddError(errors.Wrap(err, "problem finding dataset record"))
		return
	}

	if dataset.State != model.DatasetStateScheduled {
		grip.Info(message.Fields{
			"job_name": datasetBuildJobName,
			"id":       j.DatasetID,
			"state":    dataset.State,
			"message":  "dataset is not scheduled, nothing to do",
		})
		return
	}

	if err := dataset.SetState(model.DatasetStateGenerating); err != nil {
		j.AddError(errors.Wrap(err, "problem starting dataset build"))
		return
	}

	if err := j.generateTrajectories(ctx, dataset); err != nil {
		j.AddError(err)
		j.AddError(errors.Wrap(dataset.SetFailed(err.Error()), "problem marking dataset failed"))
		return
	}

	if err := dataset.SetState(model.DatasetStateCompleted); err != nil {
		j.AddError(errors.Wrap(err, "problem completing dataset build"))
		return
	}

	grip.Info(message.Fields{
		"job_name":     datasetBuildJobName,
		"id":           j.DatasetID,
		"scenario":     dataset.Info.Scenario,
		"trajectories": len(dataset.Info.Methods) * dataset.Info.RoutesPerMethod,
		"message":      "dataset build complete",
	})
}

func (j *datasetBuildJob) generateTrajectories(ctx context.Context, dataset *model.DatasetRecord) error {
	catcher := grip.NewBasicCatcher()

	var ids []string
	for methodIdx, method := range dataset.Info.Methods {
		for routeIdx := 0; routeIdx < dataset.Info.RoutesPerMethod; routeIdx++ {
			if err := ctx.Err(); err != nil {
				catcher.Add(errors.Wrap(err, "dataset build interrupted"))
				return catcher.Resolve()
			}

			info := model.TrajectoryInfo{
				Scenario: dataset.Info.Scenario,
				Method:   method,
				Seed:     dataset.Info.Seed + int64(methodIdx*dataset.Info.RoutesPerMethod+routeIdx),
				Samples:  dataset.Info.SamplesPerRoute,
				Tags:     []string{fmt.Sprintf("dataset:%s", dataset.ID)},
			}

			record, err := generateAndSaveTrajectory(ctx, j.env, info, 0)
			if err != nil {
				catcher.Add(errors.Wrapf(err, "problem generating %s trajectory %d", method, routeIdx))
				continue
			}
			ids = append(ids, record.ID)
		}
	}

	catcher.Add(errors.Wrap(dataset.AppendTrajectories(ids), "problem recording generated trajectories"))

	return catcher.Resolve()
}
