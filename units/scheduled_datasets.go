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

const scheduledDatasetsJobName = "scheduled-datasets-sweep"

func init() {
	registry.AddJobType(scheduledDatasetsJobName,
		func() amboy.Job { return makeScheduledDatasetsJob() })
}

type scheduledDatasetsJob struct {
	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`

	env   flightpath.Environment
	queue amboy.Queue
}

func makeScheduledDatasetsJob() *scheduledDatasetsJob {
	j := &scheduledDatasetsJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    scheduledDatasetsJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

// NewScheduledDatasetsJob returns a job that enqueues a build job for every
// dataset still in the scheduled state.
func NewScheduledDatasetsJob(id string) amboy.Job {
	j := makeScheduledDatasetsJob()
	j.SetID(fmt.Sprintf("%s.%s", scheduledDatasetsJobName, id))
	return j
}

func (j *scheduledDatasetsJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = flightpath.GetEnvironment()
	}
	if j.queue == nil {
		j.queue = j.env.GetRemoteQueue()
	}

	datasets := &model.DatasetRecords{}
	datasets.Setup(j.env)
	if err := datasets.Find(model.DatasetFindOptions{State: model.DatasetStateScheduled}); err != nil {
		j.AddError(errors.Wrap(err, "problem finding scheduled datasets"))
		return
	}

	for _, dataset := range datasets.Records {
		build, err := NewDatasetBuildJob(dataset.ID)
		if err != nil {
			j.AddError(errors.Wrapf(err, "problem creating build job for dataset %s", dataset.ID))
			continue
		}

		// a repeat put for a dataset that is still scheduled is
		// expected between sweeps
		grip.Debug(message.WrapError(j.queue.Put(ctx, build), message.Fields{
			"job_name": scheduledDatasetsJobName,
			"dataset":  dataset.ID,
			"message":  "could not enqueue dataset build",
		}))
	}

	grip.InfoWhen(len(datasets.Records) > 0, message.Fields{
		"job_name": scheduledDatasetsJobName,
		"count":    len(datasets.Records),
		"message":  "enqueued builds for scheduled datasets",
	})
}
