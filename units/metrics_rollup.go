package units

import (
	"context"
	"fmt"
	"time"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/planner"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const metricsRollupJobName = "metrics-rollup"

type metricsRollupJob struct {
	TrajectoryID string `bson:"trajectory_id" json:"trajectory_id" yaml:"trajectory_id"`

	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`
	env      flightpath.Environment
}

func init() {
	registry.AddJobType(metricsRollupJobName, func() amboy.Job { return makeMetricsRollupJob() })
}

func makeMetricsRollupJob() *metricsRollupJob {
	j := &metricsRollupJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    metricsRollupJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

// NewMetricsRollupJob returns a job that recomputes the quality summary of
// a trajectory from its stored waypoint stream.
func NewMetricsRollupJob(trajectoryID string) (amboy.Job, error) {
	if trajectoryID == "" {
		return nil, errors.New("no trajectory id given")
	}

	j := makeMetricsRollupJob()
	j.TrajectoryID = trajectoryID
	j.SetID(fmt.Sprintf("%s.%s.%s", metricsRollupJobName, trajectoryID, time.Now().Format(tsFormat)))

	return j, nil
}

func (j *metricsRollupJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = flightpath.GetEnvironment()
	}

	record := &model.TrajectoryRecord{ID: j.TrajectoryID}
	record.Setup(j.env)
	if err := record.Find(); err != nil {
		j.AddError(errors.Wrap(err, "problem finding trajectory record"))
		return
	}

	route, err := record.DownloadRoute(ctx)
	if err != nil {
		j.AddError(errors.Wrap(err, "problem downloading route"))
		return
	}

	summary := planner.Summarize(route)
	if err := record.Close(time.Now(), summary); err != nil {
		j.AddError(errors.Wrap(err, "problem updating trajectory summary"))
		return
	}

	grip.Info(message.Fields{
		"job_name":    metricsRollupJobName,
		"id":          j.TrajectoryID,
		"path_length": summary.PathLength,
		"efficiency":  summary.PathEfficiency,
		"message":     "recomputed trajectory summary",
	})
}
