package units

import (
	"context"
	"fmt"

	"github.com/evergreen-ci/flightpath"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
)

const jasperManagerCleanupJobName = "jasper-manager-cleanup"

func init() {
	registry.AddJobType(jasperManagerCleanupJobName,
		func() amboy.Job { return makeJasperManagerCleanup() })
}

type jasperManagerCleanup struct {
	job.Base `bson:"job_base" json:"job_base" yaml:"job_base"`
	env      flightpath.Environment
}

// NewJasperManagerCleanup reaps terminated subprocesses tracked by the
// environment's jasper manager.
func NewJasperManagerCleanup(id string, env flightpath.Environment) amboy.Job {
	j := makeJasperManagerCleanup()
	j.env = env
	j.SetID(fmt.Sprintf("%s.%s", jasperManagerCleanupJobName, id))
	return j
}

func makeJasperManagerCleanup() *jasperManagerCleanup {
	j := &jasperManagerCleanup{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    jasperManagerCleanupJobName,
				Version: 0,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

func (j *jasperManagerCleanup) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = flightpath.GetEnvironment()
	}

	j.env.Jasper().Clear(ctx)
}
