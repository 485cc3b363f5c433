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

const (
	generateTrajectoryJobName = "generate-trajectory"

	maxTrajectorySamples = 1000
	maxObstacleCount     = 50
)

type generateTrajectoryJob struct {
	Info      model.TrajectoryInfo `bson:"info" json:"info" yaml:"info"`
	Obstacles int                  `bson:"obstacles" json:"obstacles" yaml:"obstacles"`

	job.Base `bson:"metadata" json:"metadata" yaml:"metadata"`
	env      flightpath.Environment
}

func init() {
	registry.AddJobType(generateTrajectoryJobName, func() amboy.Job { return makeGenerateTrajectoryJob() })
}

func makeGenerateTrajectoryJob() *generateTrajectoryJob {
	j := &generateTrajectoryJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    generateTrajectoryJobName,
				Version: 1,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

func (j *generateTrajectoryJob) validate() error {
	if j.Info.Scenario == "" {
		return errors.New("no scenario given")
	}

	if !planner.ValidRouteMethod(j.Info.Method) {
		return errors.Errorf("invalid route method '%s'", j.Info.Method)
	}

	if j.Info.Samples < 2 || j.Info.Samples > maxTrajectorySamples {
		return errors.Errorf("samples must be between 2 and %d", maxTrajectorySamples)
	}

	if j.Obstacles < 0 || j.Obstacles > maxObstacleCount {
		return errors.Errorf("obstacle count must be between 0 and %d", maxObstacleCount)
	}

	return nil
}

// NewGenerateTrajectoryJob returns a job that generates a single trajectory,
// uploads its waypoints to blob storage, and records it in the database.
func NewGenerateTrajectoryJob(info model.TrajectoryInfo, obstacles int) (amboy.Job, error) {
	j := makeGenerateTrajectoryJob()
	j.Info = info
	j.Obstacles = obstacles

	if err := j.validate(); err != nil {
		return nil, errors.Wrap(err, "failed to create new generate trajectory job")
	}

	j.SetID(fmt.Sprintf("%s.%s.%s", generateTrajectoryJobName, info.ID(), time.Now().Format(tsFormat)))

	return j, nil
}

func (j *generateTrajectoryJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = flightpath.GetEnvironment()
	}

	if err := j.validate(); err != nil {
		j.AddError(err)
		return
	}

	record, err := generateAndSaveTrajectory(ctx, j.env, j.Info, j.Obstacles)
	if err != nil {
		j.AddError(err)
		return
	}

	grip.Info(message.Fields{
		"job_name": generateTrajectoryJobName,
		"id":       record.ID,
		"scenario": j.Info.Scenario,
		"method":   j.Info.Method,
		"samples":  j.Info.Samples,
		"message":  "generated trajectory",
	})
}

// generateAndSaveTrajectory runs the route generator for the given info,
// persists the record, uploads the waypoint artifacts, and closes the record
// with its quality summary.
func generateAndSaveTrajectory(ctx context.Context, env flightpath.Environment, info model.TrajectoryInfo, obstacleCount int) (*model.TrajectoryRecord, error) {
	factory := planner.RouteFactoryFromMethod(info.Method)
	if factory == nil {
		return nil, errors.Errorf("problem resolving route factory for method %s", info.Method)
	}

	g := planner.NewGenerator(info.Seed)

	start, end := info.Start, info.End
	if start == end {
		start, end = g.RandomRoutePair(planner.DefaultBounds().MaxX / 2)
		info.Start, info.End = start, end
	}

	opts := planner.RouteOptions{
		Start:     start,
		End:       end,
		Samples:   info.Samples,
		Obstacles: g.SampleObstacles(obstacleCount, start, end),
	}

	route, err := factory.Generate(g, opts)
	if err != nil {
		return nil, errors.Wrap(err, "problem generating route")
	}

	record := model.CreateTrajectoryRecord(info, nil)
	record.Setup(env)
	if err = record.SaveNew(); err != nil {
		return nil, errors.Wrap(err, "problem saving trajectory record")
	}

	if err = record.UploadRoute(ctx, route); err != nil {
		return nil, errors.Wrap(err, "problem uploading route artifacts")
	}

	if err = record.Close(time.Now(), planner.Summarize(route)); err != nil {
		return nil, errors.Wrap(err, "problem closing trajectory record")
	}

	grip.Warning(message.WrapError(env.GetStatsCache(flightpath.StatsCacheGeneration).AddStat(flightpath.Stat{
		Count:    1,
		Scenario: info.Scenario,
		Method:   info.Method,
	}), "failed to add stat"))

	return record, nil
}
