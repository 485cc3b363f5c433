package data

import (
	"context"

	"github.com/evergreen-ci/flightpath/rest/model"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

const (
	minGenerationCount = 1
	maxGenerationCount = 20
	minRoutePoints     = 10
	maxRoutePoints     = 100
)

// Connector abstracts the link between the REST API and the service layer,
// allowing for changes in the service architecture without forcing changes
// to the API.
type Connector interface {
	//////////////////
	// Trajectories
	//////////////////
	// FindTrajectoryRecordByID returns the trajectory record with the
	// given id.
	FindTrajectoryRecordByID(context.Context, string) (*model.APITrajectoryRecord, error)
	// FindTrajectoryRecords returns the trajectory records matching the
	// given filter, most recently created first.
	FindTrajectoryRecords(context.Context, TrajectoryFilterOptions) ([]model.APITrajectoryRecord, error)
	// RemoveTrajectoryRecord removes the trajectory record with the
	// given id.
	RemoveTrajectoryRecord(context.Context, string) error
	// ScheduleTrajectoryGeneration enqueues background generation jobs
	// and returns their ids.
	ScheduleTrajectoryGeneration(context.Context, GenerationOptions) ([]string, error)

	//////////////////
	// Datasets
	//////////////////
	// CreateDataset records a new scheduled dataset build.
	CreateDataset(context.Context, DatasetOptions) (*model.APIDatasetRecord, error)
	// FindDatasetByID returns the dataset record with the given id.
	FindDatasetByID(context.Context, string) (*model.APIDatasetRecord, error)
	// FindDatasets returns the dataset records matching the given
	// filter, most recently created first.
	FindDatasets(context.Context, DatasetFilterOptions) ([]model.APIDatasetRecord, error)
	// ScheduleDatasetExport enqueues an export job for a completed
	// dataset and returns the job id.
	ScheduleDatasetExport(context.Context, string, string) (string, error)
}

// TrajectoryFilterOptions describe the search criteria for trajectory
// records.
type TrajectoryFilterOptions struct {
	Scenario string
	Method   string
	Limit    int
}

// GenerationOptions describe a batch of trajectories to generate in the
// background. Count trajectories are generated with consecutive seeds
// starting from Seed, each sampled at Points waypoints.
type GenerationOptions struct {
	Scenario  string   `json:"scenario"`
	Method    string   `json:"method"`
	Seed      int64    `json:"seed"`
	Count     int      `json:"count"`
	Points    int      `json:"points"`
	Obstacles int      `json:"obstacles"`
	Tags      []string `json:"tags"`
}

// Validate checks the bounds on a generation request.
func (opts *GenerationOptions) Validate() error {
	catcher := grip.NewBasicCatcher()

	if opts.Scenario == "" {
		catcher.Add(errors.New("must specify a scenario"))
	}
	if opts.Count < minGenerationCount || opts.Count > maxGenerationCount {
		catcher.Add(errors.Errorf("count must be between %d and %d", minGenerationCount, maxGenerationCount))
	}
	if opts.Points < minRoutePoints || opts.Points > maxRoutePoints {
		catcher.Add(errors.Errorf("points must be between %d and %d", minRoutePoints, maxRoutePoints))
	}

	return catcher.Resolve()
}

// DatasetOptions describe a new dataset build.
type DatasetOptions struct {
	Scenario        string               `json:"scenario"`
	Methods         []string             `json:"methods"`
	SamplesPerRoute int                  `json:"samples_per_route"`
	RoutesPerMethod int                  `json:"routes_per_method"`
	Seed            int64                `json:"seed"`
	Splits          model.APISplitRatios `json:"splits"`
}

// DatasetFilterOptions describe the search criteria for dataset records.
type DatasetFilterOptions struct {
	Scenario string
	State    string
	Limit    int
}
