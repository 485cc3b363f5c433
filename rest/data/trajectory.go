package data

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	dbmodel "github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/rest/model"
	"github.com/evergreen-ci/flightpath/units"
	"github.com/evergreen-ci/gimlet"
	"github.com/pkg/errors"
)

/////////////////////////////
// DBConnector Implementation
/////////////////////////////

// FindTrajectoryRecordByID queries the database to find the trajectory
// record with the given id.
func (dbc *DBConnector) FindTrajectoryRecordByID(ctx context.Context, id string) (*model.APITrajectoryRecord, error) {
	record := dbmodel.TrajectoryRecord{ID: id}
	record.Setup(dbc.env)
	if err := record.Find(); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("failed to find trajectory record '%s'", id),
		}
	}

	apiRecord := model.APITrajectoryRecord{}
	if err := apiRecord.Import(record); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("corrupt data for trajectory record '%s'", id),
		}
	}
	return &apiRecord, nil
}

// FindTrajectoryRecords queries the database for the trajectory records
// matching the given filter.
func (dbc *DBConnector) FindTrajectoryRecords(ctx context.Context, opts TrajectoryFilterOptions) ([]model.APITrajectoryRecord, error) {
	records := dbmodel.TrajectoryRecords{}
	records.Setup(dbc.env)
	if err := records.Find(dbmodel.TrajectoryFindOptions{
		Scenario: opts.Scenario,
		Method:   opts.Method,
		Limit:    opts.Limit,
	}); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("failed to find trajectory records for scenario '%s'", opts.Scenario),
		}
	}
	if records.IsNil() || len(records.Records) == 0 {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("no trajectory records found for scenario '%s'", opts.Scenario),
		}
	}

	return importTrajectoryRecords(records.Records)
}

// RemoveTrajectoryRecord removes the trajectory record with the given id
// from the database.
func (dbc *DBConnector) RemoveTrajectoryRecord(ctx context.Context, id string) error {
	record := dbmodel.TrajectoryRecord{ID: id}
	record.Setup(dbc.env)
	if err := record.Remove(); err != nil {
		return gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("failed to remove trajectory record '%s'", id),
		}
	}
	return nil
}

// ScheduleTrajectoryGeneration enqueues one generation job per requested
// trajectory on the remote queue.
func (dbc *DBConnector) ScheduleTrajectoryGeneration(ctx context.Context, opts GenerationOptions) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	queue := dbc.env.GetRemoteQueue()
	if queue == nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    "no remote queue configured",
		}
	}

	jobIDs := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		info := dbmodel.TrajectoryInfo{
			Scenario: opts.Scenario,
			Method:   opts.Method,
			Seed:     opts.Seed + int64(i),
			Samples:  opts.Points,
			Tags:     opts.Tags,
		}

		j, err := units.NewGenerateTrajectoryJob(info, opts.Obstacles)
		if err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusBadRequest,
				Message:    errors.Wrap(err, "invalid generation request").Error(),
			}
		}
		if err = queue.Put(ctx, j); err != nil {
			return jobIDs, gimlet.ErrorResponse{
				StatusCode: http.StatusInternalServerError,
				Message:    fmt.Sprintf("failed to enqueue generation job for scenario '%s'", opts.Scenario),
			}
		}
		jobIDs = append(jobIDs, j.ID())
	}

	return jobIDs, nil
}

///////////////////////////////
// MockConnector Implementation
///////////////////////////////

// FindTrajectoryRecordByID returns the trajectory record with the given id
// from the mock cache.
func (mc *MockConnector) FindTrajectoryRecordByID(ctx context.Context, id string) (*model.APITrajectoryRecord, error) {
	record, ok := mc.CachedTrajectories[id]
	if !ok {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("failed to find trajectory record '%s'", id),
		}
	}

	apiRecord := model.APITrajectoryRecord{}
	if err := apiRecord.Import(record); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("corrupt data for trajectory record '%s'", id),
		}
	}
	return &apiRecord, nil
}

// FindTrajectoryRecords returns the trajectory records matching the given
// filter from the mock cache.
func (mc *MockConnector) FindTrajectoryRecords(ctx context.Context, opts TrajectoryFilterOptions) ([]model.APITrajectoryRecord, error) {
	var matched []dbmodel.TrajectoryRecord
	for _, record := range mc.CachedTrajectories {
		if opts.Scenario != "" && record.Info.Scenario != opts.Scenario {
			continue
		}
		if opts.Method != "" && record.Info.Method != opts.Method {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	if len(matched) == 0 {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("no trajectory records found for scenario '%s'", opts.Scenario),
		}
	}

	return importTrajectoryRecords(matched)
}

// RemoveTrajectoryRecord removes the trajectory record with the given id
// from the mock cache.
func (mc *MockConnector) RemoveTrajectoryRecord(ctx context.Context, id string) error {
	delete(mc.CachedTrajectories, id)
	return nil
}

// ScheduleTrajectoryGeneration records the generation jobs that would have
// been enqueued.
func (mc *MockConnector) ScheduleTrajectoryGeneration(ctx context.Context, opts GenerationOptions) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	jobIDs := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		info := dbmodel.TrajectoryInfo{
			Scenario: opts.Scenario,
			Method:   opts.Method,
			Seed:     opts.Seed + int64(i),
			Samples:  opts.Points,
			Tags:     opts.Tags,
		}

		j, err := units.NewGenerateTrajectoryJob(info, opts.Obstacles)
		if err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusBadRequest,
				Message:    errors.Wrap(err, "invalid generation request").Error(),
			}
		}
		mc.ScheduledJobs = append(mc.ScheduledJobs, j.ID())
		jobIDs = append(jobIDs, j.ID())
	}

	return jobIDs, nil
}

func importTrajectoryRecords(records []dbmodel.TrajectoryRecord) ([]model.APITrajectoryRecord, error) {
	apiRecords := make([]model.APITrajectoryRecord, len(records))
	for i, record := range records {
		if err := apiRecords[i].Import(record); err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusInternalServerError,
				Message:    fmt.Sprintf("corrupt data for trajectory record '%s'", record.ID),
			}
		}
	}
	return apiRecords, nil
}
