package data

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	dbmodel "github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/planner"
	"github.com/evergreen-ci/flightpath/rest/model"
	"github.com/evergreen-ci/flightpath/units"
	"github.com/evergreen-ci/gimlet"
	"github.com/pkg/errors"
)

// resolveDatasetInfo applies defaults to and validates a dataset request
// before it is written to the database.
func resolveDatasetInfo(opts DatasetOptions) (dbmodel.DatasetInfo, error) {
	info := dbmodel.DatasetInfo{
		Scenario:        opts.Scenario,
		Methods:         opts.Methods,
		SamplesPerRoute: opts.SamplesPerRoute,
		RoutesPerMethod: opts.RoutesPerMethod,
		Seed:            opts.Seed,
		Splits:          opts.Splits.Export(),
	}

	if info.Scenario == "" {
		return info, errors.New("must specify a scenario")
	}
	if len(info.Methods) == 0 {
		info.Methods = planner.DefaultRouteMethods()
	}
	for _, method := range info.Methods {
		if !planner.ValidRouteMethod(method) {
			return info, errors.Errorf("invalid route method '%s'", method)
		}
	}
	if info.SamplesPerRoute < minRoutePoints || info.SamplesPerRoute > maxRoutePoints {
		return info, errors.Errorf("samples per route must be between %d and %d", minRoutePoints, maxRoutePoints)
	}
	if info.RoutesPerMethod <= 0 {
		return info, errors.New("must request at least one route per method")
	}
	if info.Splits == (dbmodel.SplitRatios{}) {
		info.Splits = dbmodel.DefaultSplitRatios()
	}
	if err := info.Splits.Validate(); err != nil {
		return info, errors.Wrap(err, "invalid split ratios")
	}

	return info, nil
}

/////////////////////////////
// DBConnector Implementation
/////////////////////////////

// CreateDataset saves a new scheduled dataset record to the database. The
// background sweep picks scheduled records up and builds them.
func (dbc *DBConnector) CreateDataset(ctx context.Context, opts DatasetOptions) (*model.APIDatasetRecord, error) {
	info, err := resolveDatasetInfo(opts)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	record := dbmodel.CreateDatasetRecord(info)
	record.Setup(dbc.env)
	if err = record.SaveNew(); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    fmt.Sprintf("failed to save dataset record '%s'", record.ID),
		}
	}

	apiRecord := model.APIDatasetRecord{}
	if err = apiRecord.Import(*record); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("corrupt data for dataset record '%s'", record.ID),
		}
	}
	return &apiRecord, nil
}

// FindDatasetByID queries the database to find the dataset record with the
// given id.
func (dbc *DBConnector) FindDatasetByID(ctx context.Context, id string) (*model.APIDatasetRecord, error) {
	record := dbmodel.DatasetRecord{ID: id}
	record.Setup(dbc.env)
	if err := record.Find(); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("failed to find dataset record '%s'", id),
		}
	}

	apiRecord := model.APIDatasetRecord{}
	if err := apiRecord.Import(record); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("corrupt data for dataset record '%s'", id),
		}
	}
	return &apiRecord, nil
}

// FindDatasets queries the database for the dataset records matching the
// given filter.
func (dbc *DBConnector) FindDatasets(ctx context.Context, opts DatasetFilterOptions) ([]model.APIDatasetRecord, error) {
	if opts.State != "" {
		if err := dbmodel.DatasetState(opts.State).Validate(); err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusBadRequest,
				Message:    err.Error(),
			}
		}
	}

	records := dbmodel.DatasetRecords{}
	records.Setup(dbc.env)
	if err := records.Find(dbmodel.DatasetFindOptions{
		Scenario: opts.Scenario,
		State:    dbmodel.DatasetState(opts.State),
		Limit:    opts.Limit,
	}); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    "failed to find dataset records",
		}
	}

	return importDatasetRecords(records.Records)
}

// ScheduleDatasetExport enqueues an export job for the dataset with the
// given id on the remote queue.
func (dbc *DBConnector) ScheduleDatasetExport(ctx context.Context, id, format string) (string, error) {
	record := dbmodel.DatasetRecord{ID: id}
	record.Setup(dbc.env)
	if err := record.Find(); err != nil {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("failed to find dataset record '%s'", id),
		}
	}
	if record.State != dbmodel.DatasetStateCompleted {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("dataset '%s' is not completed, current state is '%s'", id, record.State),
		}
	}

	j, err := units.NewExportDatasetJob(id, dbmodel.FileDataFormat(format))
	if err != nil {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    errors.Wrap(err, "invalid export request").Error(),
		}
	}

	queue := dbc.env.GetRemoteQueue()
	if queue == nil {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    "no remote queue configured",
		}
	}
	if err = queue.Put(ctx, j); err != nil {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("failed to enqueue export job for dataset '%s'", id),
		}
	}

	return j.ID(), nil
}

///////////////////////////////
// MockConnector Implementation
///////////////////////////////

// CreateDataset records a new scheduled dataset record in the mock cache.
func (mc *MockConnector) CreateDataset(ctx context.Context, opts DatasetOptions) (*model.APIDatasetRecord, error) {
	info, err := resolveDatasetInfo(opts)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	record := dbmodel.CreateDatasetRecord(info)
	if _, ok := mc.CachedDatasets[record.ID]; ok {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    fmt.Sprintf("failed to save dataset record '%s'", record.ID),
		}
	}
	mc.CachedDatasets[record.ID] = *record

	apiRecord := model.APIDatasetRecord{}
	if err = apiRecord.Import(*record); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("corrupt data for dataset record '%s'", record.ID),
		}
	}
	return &apiRecord, nil
}

// FindDatasetByID returns the dataset record with the given id from the
// mock cache.
func (mc *MockConnector) FindDatasetByID(ctx context.Context, id string) (*model.APIDatasetRecord, error) {
	record, ok := mc.CachedDatasets[id]
	if !ok {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("failed to find dataset record '%s'", id),
		}
	}

	apiRecord := model.APIDatasetRecord{}
	if err := apiRecord.Import(record); err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("corrupt data for dataset record '%s'", id),
		}
	}
	return &apiRecord, nil
}

// FindDatasets returns the dataset records matching the given filter from
// the mock cache.
func (mc *MockConnector) FindDatasets(ctx context.Context, opts DatasetFilterOptions) ([]model.APIDatasetRecord, error) {
	if opts.State != "" {
		if err := dbmodel.DatasetState(opts.State).Validate(); err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusBadRequest,
				Message:    err.Error(),
			}
		}
	}

	var matched []dbmodel.DatasetRecord
	for _, record := range mc.CachedDatasets {
		if opts.Scenario != "" && record.Info.Scenario != opts.Scenario {
			continue
		}
		if opts.State != "" && record.State != dbmodel.DatasetState(opts.State) {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	return importDatasetRecords(matched)
}

// ScheduleDatasetExport records the export job that would have been
// enqueued.
func (mc *MockConnector) ScheduleDatasetExport(ctx context.Context, id, format string) (string, error) {
	record, ok := mc.CachedDatasets[id]
	if !ok {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("failed to find dataset record '%s'", id),
		}
	}
	if record.State != dbmodel.DatasetStateCompleted {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("dataset '%s' is not completed, current state is '%s'", id, record.State),
		}
	}

	j, err := units.NewExportDatasetJob(id, dbmodel.FileDataFormat(format))
	if err != nil {
		return "", gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    errors.Wrap(err, "invalid export request").Error(),
		}
	}
	mc.ScheduledJobs = append(mc.ScheduledJobs, j.ID())

	return j.ID(), nil
}

func importDatasetRecords(records []dbmodel.DatasetRecord) ([]model.APIDatasetRecord, error) {
	apiRecords := make([]model.APIDatasetRecord, len(records))
	for i, record := range records {
		if err := apiRecords[i].Import(record); err != nil {
			return nil, gimlet.ErrorResponse{
				StatusCode: http.StatusInternalServerError,
				Message:    fmt.Sprintf("corrupt data for dataset record '%s'", record.ID),
			}
		}
	}
	return apiRecords, nil
}
