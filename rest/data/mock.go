package data

import (
	dbmodel "github.com/evergreen-ci/flightpath/model"
)

// MockConnector is a struct that implements the Connector interface backed
// by in-memory caches, for testing the route handlers without a database.
type MockConnector struct {
	CachedTrajectories map[string]dbmodel.TrajectoryRecord
	CachedDatasets     map[string]dbmodel.DatasetRecord

	// ScheduledJobs records the ids of jobs the connector would have
	// enqueued.
	ScheduledJobs []string
}

func CreateMockConnector() *MockConnector {
	return &MockConnector{
		CachedTrajectories: map[string]dbmodel.TrajectoryRecord{},
		CachedDatasets:     map[string]dbmodel.DatasetRecord{},
	}
}
