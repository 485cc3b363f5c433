package rest

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/planner"
	"github.com/evergreen-ci/flightpath/rest/data"
	datamodel "github.com/evergreen-ci/flightpath/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/suite"
)

type DatasetHandlerSuite struct {
	sc         data.MockConnector
	rh         map[string]gimlet.RouteHandler
	apiRecords map[string]datamodel.APIDatasetRecord

	suite.Suite
}

func (s *DatasetHandlerSuite) SetupTest() {
	s.sc = data.MockConnector{
		CachedDatasets: map[string]model.DatasetRecord{
			"done": {
				ID:          "done",
				State:       model.DatasetStateCompleted,
				CreatedAt:   time.Date(2026, time.April, 1, 1, 1, 0, 0, time.UTC),
				CompletedAt: time.Date(2026, time.April, 1, 2, 1, 0, 0, time.UTC),
				Info: model.DatasetInfo{
					Scenario:        "urban-delivery",
					Methods:         planner.DefaultRouteMethods(),
					SamplesPerRoute: 50,
					RoutesPerMethod: 10,
					Seed:            42,
					Splits:          model.DefaultSplitRatios(),
				},
			},
			"pending": {
				ID:        "pending",
				State:     model.DatasetStateScheduled,
				CreatedAt: time.Date(2026, time.April, 2, 1, 1, 0, 0, time.UTC),
				Info: model.DatasetInfo{
					Scenario:        "survey",
					Methods:         []string{planner.RouteSpline},
					SamplesPerRoute: 20,
					RoutesPerMethod: 5,
					Seed:            7,
					Splits:          model.DefaultSplitRatios(),
				},
			},
		},
	}
	s.rh = map[string]gimlet.RouteHandler{
		"create": makeCreateDataset(&s.sc),
		"id":     makeGetDatasetByID(&s.sc),
		"list":   makeListDatasets(&s.sc),
		"export": makeExportDataset(&s.sc),
	}
	s.apiRecords = map[string]datamodel.APIDatasetRecord{}
	for key, val := range s.sc.CachedDatasets {
		apiRecord := datamodel.APIDatasetRecord{}
		s.Require().NoError(apiRecord.Import(val))
		s.apiRecords[key] = apiRecord
	}
}

func TestDatasetHandlerSuite(t *testing.T) {
	suite.Run(t, new(DatasetHandlerSuite))
}

func (s *DatasetHandlerSuite) TestGetByIDHandlerFound() {
	rh := s.rh["id"]
	rh.(*datasetGetByIDHandler).id = "done"
	expected := s.apiRecords["done"]

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Require().NotNil(resp.Data())
	s.Equal(&expected, resp.Data())
}

func (s *DatasetHandlerSuite) TestGetByIDHandlerNotFound() {
	rh := s.rh["id"]
	rh.(*datasetGetByIDHandler).id = "DNE"

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.NotEqual(http.StatusOK, resp.Status())
}

func (s *DatasetHandlerSuite) TestListHandler() {
	rh := s.rh["list"]
	rh.(*datasetListHandler).opts = data.DatasetFilterOptions{}
	expected := []datamodel.APIDatasetRecord{
		s.apiRecords["pending"],
		s.apiRecords["done"],
	}

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Equal(expected, resp.Data())
}

func (s *DatasetHandlerSuite) TestListHandlerFiltersByState() {
	rh := s.rh["list"]
	rh.(*datasetListHandler).opts = data.DatasetFilterOptions{
		State: string(model.DatasetStateCompleted),
	}
	expected := []datamodel.APIDatasetRecord{s.apiRecords["done"]}

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Equal(expected, resp.Data())
}

func (s *DatasetHandlerSuite) TestListHandlerRejectsInvalidState() {
	rh := s.rh["list"]
	rh.(*datasetListHandler).opts = data.DatasetFilterOptions{State: "sideways"}

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.NotEqual(http.StatusOK, resp.Status())
}

func (s *DatasetHandlerSuite) TestCreateHandlerParse() {
	rh := s.rh["create"].Factory()

	body := bytes.NewBufferString(`{"scenario":"coastal","methods":["bezier"],"samples_per_route":30,"routes_per_method":4,"seed":9}`)
	req := httptest.NewRequest(http.MethodPost, "/dataset", body)
	s.Require().NoError(rh.Parse(context.TODO(), req))

	opts := rh.(*datasetCreateHandler).opts
	s.Equal("coastal", opts.Scenario)
	s.Equal([]string{planner.RouteBezier}, opts.Methods)
	s.Equal(30, opts.SamplesPerRoute)
	s.Equal(4, opts.RoutesPerMethod)
	s.Equal(int64(9), opts.Seed)
}

func (s *DatasetHandlerSuite) TestCreateHandlerSchedulesBuild() {
	rh := s.rh["create"]
	rh.(*datasetCreateHandler).opts = data.DatasetOptions{
		Scenario:        "coastal",
		Methods:         []string{planner.RouteBezier},
		SamplesPerRoute: 30,
		RoutesPerMethod: 4,
		Seed:            9,
	}

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())

	record, ok := resp.Data().(*datamodel.APIDatasetRecord)
	s.Require().True(ok)
	s.Equal(string(model.DatasetStateScheduled), utility.FromStringPtr(record.State))
	s.Contains(s.sc.CachedDatasets, utility.FromStringPtr(record.ID))

	// default splits applied when omitted
	s.InDelta(0.7, record.Info.Splits.Train, 1e-9)

	// a second identical request conflicts
	resp = rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.NotEqual(http.StatusOK, resp.Status())
}

func (s *DatasetHandlerSuite) TestCreateHandlerRejectsBadOptions() {
	for _, opts := range []data.DatasetOptions{
		{Methods: []string{planner.RouteBezier}, SamplesPerRoute: 30, RoutesPerMethod: 4},
		{Scenario: "coastal", Methods: []string{"great-circle"}, SamplesPerRoute: 30, RoutesPerMethod: 4},
		{Scenario: "coastal", Methods: []string{planner.RouteBezier}, SamplesPerRoute: 5, RoutesPerMethod: 4},
		{Scenario: "coastal", Methods: []string{planner.RouteBezier}, SamplesPerRoute: 30, RoutesPerMethod: 0},
		{
			Scenario:        "coastal",
			Methods:         []string{planner.RouteBezier},
			SamplesPerRoute: 30,
			RoutesPerMethod: 4,
			Splits:          datamodel.APISplitRatios{Train: 0.5, Validation: 0.1, Test: 0.1},
		},
	} {
		rh := s.rh["create"]
		rh.(*datasetCreateHandler).opts = opts

		resp := rh.Run(context.TODO())
		s.Require().NotNil(resp)
		s.NotEqual(http.StatusOK, resp.Status())
	}
}

func (s *DatasetHandlerSuite) TestExportHandlerParse() {
	rh := s.rh["export"].Factory()

	body := bytes.NewBufferString(`{"format":"csv"}`)
	req := httptest.NewRequest(http.MethodPost, "/dataset/done/export", body)
	s.Require().NoError(rh.Parse(context.TODO(), req))
	s.Equal("csv", rh.(*datasetExportHandler).format)
}

func (s *DatasetHandlerSuite) TestExportHandlerSchedulesJob() {
	rh := s.rh["export"]
	rh.(*datasetExportHandler).id = "done"
	rh.(*datasetExportHandler).format = string(model.FileCSV)

	before := len(s.sc.ScheduledJobs)
	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Len(s.sc.ScheduledJobs, before+1)
}

func (s *DatasetHandlerSuite) TestExportHandlerRejectsIncompleteDataset() {
	rh := s.rh["export"]
	rh.(*datasetExportHandler).id = "pending"
	rh.(*datasetExportHandler).format = string(model.FileCSV)

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.NotEqual(http.StatusOK, resp.Status())
}

func (s *DatasetHandlerSuite) TestExportHandlerRejectsBadFormat() {
	rh := s.rh["export"]
	rh.(*datasetExportHandler).id = "done"
	rh.(*datasetExportHandler).format = "xml"

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.NotEqual(http.StatusOK, resp.Status())
}
