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
	"github.com/stretchr/testify/suite"
)

type TrajectoryHandlerSuite struct {
	sc         data.MockConnector
	rh         map[string]gimlet.RouteHandler
	apiRecords map[string]datamodel.APITrajectoryRecord

	suite.Suite
}

func (s *TrajectoryHandlerSuite) SetupTest() {
	s.sc = data.MockConnector{
		CachedTrajectories: map[string]model.TrajectoryRecord{
			"abc": {
				ID:        "abc",
				CreatedAt: time.Date(2026, time.March, 1, 1, 1, 0, 0, time.UTC),
				Info: model.TrajectoryInfo{
					Scenario: "urban-delivery",
					Method:   planner.RouteBezier,
					Seed:     1,
					Samples:  50,
					Start:    planner.Waypoint{X: -500, Y: -500, Z: 100},
					End:      planner.Waypoint{X: 500, Y: 500, Z: 200},
				},
			},
			"def": {
				ID:        "def",
				CreatedAt: time.Date(2026, time.March, 2, 1, 1, 0, 0, time.UTC),
				Info: model.TrajectoryInfo{
					Scenario: "urban-delivery",
					Method:   planner.RouteSpline,
					Seed:     2,
					Samples:  50,
					Start:    planner.Waypoint{X: 0, Y: 0, Z: 100},
					End:      planner.Waypoint{X: 400, Y: 400, Z: 150},
				},
			},
			"delete": {
				ID:        "delete",
				CreatedAt: time.Date(2026, time.March, 3, 1, 1, 0, 0, time.UTC),
				Info: model.TrajectoryInfo{
					Scenario: "survey",
					Method:   planner.RouteDubins,
					Seed:     3,
					Samples:  20,
					Start:    planner.Waypoint{X: 0, Y: 0, Z: 100},
					End:      planner.Waypoint{X: 300, Y: 0, Z: 100},
				},
			},
		},
	}
	s.rh = map[string]gimlet.RouteHandler{
		"generate": makeGenerateTrajectories(&s.sc),
		"id":       makeGetTrajectoryByID(&s.sc),
		"remove":   makeRemoveTrajectoryByID(&s.sc),
		"scenario": makeGetTrajectoriesByScenario(&s.sc),
	}
	s.apiRecords = map[string]datamodel.APITrajectoryRecord{}
	for key, val := range s.sc.CachedTrajectories {
		apiRecord := datamodel.APITrajectoryRecord{}
		s.Require().NoError(apiRecord.Import(val))
		s.apiRecords[key] = apiRecord
	}
}

func TestTrajectoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(TrajectoryHandlerSuite))
}

func (s *TrajectoryHandlerSuite) TestGetByIDHandlerFound() {
	rh := s.rh["id"]
	rh.(*trajectoryGetByIDHandler).id = "abc"
	expected := s.apiRecords["abc"]

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Require().NotNil(resp.Data())
	s.Equal(&expected, resp.Data())
}

func (s *TrajectoryHandlerSuite) TestGetByIDHandlerNotFound() {
	rh := s.rh["id"]
	rh.(*trajectoryGetByIDHandler).id = "DNE"

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.NotEqual(http.StatusOK, resp.Status())
}

func (s *TrajectoryHandlerSuite) TestRemoveByIDHandler() {
	rh := s.rh["remove"]
	rh.(*trajectoryRemoveByIDHandler).id = "delete"

	_, ok := s.sc.CachedTrajectories["delete"]
	s.True(ok)
	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	_, ok = s.sc.CachedTrajectories["delete"]
	s.False(ok)

	// should not fail on non-existent id
	resp = rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
}

func (s *TrajectoryHandlerSuite) TestGetByScenarioHandlerFound() {
	rh := s.rh["scenario"]
	rh.(*trajectoryGetByScenarioHandler).opts = data.TrajectoryFilterOptions{
		Scenario: "urban-delivery",
	}
	expected := []datamodel.APITrajectoryRecord{
		s.apiRecords["def"],
		s.apiRecords["abc"],
	}

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Require().NotNil(resp.Data())
	s.Equal(expected, resp.Data())
}

func (s *TrajectoryHandlerSuite) TestGetByScenarioHandlerFiltersByMethod() {
	rh := s.rh["scenario"]
	rh.(*trajectoryGetByScenarioHandler).opts = data.TrajectoryFilterOptions{
		Scenario: "urban-delivery",
		Method:   planner.RouteSpline,
	}
	expected := []datamodel.APITrajectoryRecord{s.apiRecords["def"]}

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Equal(expected, resp.Data())
}

func (s *TrajectoryHandlerSuite) TestGetByScenarioHandlerNotFound() {
	rh := s.rh["scenario"]
	rh.(*trajectoryGetByScenarioHandler).opts = data.TrajectoryFilterOptions{
		Scenario: "DNE",
	}

	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.NotEqual(http.StatusOK, resp.Status())
}

func (s *TrajectoryHandlerSuite) TestGenerateHandlerParse() {
	rh := s.rh["generate"].Factory()

	body := bytes.NewBufferString(`{"scenario":"urban-delivery","method":"bezier","seed":7,"count":3,"points":25}`)
	req := httptest.NewRequest(http.MethodPost, "/trajectory/generate", body)
	s.Require().NoError(rh.Parse(context.TODO(), req))

	opts := rh.(*trajectoryGenerateHandler).opts
	s.Equal("urban-delivery", opts.Scenario)
	s.Equal(planner.RouteBezier, opts.Method)
	s.Equal(int64(7), opts.Seed)
	s.Equal(3, opts.Count)
	s.Equal(25, opts.Points)
}

func (s *TrajectoryHandlerSuite) TestGenerateHandlerSchedulesJobs() {
	rh := s.rh["generate"]
	rh.(*trajectoryGenerateHandler).opts = data.GenerationOptions{
		Scenario: "urban-delivery",
		Method:   planner.RouteBezier,
		Seed:     7,
		Count:    3,
		Points:   25,
	}

	before := len(s.sc.ScheduledJobs)
	resp := rh.Run(context.TODO())
	s.Require().NotNil(resp)
	s.Equal(http.StatusOK, resp.Status())
	s.Len(s.sc.ScheduledJobs, before+3)

	jobIDs, ok := resp.Data().([]string)
	s.Require().True(ok)
	s.Len(jobIDs, 3)
}

func (s *TrajectoryHandlerSuite) TestGenerateHandlerRejectsBadOptions() {
	for _, opts := range []data.GenerationOptions{
		{Method: planner.RouteBezier, Seed: 7, Count: 3, Points: 25},
		{Scenario: "urban-delivery", Method: planner.RouteBezier, Count: 0, Points: 25},
		{Scenario: "urban-delivery", Method: planner.RouteBezier, Count: 100, Points: 25},
		{Scenario: "urban-delivery", Method: planner.RouteBezier, Count: 3, Points: 5},
		{Scenario: "urban-delivery", Method: planner.RouteBezier, Count: 3, Points: 500},
		{Scenario: "urban-delivery", Method: "great-circle", Count: 3, Points: 25},
	} {
		rh := s.rh["generate"]
		rh.(*trajectoryGenerateHandler).opts = opts

		resp := rh.Run(context.TODO())
		s.Require().NotNil(resp)
		s.NotEqual(http.StatusOK, resp.Status())
	}
}
