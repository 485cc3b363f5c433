package rest

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/rest/data"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/amboy"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

type Service struct {
	Port        int
	Prefix      string
	Environment flightpath.Environment

	// internal settings
	queue amboy.Queue
	app   *gimlet.APIApp
	sc    data.Connector
}

func (s *Service) Validate() error {
	if s.Environment == nil {
		return errors.New("must specify an environment")
	}

	if s.queue == nil {
		s.queue = s.Environment.GetRemoteQueue()
		if s.queue == nil {
			return errors.New("no queue defined")
		}
	}

	if s.sc == nil {
		s.sc = data.CreateDBConnector(s.Environment)
	}

	if s.app == nil {
		s.app = gimlet.NewApp()
	}

	if s.Port == 0 {
		s.Port = 3000
	}

	if err := s.app.SetPort(s.Port); err != nil {
		return errors.WithStack(err)
	}

	if s.Prefix != "" {
		s.app.SetPrefix(s.Prefix)
	}

	s.app.AddMiddleware(gimlet.MakeRecoveryLogger())
	s.app.AddMiddleware(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	}))

	return nil
}

func (s *Service) Start(ctx context.Context) error {
	if s.queue == nil || s.app == nil {
		return errors.New("application is not valid")
	}

	s.addRoutes()

	if err := s.queue.Start(ctx); err != nil {
		return errors.Wrap(err, "problem starting queue")
	}

	if err := s.app.Resolve(); err != nil {
		return errors.Wrap(err, "problem resolving routes")
	}

	return s.app.Run(ctx)
}

func (s *Service) addRoutes() {
	s.app.AddRoute("/status").Version(1).Get().RouteHandler(makeStatusCheck(s.Environment))

	s.app.AddRoute("/trajectory/generate").Version(1).Post().RouteHandler(makeGenerateTrajectories(s.sc))
	s.app.AddRoute("/trajectory/{id}").Version(1).Get().RouteHandler(makeGetTrajectoryByID(s.sc))
	s.app.AddRoute("/trajectory/{id}").Version(1).Delete().RouteHandler(makeRemoveTrajectoryByID(s.sc))
	s.app.AddRoute("/trajectory/scenario/{scenario}").Version(1).Get().RouteHandler(makeGetTrajectoriesByScenario(s.sc))

	s.app.AddRoute("/dataset").Version(1).Post().RouteHandler(makeCreateDataset(s.sc))
	s.app.AddRoute("/dataset/{id}").Version(1).Get().RouteHandler(makeGetDatasetByID(s.sc))
	s.app.AddRoute("/dataset/{id}/export").Version(1).Post().RouteHandler(makeExportDataset(s.sc))
	s.app.AddRoute("/datasets").Version(1).Get().RouteHandler(makeListDatasets(s.sc))
}
