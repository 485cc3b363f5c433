package rest

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/gimlet"
)

///////////////////////////////////////////////////////////////////////////////
//
// GET /status

type statusHandler struct {
	env flightpath.Environment
}

func makeStatusCheck(env flightpath.Environment) gimlet.RouteHandler {
	return &statusHandler{
		env: env,
	}
}

// Factory returns a pointer to a new statusHandler.
func (h *statusHandler) Factory() gimlet.RouteHandler {
	return &statusHandler{
		env: h.env,
	}
}

// Parse is a no-op for the status check.
func (h *statusHandler) Parse(_ context.Context, _ *http.Request) error { return nil }

// Run reports the service revision and queue state.
func (h *statusHandler) Run(ctx context.Context) gimlet.Responder {
	status := struct {
		Service  string      `json:"service"`
		Revision string      `json:"revision"`
		Queue    interface{} `json:"queue,omitempty"`
	}{
		Service:  "flightpath",
		Revision: flightpath.BuildRevision,
	}

	if queue := h.env.GetRemoteQueue(); queue != nil && queue.Info().Started {
		status.Queue = queue.Stats(ctx)
	}

	return gimlet.NewJSONResponse(&status)
}
