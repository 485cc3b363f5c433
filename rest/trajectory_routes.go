package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/evergreen-ci/flightpath/rest/data"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

///////////////////////////////////////////////////////////////////////////////
//
// POST /trajectory/generate

type trajectoryGenerateHandler struct {
	opts data.GenerationOptions
	sc   data.Connector
}

func makeGenerateTrajectories(sc data.Connector) gimlet.RouteHandler {
	return &trajectoryGenerateHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new trajectoryGenerateHandler.
func (h *trajectoryGenerateHandler) Factory() gimlet.RouteHandler {
	return &trajectoryGenerateHandler{
		sc: h.sc,
	}
}

// Parse decodes the generation options from the request body.
func (h *trajectoryGenerateHandler) Parse(_ context.Context, r *http.Request) error {
	if err := gimlet.GetJSON(r.Body, &h.opts); err != nil {
		return errors.Wrap(err, "problem parsing generation options")
	}
	return nil
}

// Run calls the data ScheduleTrajectoryGeneration function and returns the
// ids of the enqueued jobs.
func (h *trajectoryGenerateHandler) Run(ctx context.Context) gimlet.Responder {
	jobIDs, err := h.sc.ScheduleTrajectoryGeneration(ctx, h.opts)
	if err != nil {
		err = errors.Wrapf(err, "problem scheduling generation for scenario '%s'", h.opts.Scenario)
		grip.Error(message.WrapError(err, message.Fields{
			"request":  gimlet.GetRequestID(ctx),
			"method":   "POST",
			"route":    "/trajectory/generate",
			"scenario": h.opts.Scenario,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(jobIDs)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /trajectory/{id}

type trajectoryGetByIDHandler struct {
	id string
	sc data.Connector
}

func makeGetTrajectoryByID(sc data.Connector) gimlet.RouteHandler {
	return &trajectoryGetByIDHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new trajectoryGetByIDHandler.
func (h *trajectoryGetByIDHandler) Factory() gimlet.RouteHandler {
	return &trajectoryGetByIDHandler{
		sc: h.sc,
	}
}

// Parse fetches the id from the http request.
func (h *trajectoryGetByIDHandler) Parse(_ context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

// Run calls the data FindTrajectoryRecordByID function and returns the
// trajectory record from the provider.
func (h *trajectoryGetByIDHandler) Run(ctx context.Context) gimlet.Responder {
	record, err := h.sc.FindTrajectoryRecordByID(ctx, h.id)
	if err != nil {
		err = errors.Wrapf(err, "problem getting trajectory record by id '%s'", h.id)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/trajectory/{id}",
			"id":      h.id,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(record)
}

///////////////////////////////////////////////////////////////////////////////
//
// DELETE /trajectory/{id}

type trajectoryRemoveByIDHandler struct {
	id string
	sc data.Connector
}

func makeRemoveTrajectoryByID(sc data.Connector) gimlet.RouteHandler {
	return &trajectoryRemoveByIDHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new trajectoryRemoveByIDHandler.
func (h *trajectoryRemoveByIDHandler) Factory() gimlet.RouteHandler {
	return &trajectoryRemoveByIDHandler{
		sc: h.sc,
	}
}

// Parse fetches the id from the http request.
func (h *trajectoryRemoveByIDHandler) Parse(_ context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

// Run calls the data RemoveTrajectoryRecord function and returns the
// error.
func (h *trajectoryRemoveByIDHandler) Run(ctx context.Context) gimlet.Responder {
	if err := h.sc.RemoveTrajectoryRecord(ctx, h.id); err != nil {
		err = errors.Wrapf(err, "problem removing trajectory record by id '%s'", h.id)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "DELETE",
			"route":   "/trajectory/{id}",
			"id":      h.id,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(struct{}{})
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /trajectory/scenario/{scenario}

type trajectoryGetByScenarioHandler struct {
	opts data.TrajectoryFilterOptions
	sc   data.Connector
}

func makeGetTrajectoriesByScenario(sc data.Connector) gimlet.RouteHandler {
	return &trajectoryGetByScenarioHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new trajectoryGetByScenarioHandler.
func (h *trajectoryGetByScenarioHandler) Factory() gimlet.RouteHandler {
	return &trajectoryGetByScenarioHandler{
		sc: h.sc,
	}
}

// Parse fetches the scenario from the http request along with the optional
// method and limit query parameters.
func (h *trajectoryGetByScenarioHandler) Parse(_ context.Context, r *http.Request) error {
	h.opts.Scenario = gimlet.GetVars(r)["scenario"]

	vals := r.URL.Query()
	h.opts.Method = vals.Get("method")
	if limit := vals.Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil {
			return errors.Wrapf(err, "invalid limit '%s'", limit)
		}
		h.opts.Limit = parsed
	}
	return nil
}

// Run calls the data FindTrajectoryRecords function and returns the
// trajectory records from the provider.
func (h *trajectoryGetByScenarioHandler) Run(ctx context.Context) gimlet.Responder {
	records, err := h.sc.FindTrajectoryRecords(ctx, h.opts)
	if err != nil {
		err = errors.Wrapf(err, "problem getting trajectory records for scenario '%s'", h.opts.Scenario)
		grip.Error(message.WrapError(err, message.Fields{
			"request":  gimlet.GetRequestID(ctx),
			"method":   "GET",
			"route":    "/trajectory/scenario/{scenario}",
			"scenario": h.opts.Scenario,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(records)
}
