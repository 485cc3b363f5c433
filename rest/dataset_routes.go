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
// POST /dataset

type datasetCreateHandler struct {
	opts data.DatasetOptions
	sc   data.Connector
}

func makeCreateDataset(sc data.Connector) gimlet.RouteHandler {
	return &datasetCreateHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new datasetCreateHandler.
func (h *datasetCreateHandler) Factory() gimlet.RouteHandler {
	return &datasetCreateHandler{
		sc: h.sc,
	}
}

// Parse decodes the dataset options from the request body.
func (h *datasetCreateHandler) Parse(_ context.Context, r *http.Request) error {
	if err := gimlet.GetJSON(r.Body, &h.opts); err != nil {
		return errors.Wrap(err, "problem parsing dataset options")
	}
	return nil
}

// Run calls the data CreateDataset function and returns the new dataset
// record.
func (h *datasetCreateHandler) Run(ctx context.Context) gimlet.Responder {
	record, err := h.sc.CreateDataset(ctx, h.opts)
	if err != nil {
		err = errors.Wrapf(err, "problem creating dataset for scenario '%s'", h.opts.Scenario)
		grip.Error(message.WrapError(err, message.Fields{
			"request":  gimlet.GetRequestID(ctx),
			"method":   "POST",
			"route":    "/dataset",
			"scenario": h.opts.Scenario,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}

	return gimlet.NewJSONResponse(record)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /dataset/{id}

type datasetGetByIDHandler struct {
	id string
	sc data.Connector
}

func makeGetDatasetByID(sc data.Connector) gimlet.RouteHandler {
	return &datasetGetByIDHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new datasetGetByIDHandler.
func (h *datasetGetByIDHandler) Factory() gimlet.RouteHandler {
	return &datasetGetByIDHandler{
		sc: h.sc,
	}
}

// Parse fetches the id from the http request.
func (h *datasetGetByIDHandler) Parse(_ context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]
	return nil
}

// Run calls the data FindDatasetByID function and returns the dataset
// record from the provider.
func (h *datasetGetByIDHandler) Run(ctx context.Context) gimlet.Responder {
	record, err := h.sc.FindDatasetByID(ctx, h.id)
	if err != nil {
		err = errors.Wrapf(err, "problem getting dataset record by id '%s'", h.id)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/dataset/{id}",
			"id":      h.id,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(record)
}

///////////////////////////////////////////////////////////////////////////////
//
// GET /datasets

type datasetListHandler struct {
	opts data.DatasetFilterOptions
	sc   data.Connector
}

func makeListDatasets(sc data.Connector) gimlet.RouteHandler {
	return &datasetListHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new datasetListHandler.
func (h *datasetListHandler) Factory() gimlet.RouteHandler {
	return &datasetListHandler{
		sc: h.sc,
	}
}

// Parse fetches the optional scenario, state, and limit query parameters.
func (h *datasetListHandler) Parse(_ context.Context, r *http.Request) error {
	vals := r.URL.Query()
	h.opts.Scenario = vals.Get("scenario")
	h.opts.State = vals.Get("state")
	if limit := vals.Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil {
			return errors.Wrapf(err, "invalid limit '%s'", limit)
		}
		h.opts.Limit = parsed
	}
	return nil
}

// Run calls the data FindDatasets function and returns the dataset records
// from the provider.
func (h *datasetListHandler) Run(ctx context.Context) gimlet.Responder {
	records, err := h.sc.FindDatasets(ctx, h.opts)
	if err != nil {
		err = errors.Wrap(err, "problem listing dataset records")
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "GET",
			"route":   "/datasets",
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(records)
}

///////////////////////////////////////////////////////////////////////////////
//
// POST /dataset/{id}/export

type datasetExportHandler struct {
	id     string
	format string
	sc     data.Connector
}

func makeExportDataset(sc data.Connector) gimlet.RouteHandler {
	return &datasetExportHandler{
		sc: sc,
	}
}

// Factory returns a pointer to a new datasetExportHandler.
func (h *datasetExportHandler) Factory() gimlet.RouteHandler {
	return &datasetExportHandler{
		sc: h.sc,
	}
}

// Parse fetches the id from the http request and the export format from
// the request body.
func (h *datasetExportHandler) Parse(_ context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["id"]

	payload := struct {
		Format string `json:"format"`
	}{}
	if err := gimlet.GetJSON(r.Body, &payload); err != nil {
		return errors.Wrap(err, "problem parsing export format")
	}
	h.format = payload.Format
	return nil
}

// Run calls the data ScheduleDatasetExport function and returns the id of
// the enqueued job.
func (h *datasetExportHandler) Run(ctx context.Context) gimlet.Responder {
	jobID, err := h.sc.ScheduleDatasetExport(ctx, h.id, h.format)
	if err != nil {
		err = errors.Wrapf(err, "problem scheduling export of dataset '%s'", h.id)
		grip.Error(message.WrapError(err, message.Fields{
			"request": gimlet.GetRequestID(ctx),
			"method":  "POST",
			"route":   "/dataset/{id}/export",
			"id":      h.id,
			"format":  h.format,
		}))
		return gimlet.MakeJSONErrorResponder(err)
	}
	return gimlet.NewJSONResponse(jobID)
}
