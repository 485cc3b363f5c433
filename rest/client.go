package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/evergreen-ci/flightpath/rest/data"
	"github.com/evergreen-ci/flightpath/rest/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// Client interacts with a remote flightpath service.
type Client struct {
	host   string
	prefix string
}

// ClientOptions describe how to reach a remote flightpath service.
type ClientOptions struct {
	Host   string
	Port   int
	Prefix string
}

// NewClient constructs a Client from the given options. The host must
// include the scheme.
func NewClient(opts ClientOptions) (*Client, error) {
	if !strings.HasPrefix(opts.Host, "http") {
		return nil, errors.Errorf("host '%s' is malformed, must start with 'http'", opts.Host)
	}

	host := strings.TrimSuffix(opts.Host, "/")
	if opts.Port > 0 {
		host = fmt.Sprintf("%s:%d", host, opts.Port)
	}

	return &Client{
		host:   host,
		prefix: strings.Trim(opts.Prefix, "/"),
	}, nil
}

func (c *Client) getURL(endpoint string) string {
	parts := []string{c.host}
	if c.prefix != "" {
		parts = append(parts, c.prefix)
	}
	parts = append(parts, "v1", strings.Trim(endpoint, "/"))

	return strings.Join(parts, "/")
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body *bytes.Buffer
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "problem encoding request body")
		}
		body = bytes.NewBuffer(payload)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.getURL(endpoint), body)
	if err != nil {
		return errors.Wrap(err, "problem creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	client := utility.GetHTTPClient()
	defer utility.PutHTTPClient(client)

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "problem with request to '%s'", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := gimlet.ErrorResponse{}
		if err = gimlet.GetJSON(resp.Body, &apiErr); err != nil {
			return errors.Errorf("request to '%s' returned status %d", endpoint, resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return errors.Wrap(gimlet.GetJSON(resp.Body, out), "problem reading response body")
}

func listQuery(endpoint, method string, limit int) string {
	vals := url.Values{}
	if method != "" {
		vals.Set("method", method)
	}
	if limit > 0 {
		vals.Set("limit", strconv.Itoa(limit))
	}
	if encoded := vals.Encode(); encoded != "" {
		return endpoint + "?" + encoded
	}
	return endpoint
}

// GetStatus returns the status report of the remote service.
func (c *Client) GetStatus(ctx context.Context) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := c.doRequest(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GenerateTrajectories schedules background generation of a batch of
// trajectories and returns the ids of the enqueued jobs.
func (c *Client) GenerateTrajectories(ctx context.Context, opts data.GenerationOptions) ([]string, error) {
	var jobIDs []string
	if err := c.doRequest(ctx, http.MethodPost, "/trajectory/generate", opts, &jobIDs); err != nil {
		return nil, errors.WithStack(err)
	}
	return jobIDs, nil
}

// GetTrajectory returns the trajectory record with the given id.
func (c *Client) GetTrajectory(ctx context.Context, id string) (*model.APITrajectoryRecord, error) {
	out := &model.APITrajectoryRecord{}
	if err := c.doRequest(ctx, http.MethodGet, "/trajectory/"+id, nil, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// RemoveTrajectory removes the trajectory record with the given id.
func (c *Client) RemoveTrajectory(ctx context.Context, id string) error {
	return errors.WithStack(c.doRequest(ctx, http.MethodDelete, "/trajectory/"+id, nil, nil))
}

// GetTrajectoriesByScenario returns the trajectory records for a scenario,
// optionally filtered by generation method.
func (c *Client) GetTrajectoriesByScenario(ctx context.Context, scenario, method string, limit int) ([]model.APITrajectoryRecord, error) {
	var out []model.APITrajectoryRecord
	endpoint := listQuery("/trajectory/scenario/"+scenario, method, limit)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// CreateDataset schedules a new dataset build.
func (c *Client) CreateDataset(ctx context.Context, opts data.DatasetOptions) (*model.APIDatasetRecord, error) {
	out := &model.APIDatasetRecord{}
	if err := c.doRequest(ctx, http.MethodPost, "/dataset", opts, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GetDataset returns the dataset record with the given id.
func (c *Client) GetDataset(ctx context.Context, id string) (*model.APIDatasetRecord, error) {
	out := &model.APIDatasetRecord{}
	if err := c.doRequest(ctx, http.MethodGet, "/dataset/"+id, nil, out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// ListDatasets returns the dataset records matching the given filter.
func (c *Client) ListDatasets(ctx context.Context, scenario, state string, limit int) ([]model.APIDatasetRecord, error) {
	vals := url.Values{}
	if scenario != "" {
		vals.Set("scenario", scenario)
	}
	if state != "" {
		vals.Set("state", state)
	}
	if limit > 0 {
		vals.Set("limit", strconv.Itoa(limit))
	}

	endpoint := "/datasets"
	if encoded := vals.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var out []model.APIDatasetRecord
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// ExportDataset schedules an export of a completed dataset and returns the
// id of the enqueued job.
func (c *Client) ExportDataset(ctx context.Context, id, format string) (string, error) {
	payload := struct {
		Format string `json:"format"`
	}{Format: format}

	var jobID string
	if err := c.doRequest(ctx, http.MethodPost, "/dataset/"+id+"/export", payload, &jobID); err != nil {
		return "", errors.WithStack(err)
	}
	return jobID, nil
}
