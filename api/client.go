package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Endpoint paths of the test-execution service.
const (
	PathTestCases  = "/api/test-cases"
	PathRunTest    = "/api/run-test"
	PathRunSuite   = "/api/run-suite"
	PathRunAll     = "/api/run-all"
	PathTestStatus = "/api/test-status"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client is a thin HTTP client for the test-execution service.
// It holds no run state and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at server (e.g. "http://localhost:8000").
// A timeout of zero disables the per-request timeout.
func NewClient(server string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", server)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", server)
	}
	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the normalized server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Catalog fetches the test catalog. Any failure is a *CatalogLoadError.
func (c *Client) Catalog(ctx context.Context) (Catalog, error) {
	resp, err := c.do(ctx, http.MethodGet, PathTestCases, nil)
	if err != nil {
		return Catalog{}, &CatalogLoadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Catalog{}, &CatalogLoadError{Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	}

	var catalog Catalog
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&catalog); err != nil {
		return Catalog{}, &CatalogLoadError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if catalog.TestCases == nil {
		catalog.TestCases = []TestCase{}
	}
	if catalog.Suites == nil {
		catalog.Suites = map[string]int{}
	}
	return catalog, nil
}

// RunTest asks the server to run a single test.
func (c *Client) RunTest(ctx context.Context, tc TestCase) error {
	return c.dispatch(ctx, PathRunTest, tc)
}

// RunSuite asks the server to run every test in suite.
func (c *Client) RunSuite(ctx context.Context, suite string) error {
	return c.dispatch(ctx, PathRunSuite, map[string]string{"suite": suite})
}

// RunAll asks the server to run the full catalog.
func (c *Client) RunAll(ctx context.Context) error {
	return c.dispatch(ctx, PathRunAll, struct{}{})
}

// Status fetches the current run status. Transport failures and non-2xx
// responses are *PollTransportError, undecodable payloads *StatusDecodeError.
func (c *Client) Status(ctx context.Context) (RunStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, PathTestStatus, nil)
	if err != nil {
		return RunStatus{}, &PollTransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck
		return RunStatus{}, &PollTransportError{StatusCode: resp.StatusCode}
	}
	return DecodeStatus(io.LimitReader(resp.Body, maxBodyBytes))
}

// DecodeStatus decodes a status payload. A payload without the running
// field is rejected.
func DecodeStatus(r io.Reader) (RunStatus, error) {
	var payload statusPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return RunStatus{}, &StatusDecodeError{Err: err}
	}
	if payload.Running == nil {
		return RunStatus{}, &StatusDecodeError{Err: errMissingRunning}
	}

	status := RunStatus{Running: *payload.Running}
	if payload.CurrentTest != nil {
		status.CurrentTest = *payload.CurrentTest
	}
	if payload.Results != nil {
		status.HasResults = true
		status.Results = *payload.Results
		if status.Results == nil {
			status.Results = []TestResult{}
		}
	}
	return status, nil
}

func (c *Client) dispatch(ctx context.Context, path string, body any) error {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return &DispatchRejectedError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		// The run was accepted, the body is informational only.
		log.Warn().Err(err).Str("path", path).Msg("Failed to read dispatch response")
		return nil
	}

	var payload errorPayload
	_ = json.Unmarshal(data, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || payload.Error != "" {
		return &DispatchRejectedError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    payload.Error,
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("path", path).Msg("Request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, urlErr.Err
		}
		return nil, err
	}
	return resp, nil
}
