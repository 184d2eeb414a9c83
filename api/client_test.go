package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesspatton/lazyremote/api"
	"github.com/jesspatton/lazyremote/api/apitest"
)

func TestMain(m *testing.M) {
	log.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

func newClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	c, err := api.NewClient(srv.URL, 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name   string
		server string
	}{
		{"no scheme", "localhost:8000"},
		{"bad scheme", "ftp://localhost:8000"},
		{"no host", "http://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := api.NewClient(tt.server, time.Second)
			assert.Error(t, err)
		})
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c, err := api.NewClient("http://localhost:8000/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestCatalog(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SetCatalogReply(apitest.Reply{Code: http.StatusOK, Body: `{
		"test_cases": [
			{"name": "Login", "suite": "auth", "method": "test_login"},
			{"name": "Signup", "suite": "auth", "method": "test_signup"}
		],
		"total": 2,
		"suites": {"auth": 2, "upload": 0}
	}`})

	catalog, err := newClient(t, srv).Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, []string{"auth"}, catalog.SuiteNames())
	assert.Equal(t, 0, catalog.Suites["upload"])

	tc, ok := catalog.Find("test_signup")
	require.True(t, ok)
	assert.Equal(t, "Signup", tc.Name)
}

func TestCatalog_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply apitest.Reply
	}{
		{"server error", apitest.Reply{Code: http.StatusInternalServerError, Body: `{"error": "boom"}`}},
		{"not json", apitest.Reply{Code: http.StatusOK, Body: `<html>`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.SetCatalogReply(tt.reply)

			_, err := newClient(t, srv).Catalog(context.Background())
			var loadErr *api.CatalogLoadError
			require.ErrorAs(t, err, &loadErr)
		})
	}
}

func TestCatalog_Unreachable(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)
	srv.Close()

	_, err := c.Catalog(context.Background())
	var loadErr *api.CatalogLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.NotNil(t, loadErr.Unwrap())
}

func TestRunTest_SendsDescriptor(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	err := c.RunTest(context.Background(), api.TestCase{Name: "Login", Suite: "auth", Method: "test_login"})
	require.NoError(t, err)

	bodies := srv.Bodies(api.PathRunTest)
	require.Len(t, bodies, 1)
	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &sent))
	assert.Equal(t, map[string]string{"name": "Login", "suite": "auth", "method": "test_login"}, sent)
}

func TestRunSuite_SendsSuite(t *testing.T) {
	srv := apitest.NewServer(t)
	require.NoError(t, newClient(t, srv).RunSuite(context.Background(), "auth"))
	assert.JSONEq(t, `{"suite": "auth"}`, srv.Bodies(api.PathRunSuite)[0])
}

func TestRunAll_SendsEmptyObject(t *testing.T) {
	srv := apitest.NewServer(t)
	require.NoError(t, newClient(t, srv).RunAll(context.Background()))
	assert.JSONEq(t, `{}`, srv.Bodies(api.PathRunAll)[0])
}

func TestDispatch_Rejected(t *testing.T) {
	tests := []struct {
		name        string
		reply       apitest.Reply
		wantCode    int
		wantMessage string
	}{
		{
			name:        "error field with 404",
			reply:       apitest.Reply{Code: http.StatusNotFound, Body: `{"error": "no such suite"}`},
			wantCode:    http.StatusNotFound,
			wantMessage: "no such suite",
		},
		{
			name:        "non-2xx without body",
			reply:       apitest.Reply{Code: http.StatusInternalServerError, Body: ``},
			wantCode:    http.StatusInternalServerError,
			wantMessage: "server error: 500",
		},
		{
			name:        "2xx carrying an error field",
			reply:       apitest.Reply{Code: http.StatusOK, Body: `{"error": "Tests are already running"}`},
			wantCode:    http.StatusOK,
			wantMessage: "Tests are already running",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.SetDispatchReply(api.PathRunSuite, tt.reply)

			err := newClient(t, srv).RunSuite(context.Background(), "nope")
			var rejected *api.DispatchRejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.wantCode, rejected.StatusCode)
			assert.Equal(t, tt.wantMessage, err.Error())
		})
	}
}

func TestDispatch_NonJSONSuccessIsAccepted(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SetDispatchReply(api.PathRunAll, apitest.Reply{Code: http.StatusAccepted, Body: `started`})
	assert.NoError(t, newClient(t, srv).RunAll(context.Background()))
}

func TestDispatch_TransportFailure(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)
	srv.Close()

	err := c.RunAll(context.Background())
	var rejected *api.DispatchRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Zero(t, rejected.StatusCode)
	assert.Contains(t, err.Error(), "request failed")
}

func TestStatus(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.QueueStatus(apitest.Status(`{
		"running": true,
		"current_test": "Login",
		"results": [{"test_name": "test_login", "status": "pass", "duration": 1.2}]
	}`))

	status, err := newClient(t, srv).Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, "Login", status.CurrentTest)
	assert.True(t, status.HasResults)
	require.Len(t, status.Results, 1)
	assert.Equal(t, api.StatusPass, status.Results[0].Status)
	require.NotNil(t, status.Results[0].Duration)
	assert.InDelta(t, 1.2, *status.Results[0].Duration, 1e-9)
}

func TestStatus_ServerError(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.QueueStatus(apitest.Reply{Code: http.StatusInternalServerError, Body: `oops`})

	_, err := newClient(t, srv).Status(context.Background())
	var transportErr *api.PollTransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
}

func TestStatus_Unreachable(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)
	srv.Close()

	_, err := c.Status(context.Background())
	var transportErr *api.PollTransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestStatus_ContextCanceled(t *testing.T) {
	srv := apitest.NewServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(t, srv).Status(ctx)
	var transportErr *api.PollTransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, errors.Is(err, context.Canceled))
}
