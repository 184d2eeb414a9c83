// Package apitest provides a scripted stand-in for the test-execution service.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jesspatton/lazyremote/api"
)

// Reply is a canned HTTP response.
type Reply struct {
	Code int
	Body string
}

// IdleStatus is what the service reports when nothing has run yet.
var IdleStatus = Reply{Code: http.StatusOK, Body: `{"running": false, "current_test": null, "results": []}`}

// Server serves the five service endpoints from scripted replies and
// records every request it receives.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	catalog  Reply
	dispatch map[string]Reply
	statuses []Reply
	requests map[string][]string
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		catalog:  Reply{Code: http.StatusOK, Body: `{"test_cases": [], "suites": {}}`},
		dispatch: make(map[string]Reply),
		requests: make(map[string][]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetCatalog serves catalog from the catalog endpoint.
func (s *Server) SetCatalog(catalog api.Catalog) {
	data, err := json.Marshal(catalog)
	if err != nil {
		panic(err)
	}
	s.SetCatalogReply(Reply{Code: http.StatusOK, Body: string(data)})
}

// SetCatalogReply serves a raw reply from the catalog endpoint.
func (s *Server) SetCatalogReply(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = r
}

// SetDispatchReply overrides the reply for one of the run endpoints.
// By default they answer 200 with a started message.
func (s *Server) SetDispatchReply(path string, r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch[path] = r
}

// QueueStatus appends replies for the status endpoint. Replies are consumed
// in order; the last one keeps being served once the queue drains.
func (s *Server) QueueStatus(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, replies...)
}

// Status builds a 200 status reply from a JSON body.
func Status(body string) Reply {
	return Reply{Code: http.StatusOK, Body: body}
}

// Hits returns how many requests path has received.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests[path])
}

// Bodies returns the request bodies received on path, in order.
func (s *Server) Bodies(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests[path]...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests[r.URL.Path] = append(s.requests[r.URL.Path], string(body))

	var reply Reply
	switch {
	case r.URL.Path == api.PathTestCases && r.Method == http.MethodGet:
		reply = s.catalog
	case r.URL.Path == api.PathTestStatus && r.Method == http.MethodGet:
		reply = IdleStatus
		if len(s.statuses) > 0 {
			reply = s.statuses[0]
			if len(s.statuses) > 1 {
				s.statuses = s.statuses[1:]
			}
		}
	case (r.URL.Path == api.PathRunTest || r.URL.Path == api.PathRunSuite || r.URL.Path == api.PathRunAll) &&
		r.Method == http.MethodPost:
		var ok bool
		reply, ok = s.dispatch[r.URL.Path]
		if !ok {
			reply = Reply{Code: http.StatusOK, Body: `{"message": "started", "status": "running"}`}
		}
	default:
		reply = Reply{Code: http.StatusNotFound, Body: `{"error": "not found"}`}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Code)
	w.Write([]byte(reply.Body)) //nolint:errcheck
}
