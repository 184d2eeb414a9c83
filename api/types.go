// Package api talks to the remote test-execution service over HTTP/JSON.
//
// The service exposes five endpoints: the test catalog, three dispatch
// endpoints (single test, suite, everything) and a status endpoint that is
// polled while a run is in progress. The types here mirror the wire format;
// optional fields are pointers so that an absent value stays distinguishable
// from a zero one.
package api

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// TestStatus is the outcome reported by the server for a single test.
type TestStatus string

const (
	StatusPass    TestStatus = "pass"
	StatusFail    TestStatus = "fail"
	StatusError   TestStatus = "error"
	StatusRunning TestStatus = "running"
	StatusPending TestStatus = "pending"
)

// Known reports whether s is one of the statuses the server is documented to send.
func (s TestStatus) Known() bool {
	switch s {
	case StatusPass, StatusFail, StatusError, StatusRunning, StatusPending:
		return true
	}
	return false
}

// TestCase identifies a runnable unit. Method is the stable key used to
// correlate catalog entries with results.
type TestCase struct {
	Name   string `json:"name"`
	Suite  string `json:"suite"`
	Method string `json:"method"`
}

// TestResult is one entry of the server's result list.
type TestResult struct {
	TestName  string     `json:"test_name"`
	Status    TestStatus `json:"status"`
	Message   string     `json:"message,omitempty"`
	Duration  *float64   `json:"duration,omitempty"` // seconds
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// timestampLayouts covers RFC 3339 and the zone-less ISO-8601 that Python's
// datetime.isoformat() produces.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a result timestamp. Zone-less values are read as local time.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON decodes a result, treating an unparseable timestamp as unknown.
func (r *TestResult) UnmarshalJSON(data []byte) error {
	type alias TestResult
	aux := struct {
		*alias
		Timestamp *string `json:"timestamp"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Timestamp = nil
	if aux.Timestamp != nil {
		if ts, ok := ParseTimestamp(*aux.Timestamp); ok {
			r.Timestamp = &ts
		}
	}
	return nil
}

// Catalog is the server's list of known tests plus suite membership counts.
type Catalog struct {
	TestCases []TestCase     `json:"test_cases"`
	Suites    map[string]int `json:"suites"`
}

// Len returns the number of test cases.
func (c Catalog) Len() int {
	return len(c.TestCases)
}

// SuiteNames returns the suites with at least one member, sorted by name.
func (c Catalog) SuiteNames() []string {
	names := make([]string, 0, len(c.Suites))
	for name, count := range c.Suites {
		if count > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Tests returns the test cases belonging to suite. An empty suite name
// returns every test case.
func (c Catalog) Tests(suite string) []TestCase {
	if suite == "" {
		return c.TestCases
	}
	var tests []TestCase
	for _, tc := range c.TestCases {
		if tc.Suite == suite {
			tests = append(tests, tc)
		}
	}
	return tests
}

// Find looks up a test case by its method name.
func (c Catalog) Find(method string) (TestCase, bool) {
	for _, tc := range c.TestCases {
		if tc.Method == method {
			return tc, true
		}
	}
	return TestCase{}, false
}

// RunStatus is a decoded poll of the status endpoint.
type RunStatus struct {
	Running     bool
	CurrentTest string // empty when the server did not report one
	// HasResults is false when the payload carried no results field at all,
	// which is different from an empty list.
	HasResults bool
	Results    []TestResult
}

type statusPayload struct {
	Running     *bool         `json:"running"`
	CurrentTest *string       `json:"current_test"`
	Results     *[]TestResult `json:"results"`
}

type errorPayload struct {
	Error string `json:"error"`
}
