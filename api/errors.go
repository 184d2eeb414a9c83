package api

import (
	"errors"
	"fmt"
)

var errMissingRunning = errors.New(`missing "running" field`)

// CatalogLoadError is returned when the catalog cannot be fetched or decoded.
type CatalogLoadError struct {
	Err error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("load catalog: %v", e.Err)
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}

// DispatchRejectedError is returned when a run request fails. StatusCode is
// zero when the request never got a response.
type DispatchRejectedError struct {
	Path       string
	StatusCode int
	Message    string // server-provided error text, if any
	Err        error
}

func (e *DispatchRejectedError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	default:
		return fmt.Sprintf("server error: %d", e.StatusCode)
	}
}

func (e *DispatchRejectedError) Unwrap() error {
	return e.Err
}

// PollTransportError covers a status fetch that failed in transit or came
// back with a non-2xx status.
type PollTransportError struct {
	StatusCode int
	Err        error
}

func (e *PollTransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("poll status: %v", e.Err)
	}
	return fmt.Sprintf("poll status: server returned %d", e.StatusCode)
}

func (e *PollTransportError) Unwrap() error {
	return e.Err
}

// StatusDecodeError is returned for a status payload that cannot be decoded,
// including one without the running field.
type StatusDecodeError struct {
	Err error
}

func (e *StatusDecodeError) Error() string {
	return fmt.Sprintf("decode status: %v", e.Err)
}

func (e *StatusDecodeError) Unwrap() error {
	return e.Err
}
