package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNilLog is returned by New when no notification log is supplied.
	ErrNilLog = errors.New("notification log is required")
	// ErrNilRef is recorded when Delete is called without a hero reference.
	ErrNilRef = errors.New("hero reference is nil")
	// ErrEmptyBody is recorded when the backend answers with no payload where one is required.
	ErrEmptyBody = errors.New("empty response body")
)

// OperationError describes a failed gateway operation. It never reaches the
// caller of an operation; it is written to the diagnostic sink and summarised
// in the notification log.
type OperationError struct {
	// Kind is the operation family, e.g. OpGet.
	Kind Operation
	// Op names the concrete call, e.g. "get hero id=12".
	Op string
	// StatusCode is the HTTP status when the backend answered, 0 otherwise.
	StatusCode int
	Err        error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// StatusError is the cause recorded when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
}
