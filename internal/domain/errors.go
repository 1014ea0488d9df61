package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup for an entity id that does not exist, as
// distinct from an infrastructure failure.
var ErrNotFound = errors.New("not found")

// Geocoding failure modes, distinct so callers can explain which stage failed.
var (
	ErrExtractionFailed = errors.New("no location could be extracted")
	ErrNoLocationFound  = errors.New("no coordinates found for location")
)

// ValidationError rejects a request before any external call is attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure communicating with the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// AdapterError wraps a failure of an external data provider. Stage names the
// provider operation that failed so it can surface in user-facing messages.
type AdapterError struct {
	Stage string
	Err   error
}

func (e *AdapterError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *AdapterError) Unwrap() error { return e.Err }
