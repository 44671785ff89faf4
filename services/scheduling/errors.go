package scheduling

import (
	"errors"
	"fmt"
)

const (
	// CodeUnavailableBackend marks a transient failure of the calendar
	// backend. It is surfaced to the caller, never retried here.
	CodeUnavailableBackend = "unavailableBackend"
	// CodeNoSlotAvailable marks an exhausted conflict-retry bound.
	CodeNoSlotAvailable = "noSlotAvailable"
)

// SchedulingError is the typed failure of the scheduling engine.
type SchedulingError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SchedulingError) Unwrap() error {
	return e.Cause
}

// NewUnavailableBackendError wraps a calendar backend failure.
func NewUnavailableBackendError(msg string, cause error) error {
	return &SchedulingError{Code: CodeUnavailableBackend, Message: msg, Cause: cause}
}

// NewNoSlotAvailableError reports an exhausted retry bound.
func NewNoSlotAvailableError(msg string) error {
	return &SchedulingError{Code: CodeNoSlotAvailable, Message: msg}
}

func hasCode(err error, code string) bool {
	var se *SchedulingError
	return errors.As(err, &se) && se.Code == code
}

// IsUnavailableBackend reports whether err is a backend availability failure.
func IsUnavailableBackend(err error) bool {
	return hasCode(err, CodeUnavailableBackend)
}

// IsNoSlotAvailable reports whether err is an exhausted retry bound.
func IsNoSlotAvailable(err error) bool {
	return hasCode(err, CodeNoSlotAvailable)
}
