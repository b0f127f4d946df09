package services

import (
	"errors"
	"fmt"

	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// ErrorCode names the invariant a rejected mutation violated. Codes are
// errors themselves so callers can write errors.Is(err, BusDoubleBooked).
type ErrorCode string

func (c ErrorCode) Error() string {
	return string(c)
}

// Validation codes
const (
	InvalidSequenceOrder     ErrorCode = "INVALID_SEQUENCE_ORDER"
	NonMonotonicSchedule     ErrorCode = "NON_MONOTONIC_SCHEDULE"
	ExcessiveWalkingDistance ErrorCode = "EXCESSIVE_WALKING_DISTANCE"
	InvalidField             ErrorCode = "INVALID_FIELD"
	UnknownReference         ErrorCode = "UNKNOWN_REFERENCE"
	InactiveReference        ErrorCode = "INACTIVE_REFERENCE"
	AssignmentImmutable      ErrorCode = "ASSIGNMENT_IMMUTABLE"
	InvalidStatusTransition  ErrorCode = "INVALID_STATUS_TRANSITION"
)

// Conflict codes
const (
	BusDoubleBooked    ErrorCode = "BUS_DOUBLE_BOOKED"
	DriverDoubleBooked ErrorCode = "DRIVER_DOUBLE_BOOKED"
)

// Data codes
const (
	NoEstimateAvailable ErrorCode = "NO_ESTIMATE_AVAILABLE"
	ScheduleIncomplete  ErrorCode = "SCHEDULE_INCOMPLETE"
)

// Infrastructure codes
const (
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// ValidationError is a caller-fixable rejection tied to one field
type ValidationError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == e.Code
}

// ConflictError rejects a route assignment that collides with a live one
type ConflictError struct {
	Code      ErrorCode
	Candidate models.RouteAssignment
	Existing  models.RouteAssignment
}

func (e *ConflictError) Error() string {
	resource, id := "bus", e.Candidate.BusID
	if e.Code == DriverDoubleBooked {
		resource, id = "driver", e.Candidate.DriverID
	}
	return fmt.Sprintf("%s: %s %d is already assigned to route %d on %s (assignment %d)",
		e.Code, resource, id, e.Existing.RouteID, models.DateKey(e.Existing.Date), e.Existing.ID)
}

func (e *ConflictError) Is(target error) bool {
	return target == e.Code
}

// DataError reports data the engine needs but does not have. FromStopID and
// ToStopID identify the stop pair when the missing data is a travel time.
type DataError struct {
	Code       ErrorCode
	RouteID    int64
	FromStopID int64
	ToStopID   int64
	Message    string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DataError) Is(target error) bool {
	return target == e.Code
}

// InfrastructureError wraps a store failure that is not the caller's fault
type InfrastructureError struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *InfrastructureError) Is(target error) bool {
	return target == e.Code
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// Retryable reports that the same call may succeed later
func (e *InfrastructureError) Retryable() bool {
	return true
}

// CodeOf returns the ErrorCode carried by err, or "" for untyped errors
func CodeOf(err error) ErrorCode {
	var (
		v *ValidationError
		c *ConflictError
		d *DataError
		i *InfrastructureError
	)
	switch {
	case errors.As(err, &v):
		return v.Code
	case errors.As(err, &c):
		return c.Code
	case errors.As(err, &d):
		return d.Code
	case errors.As(err, &i):
		return i.Code
	}
	return ""
}

// IsRetryable reports whether err is worth retrying unchanged
func IsRetryable(err error) bool {
	var i *InfrastructureError
	return errors.As(err, &i) && i.Retryable()
}

func validationErrorf(code ErrorCode, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}
