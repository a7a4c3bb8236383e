// Package errors provides standardized error handling for the admission engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeEvaluatorNotFound   ErrorCode = "EVALUATOR_NOT_FOUND"
	ErrCodeInterviewNotFound   ErrorCode = "INTERVIEW_NOT_FOUND"

	ErrCodeTransitionRejected ErrorCode = "TRANSITION_REJECTED"
	ErrCodeInvalidStatus      ErrorCode = "INVALID_STATUS"

	ErrCodeCollaboratorUnavailable ErrorCode = "COLLABORATOR_UNAVAILABLE"
	ErrCodeCollaboratorTimeout     ErrorCode = "COLLABORATOR_TIMEOUT"

	ErrCodeStaleStateConflict ErrorCode = "STALE_STATE_CONFLICT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeNotificationRateLimit  ErrorCode = "NOTIFICATION_RATE_LIMITED"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrNotFound     = errors.New("APPLICATION_NOT_FOUND")
	ErrStaleState   = errors.New("STALE_STATE_CONFLICT")
	ErrCollaborator = errors.New("COLLABORATOR_UNAVAILABLE")
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap maps structured errors onto the package sentinels so callers can
// branch with errors.Is without inspecting codes.
func (e *StandardError) Unwrap() error {
	switch e.Code {
	case ErrCodeApplicationNotFound, ErrCodeEvaluatorNotFound, ErrCodeInterviewNotFound:
		return ErrNotFound
	case ErrCodeStaleStateConflict:
		return ErrStaleState
	case ErrCodeCollaboratorUnavailable, ErrCodeCollaboratorTimeout:
		return ErrCollaborator
	}
	return nil
}

// ==========================
// 2. Error Constructors
// ==========================

// NewApplicationNotFoundError creates a non-retryable lookup error. The
// batch evaluator surfaces it and continues with other applications.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollaboratorUnavailableError creates a retryable dependency error.
// Callers treat it as "not ready": the application is skipped this cycle
// and re-evaluated on the next scheduled batch.
func NewCollaboratorUnavailableError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollaboratorUnavailable,
		Message:   "External collaborator unavailable",
		Details:   fmt.Sprintf("service: %s, error: %s", service, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollaboratorTimeoutError creates a retryable timeout error.
func NewCollaboratorTimeoutError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollaboratorTimeout,
		Message:   "External collaborator timed out",
		Details:   fmt.Sprintf("service: %s", service),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStaleStateConflictError marks a transition whose persisted source
// status changed between read and write. The transition is dropped and
// recomputed next cycle; it never corrupts data.
func NewStaleStateConflictError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStaleStateConflict,
		Message:   "Application status changed since it was read",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStatusError flags a status value outside the known enum.
// This is a programming error, not a workflow outcome.
func NewInvalidStatusError(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStatus,
		Message:   "Unknown application status",
		Details:   fmt.Sprintf("status: %s", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("entity: %s, error: %s", entity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a notification delivery error.
// Delivery is best effort; this never rolls back a committed transition.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStaleState reports whether err is an optimistic-concurrency conflict.
func IsStaleState(err error) bool {
	return errors.Is(err, ErrStaleState)
}

// IsCollaborator reports whether err is a transient collaborator failure
// that should be treated as "not ready".
func IsCollaborator(err error) bool {
	return errors.Is(err, ErrCollaborator)
}
