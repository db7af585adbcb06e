// Package errors provides standardized error handling for workflow actions.
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
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
)

// WorkflowError represents a structured workflow error.
type WorkflowError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("WorkflowError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewNotFoundError creates a non-retryable error for a missing entity.
func NewNotFoundError(entity, id string) *WorkflowError {
	return &WorkflowError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", entity),
		Details:   fmt.Sprintf("%sId: %s", entity, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIllegalTransitionError creates a non-retryable error for a transition
// that is not valid from the current status.
func NewIllegalTransitionError(current, action string) *WorkflowError {
	return &WorkflowError{
		Code:      ErrCodeIllegalTransition,
		Message:   "Requested action is not valid from the current status",
		Details:   fmt.Sprintf("currentStatus: %s, action: %s", current, action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a non-retryable error for an actor lacking
// the role or ownership required by the action.
func NewForbiddenError(details string) *WorkflowError {
	return &WorkflowError{
		Code:      ErrCodeForbidden,
		Message:   "Actor is not permitted to perform this action",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a non-retryable invariant-violation error.
func NewConflictError(details string) *WorkflowError {
	return &WorkflowError{
		Code:      ErrCodeConflict,
		Message:   "Action conflicts with the current workflow state",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable storage error.
func NewStoreUnavailableError(err error) *WorkflowError {
	return &WorkflowError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Storage operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *WorkflowError {
	return &WorkflowError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf returns the error code of a workflow error, or empty string.
func CodeOf(err error) ErrorCode {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Code
	}
	return ""
}

// Is reports whether err is a workflow error carrying the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether err is safe to retry.
func IsRetryable(err error) bool {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Retryable
	}
	return false
}
