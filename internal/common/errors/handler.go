// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler writes workflow errors as HTTP responses with a stable JSON shape.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HTTPStatus maps an error code to its transport status.
// IllegalTransition and Conflict are both state disputes, hence 409.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeIllegalTransition, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError normalizes err and writes it to w.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, err error) {
	wfErr := h.normalizeError(err)
	status := HTTPStatus(wfErr.Code)

	if status >= 500 {
		h.logger.Error("workflow action failed", map[string]interface{}{
			"errorCode": wfErr.Code,
			"details":   wfErr.Details,
		})
	} else {
		h.logger.Warn("workflow action rejected", map[string]interface{}{
			"errorCode": wfErr.Code,
			"details":   wfErr.Details,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if wfErr.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(wfErr)
}

// normalizeError ensures we always have a WorkflowError.
func (h *ErrorHandler) normalizeError(err error) *WorkflowError {
	if wfErr, ok := err.(*WorkflowError); ok {
		return wfErr
	}
	return &WorkflowError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
