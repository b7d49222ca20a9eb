// Package errors provides centralized HTTP error responses.
// Every error body carries the request's correlation id so a caller can
// quote it when reporting a problem.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
	"github.com/studybrief/brief/cmd/brief/internal/logging"
	"github.com/studybrief/brief/cmd/brief/internal/requestmeta"
)

// ErrorCode represents a standard error code
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError    ErrorCode = "DATABASE_ERROR"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      int            `json:"code"`
	ErrorCode ErrorCode      `json:"error_code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// APIError represents an application error
type APIError struct {
	Message    string
	StatusCode int
	ErrorCode  ErrorCode
	Details    map[string]any
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *APIError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details map[string]any) *APIError {
	e.Details = details
	return e
}

// Wrap wraps an error with additional context
func (e *APIError) Wrap(err error) *APIError {
	e.Err = err
	return e
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, errorCode ErrorCode, message string) *APIError {
	return &APIError{
		Message:    message,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string) *APIError {
	return NewAPIError(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewMethodNotAllowedError creates a 405 Method Not Allowed error
func NewMethodNotAllowedError(method string) *APIError {
	return NewAPIError(http.StatusMethodNotAllowed, CodeMethodNotAllowed, fmt.Sprintf("method %s not allowed", method))
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeInternalError, message)
}

// NewDatabaseError creates a 503 error for an unreachable database.
func NewDatabaseError(err error) *APIError {
	return NewAPIError(http.StatusServiceUnavailable, CodeDatabaseError, "Database unavailable").Wrap(err)
}

// ErrorHandlerConfig holds configuration for error handling
type ErrorHandlerConfig struct {
	// Logger defaults to the global logger
	Logger *logging.Logger

	// ShowInternalErrors shows detailed error information in responses.
	// Should be false in production
	ShowInternalErrors bool

	// LogStackTrace logs stack traces for panics
	LogStackTrace bool

	// OnError is called when an error occurs (for custom logging/metrics)
	OnError func(err error, r *http.Request)
}

// ErrorHandler writes error responses and recovers panics.
type ErrorHandler struct {
	config ErrorHandlerConfig
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(config ErrorHandlerConfig) *ErrorHandler {
	if config.Logger == nil {
		config.Logger = logging.GetLogger()
	}
	return &ErrorHandler{config: config}
}

// RecoveryMiddleware catches panics and converts them to 500 errors.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func (h *ErrorHandler) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger := h.config.Logger.WithContext(r.Context()).WithField("panic", fmt.Sprint(rec))
			if h.config.LogStackTrace {
				logger = logger.WithField("stack", string(debug.Stack()))
			}
			logger.Error("Recovered from panic")

			if h.config.OnError != nil {
				h.config.OnError(fmt.Errorf("panic: %v", rec), r)
			}

			message := "Internal server error"
			if h.config.ShowInternalErrors {
				message = fmt.Sprintf("Internal server error: %v", rec)
			}

			h.WriteError(w, r, NewInternalError(message))
		}()

		next.ServeHTTP(w, r)
	})
}

// WriteError writes an error response
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err *APIError) {
	requestID := requestmeta.RequestID(r.Context())

	response := ErrorResponse{
		Error:     err.Message,
		Code:      err.StatusCode,
		ErrorCode: err.ErrorCode,
		Details:   err.Details,
		RequestID: requestID,
	}

	if h.config.ShowInternalErrors && err.Err != nil {
		details := make(map[string]any, len(response.Details)+1)
		for k, v := range response.Details {
			details[k] = v
		}
		details["internal_error"] = err.Err.Error()
		response.Details = details
	}

	logger := h.config.Logger.WithContext(r.Context()).WithFields(map[string]any{
		"status":     err.StatusCode,
		"error_code": string(err.ErrorCode),
	})
	if err.StatusCode >= 500 {
		logger.ErrorWithErr(err.Message, err.Err)
	} else {
		logger.Warn(err.Message)
	}

	if h.config.OnError != nil {
		h.config.OnError(err, r)
	}

	w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(response)
}
