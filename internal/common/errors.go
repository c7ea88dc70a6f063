package common

import (
	"errors"
	"net/http"
)

// Error codes shared across the checkout core. Every recoverable condition is
// represented as a structured error; nothing in this module panics past the
// orchestrator boundary.
const (
	CodeValidation         = "VALIDATION"
	CodeGatewayError       = "GATEWAY_ERROR"
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	CodeStaleResponse      = "STALE_RESPONSE"
	CodePersistence        = "PERSISTENCE"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// ValidationError marks missing or malformed input. The caller corrects the
// input and retries; state never advances on a validation failure.
func ValidationError(message string, details any) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusUnprocessableEntity, Details: details}
}

// GatewayError wraps a failure reported by the payment gateway.
func GatewayError(message string, err error) *AppError {
	return &AppError{Code: CodeGatewayError, Message: message, HTTPStatus: http.StatusBadGateway, Err: err}
}

// GatewayUnavailable marks the gateway as unreachable, as opposed to it
// rejecting the input.
func GatewayUnavailable(err error) *AppError {
	return &AppError{Code: CodeGatewayUnavailable, Message: "payment gateway unavailable", HTTPStatus: http.StatusBadGateway, Err: err}
}

// StaleResponseError marks a gateway response that arrived for an order that
// is no longer the active attempt. It is logged and discarded, never surfaced.
func StaleResponseError(orderID string) *AppError {
	return &AppError{Code: CodeStaleResponse, Message: "stale gateway response for order " + orderID, HTTPStatus: http.StatusConflict}
}

// PersistenceError wraps a snapshot load/store failure. Callers recover by
// treating the stored state as absent.
func PersistenceError(err error) *AppError {
	return &AppError{Code: CodePersistence, Message: "persistence failure", HTTPStatus: http.StatusInternalServerError, Err: err}
}

// ConflictError marks an operation that is invalid in the current state.
func ConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// NotFoundError marks a missing resource.
func NotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// CodeOf returns the AppError code, or CodeInternal for plain errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
