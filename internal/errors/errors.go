// Package errors defines the structured API error responses used by the
// HTTP transport layer.
package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is a structured API error response.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates an APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError carrying extra context.
func NewWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for common scenarios.
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrEmptyCart        = New(http.StatusBadRequest, "EMPTY_CART", "Cart is empty")

	// 401 Unauthorized
	ErrInvalidLicenseKey = New(http.StatusUnauthorized, "INVALID_LICENSE_KEY", "The provided license key is invalid")
	ErrKeyAlreadyUsed    = New(http.StatusUnauthorized, "KEY_ALREADY_USED", "The provided license key has already been used")

	// 404 Not Found
	ErrNotFound        = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrProductNotFound = New(http.StatusNotFound, "PRODUCT_NOT_FOUND", "Unknown product")
	ErrSessionNotFound = New(http.StatusNotFound, "SESSION_NOT_FOUND", "Unknown or expired session")

	// 409 Conflict
	ErrWrongState = New(http.StatusConflict, "WRONG_STATE", "Action not allowed in current state")

	// 422 Unprocessable Entity
	ErrAmountLimitExceeded = New(http.StatusUnprocessableEntity, "AMOUNT_LIMIT_EXCEEDED", "Amount exceeds the product transfer limit")

	// 502 Bad Gateway
	ErrIssuanceFailed = New(http.StatusBadGateway, "ISSUANCE_FAILED", "Key issuance collaborator failed; retry is safe")

	// 500 Internal Server Error
	ErrInternal = New(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
)
