package domain

import "errors"

// Core error taxonomy. Callers match these with errors.Is.
var (
	// ErrInvalidAmount is returned when an amount is not positive or has fractions of a cent
	ErrInvalidAmount = errors.New("amount must be greater than zero with at most two decimal places")
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrPreconditionFailed is returned when an operation is not allowed in the entity's current state
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInvariantViolation is returned when stored data breaks a bookkeeping invariant
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrInvalidInput is returned for malformed or out-of-range request values
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when the caller's role does not allow the operation
	ErrForbidden = errors.New("forbidden")
	// ErrConcurrentUpdate is returned when a row changed between read and write
	ErrConcurrentUpdate = errors.New("entity was modified concurrently")
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// validationMessages covers validator tags without a dedicated message in the HTTP layer
var validationMessages = map[string]string{
	"required": "This field is required",
	"dive":     "One or more items are invalid",
	"url":      "Must be a valid URL",
	"len":      "Must be exactly the specified length",
	"numeric":  "Must be a numeric value",
	"e164":     "Must be a phone number in international format",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)
