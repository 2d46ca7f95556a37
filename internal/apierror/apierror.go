// Package apierror defines the error taxonomy shared by services and the
// standardized response envelopes the handlers serialize them into. All
// errors returned to clients go through this package so internal details
// (stack traces, DB errors, etc.) never leak.
package apierror

import (
	"errors"
	"fmt"
)

// Sentinel errors services return; handlers map them to HTTP statuses
// via errors.Is. Wrap with fmt.Errorf("%w: ...") to add context.
var (
	// ErrNotFound: the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: the actor lacks the role or ownership the operation requires.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports malformed or out-of-range input. Each violated
// condition is reported independently under its field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// NewValidation builds a single-field validation error.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrForbidden)
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationResponse wraps multiple field errors for the response body.
type ValidationResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidationResponse(fields map[string]string) *ValidationResponse {
	return &ValidationResponse{Detail: "Validation failed", Fields: fields}
}
