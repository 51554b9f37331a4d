package storefront

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every error returned by Client and the services wraps
// exactly one of them; match with errors.Is.
var (
	// ErrValidation: input rejected locally, no request was sent.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized: credential missing, expired or rejected. The session
	// has been cleared and the admin must log in again.
	ErrUnauthorized = errors.New("unauthorized: please log in again")
	// ErrNetwork: the request did not complete.
	ErrNetwork = errors.New("storefront unreachable")
	// ErrAPI: the backend answered with a failure.
	ErrAPI = errors.New("storefront error")
)

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, " ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// APIError is a backend failure: a non-2xx status or success=false.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: storefront returned %d: %s", e.Op, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPI }
