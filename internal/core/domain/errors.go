package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Analysis Errors.

	// ErrConfiguration indicates a missing or placeholder service credential.
	// It is fatal and raised before any network call.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransport indicates a network failure or non-success HTTP status.
	ErrTransport = errors.New("transport error")

	// ErrRetriesExhausted indicates the continuation loop hit its retry limit.
	ErrRetriesExhausted = errors.New("continuation retries exhausted")

	// ErrUnexpectedStatus indicates an incomplete response for a reason other than length.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrParseFailure indicates output could not be decoded even after repair.
	ErrParseFailure = errors.New("parse failure")

	// ErrValidation indicates well-formed output missing required fields.
	ErrValidation = errors.New("validation failure")

	// ErrNoUsableInput indicates no document in the project has any text.
	// It is the only analysis failure surfaced to callers.
	ErrNoUsableInput = errors.New("no usable input")
)

// ParseFailure carries the raw text that could not be decoded.
type ParseFailure struct {
	RawText string
	Err     error
}

// Error implements error.
func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse failure (%d bytes): %v", len(e.RawText), e.Err)
}

// Unwrap allows errors.Is(err, ErrParseFailure).
func (e *ParseFailure) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParseFailure}
	}
	return []error{ErrParseFailure, e.Err}
}
