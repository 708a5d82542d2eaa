// Package apperr holds the sentinel errors shared across repos, modules, and
// handlers. Callers wrap them with %w and match with errors.Is; the HTTP
// layer maps each sentinel to a status code in one place.
package apperr

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict signals a concurrent-modification or already-done state.
	ErrConflict = errors.New("conflict")
	// ErrEmptyExtraction means a document produced no usable text. The
	// failed ingestion job is re-run under the queue's normal backoff
	// policy until its attempts are exhausted.
	ErrEmptyExtraction = errors.New("empty extraction")
)
