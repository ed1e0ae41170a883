// Package penpal - errors.go
// Defines session-specific errors.

package penpal

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput      = errors.New("empty input")
	ErrNotConfigured   = errors.New("completion client is not configured")
	ErrNoChoices       = errors.New("completion returned no choices")
	ErrNotFound        = errors.New("key not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrStaleSlot       = errors.New("message slot no longer exists")
	ErrSuperseded      = errors.New("exchange superseded by a newer request")
)

// StreamError is returned when a stream fails midway. Partial holds the text
// received before the failure.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer to a streaming request.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion service returned status %d: %s", e.StatusCode, e.Body)
}
