package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidLesson    = errors.New("invalid lesson")
	ErrTopicRequired    = errors.New("Topic is required")
	ErrInvalidItemCount = errors.New("item count must not be negative")
	// ErrMissingAsset marks a single image that could not be produced or
	// stored. It is recorded per item and never fails a generation.
	ErrMissingAsset = errors.New("image unavailable")
)

// TransportError reports that an outbound call did not complete.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError reports a non-2xx response or an explicit success=false payload.
// Message is the server-provided text when one could be read.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "API error: " + strconv.Itoa(e.Status)
}

// ValidationError describes a rejected field. It matches ErrInvalidLesson.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidLesson
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}
