package feed

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that referenced content or an agent does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingFailed indicates that embedding generation failed.
	// The engine recovers from this locally wherever an absent vector is
	// acceptable; it only surfaces where a vector is mandatory.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrStorageOperation indicates that a repository operation failed.
	ErrStorageOperation = errors.New("storage operation failed")
)

// FeedError wraps errors with operation context.
//
// The format is "agenttube: <Op>: <Err>", making it clear which engine
// operation failed.
type FeedError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns the formatted error message.
func (e *FeedError) Error() string {
	return fmt.Sprintf("agenttube: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *FeedError) Unwrap() error {
	return e.Err
}

// NewFeedError creates a FeedError wrapping the given error.
//
// If err is nil, returns nil, which allows unconditional wrapping at
// return sites.
func NewFeedError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FeedError{
		Op:  op,
		Err: err,
	}
}
