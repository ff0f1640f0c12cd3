package service

import (
	"errors"
	"fmt"
)

var ErrUnauthenticated = errors.New("authentication required")

// ErrNotFoundOrDenied deliberately covers both "no such video" and "exists
// but private". An unauthorized caller must not be able to probe existence.
var ErrNotFoundOrDenied = errors.New("video not found or access denied")

// UpstreamError reports a failed storage backend call. It carries the
// operation and the backend's diagnostic for operators without exposing
// storage topology to callers.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("storage backend %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
