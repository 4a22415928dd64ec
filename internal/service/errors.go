package service

import "errors"

// ErrPersistence wraps a failed final write. It is the only pipeline
// failure surfaced to callers besides invalid input.
var ErrPersistence = errors.New("persistence failure")

// ErrInvalidInput marks requests rejected before any processing.
var ErrInvalidInput = errors.New("invalid input")

// ErrConflict marks writes rejected because the state they would create
// already exists.
var ErrConflict = errors.New("conflict")
