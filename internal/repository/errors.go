package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrReadFailed is returned when a stored file exists but cannot be read or parsed
	ErrReadFailed = errors.New("read failed")

	// ErrWriteFailed is returned when a file cannot be written; the previous content is left in place
	ErrWriteFailed = errors.New("write failed")

	// ErrPathUnavailable is returned when a storage directory cannot be resolved, created or written
	ErrPathUnavailable = errors.New("storage path unavailable")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
