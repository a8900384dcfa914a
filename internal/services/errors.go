package services

import "errors"

// Analytics service errors
var (
	// ErrInvalidInput is returned for arguments the service cannot act on
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFormat is returned for an unknown export format
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrSampleTooLarge is returned when a sample cohort exceeds the configured cap
	ErrSampleTooLarge = errors.New("sample size exceeds limit")
)
