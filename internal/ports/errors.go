package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while assembling feed
// snapshots.
var (
	// ErrSnapshotUnavailable indicates that a feed snapshot could not
	// be assembled.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")

	// ErrRateLimited indicates that a snapshot fetch was rejected by
	// rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that a snapshot fetch timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrCatalogNotFound indicates that required catalog configuration
	// is missing.
	ErrCatalogNotFound = errors.New("catalog not found")
)

// SnapshotError represents an error from a snapshot source. It records
// the operation and how many places were requested.
type SnapshotError struct {
	// Operation is the name of the operation that failed.
	Operation string

	// Places is the number of place IDs in the failed request.
	Places int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for SnapshotError.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot error: operation=%s, places=%d, err=%v", e.Operation, e.Places, e.Err)
}

// Unwrap returns the underlying error.
func (e *SnapshotError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error is temporary and the fetch can
// be retried.
func (e *SnapshotError) IsRetryable() bool {
	return errors.Is(e.Err, ErrRateLimited) || errors.Is(e.Err, ErrTimeout)
}

// NewSnapshotError creates a new SnapshotError with the given details.
func NewSnapshotError(operation string, places int, err error) *SnapshotError {
	return &SnapshotError{
		Operation: operation,
		Places:    places,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
