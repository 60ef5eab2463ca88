package provider

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Adapters map backend-native failures to the nearest kind
// with %w and never swallow the cause.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrNotImplemented  = errors.New("not implemented")
)

// StorageError reports an I/O failure against a storage backend or its
// intermediary.
type StorageError struct {
	Op     string
	Bucket string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Bucket == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a storage failure for op against bucket.
func NewStorageError(op, bucket string, err error) error {
	return &StorageError{Op: op, Bucket: bucket, Err: err}
}

// ConfigurationError reports a missing or invalid connection parameter. It is
// raised at load time, never deferred to first use.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// ErrConfiguration builds a ConfigurationError for field.
func ErrConfiguration(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}
