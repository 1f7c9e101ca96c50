// Package apperr holds the error values shared across the catalog layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrSyncInProgress = errors.New("sync already in progress")
)

// StorageError reports a failed storage operation (connection, constraint, I/O).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError for op. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err is, or wraps, a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IngestionError reports a failure fetching or decoding archive data.
type IngestionError struct {
	Op  string
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion: %s: %v", e.Op, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Ingestion wraps err as an IngestionError for op. A nil err stays nil.
func Ingestion(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IngestionError{Op: op, Err: err}
}

// IsIngestion reports whether err is, or wraps, an IngestionError.
func IsIngestion(err error) bool {
	var ie *IngestionError
	return errors.As(err, &ie)
}
