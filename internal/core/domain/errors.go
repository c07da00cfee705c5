package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceNotFound indicates no source is registered under a name.
	// Query surfaces report it as a message, not a failure.
	ErrSourceNotFound = errors.New("source not found")

	// ErrUnsupportedFormat indicates a document the parsers cannot handle,
	// such as a Swagger 2.0 spec.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmbeddingUnavailable indicates the embedding provider could not
	// produce vectors (missing credentials, HTTP failure, bad response).
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Configuration Errors.

	// ErrConfiguration indicates a setup problem that retrying cannot fix.
	ErrConfiguration = errors.New("configuration error")

	// ErrStoreAlreadyOpen indicates a store handle is already bound to another path.
	ErrStoreAlreadyOpen = fmt.Errorf("%w: store already open", ErrConfiguration)

	// Storage Errors.

	// ErrStoreClosed indicates an operation on a closed store handle.
	ErrStoreClosed = errors.New("store closed")

	// ErrStoreFatal indicates the storage engine reported corruption or an
	// unrecoverable I/O condition. Batch ingestion stops when it sees one.
	ErrStoreFatal = errors.New("fatal storage error")
)

// DimensionMismatchError reports a store whose vectors were created with a
// different embedding dimension than the active provider produces.
type DimensionMismatchError struct {
	// Stored is the dimension recorded when the store was created.
	Stored int

	// Requested is the dimension of the active provider.
	Requested int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf(
		"Embedding dimension mismatch: database has %dd vectors but provider requires %dd. "+
			"Re-index with the current provider (delete the database and run ingest --all).",
		e.Stored, e.Requested)
}

// Is lets errors.Is(err, ErrConfiguration) match dimension mismatches.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrConfiguration
}

// StoreError wraps a storage engine failure that leaves the store unusable.
type StoreError struct {
	// Code is the engine's primary result code.
	Code int

	// Op names the operation that failed.
	Op string

	// Err is the underlying engine error.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStoreFatal) match store errors.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFatal
}

// IsFatal reports whether err must abort a batch rather than be recorded
// against a single source. The decision is made on error identity only.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrStoreFatal) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrStoreClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
