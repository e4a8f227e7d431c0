package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// Typed errors below wrap these so callers can match with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates required configuration is missing or invalid.
	// Raised before any work begins.
	ErrConfiguration = errors.New("configuration error")

	// ErrSourceRead indicates a document could not be read. Fatal for the run.
	ErrSourceRead = errors.New("source read failed")

	// ErrEmbedding indicates a chunk could not be embedded. The chunk is dropped.
	ErrEmbedding = errors.New("embedding failed")

	// ErrInputTooLong indicates the embedding service rejected the input length.
	// This is the only embedding failure that triggers the truncate-and-retry path.
	ErrInputTooLong = errors.New("input exceeds token limit")

	// ErrUnauthorized indicates a remote service rejected the credentials.
	ErrUnauthorized = errors.New("credentials rejected")

	// ErrDimensionMismatch indicates a vector does not have the expected dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexProvision indicates the vector index could not be listed or created.
	ErrIndexProvision = errors.New("index provisioning failed")

	// ErrUpsert indicates a batch could not be written to the vector index.
	ErrUpsert = errors.New("upsert failed")

	// ErrInvalidRepoRef indicates a repository reference is not in owner/name form.
	ErrInvalidRepoRef = errors.New("repository must be in format owner/name")
)

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	// Key is the setting or environment variable at fault.
	Key string

	// Reason describes what is wrong.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// SourceReadError reports a document that could not be read.
type SourceReadError struct {
	Source string
	Err    error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read source %s: %v", e.Source, e.Err)
}

// Unwrap allows matching both ErrSourceRead and the underlying cause.
func (e *SourceReadError) Unwrap() []error {
	return []error{ErrSourceRead, e.Err}
}

// EmbeddingError reports a chunk that was dropped at the embedding stage.
type EmbeddingError struct {
	ChunkID string
	Retried bool
	Err     error
}

func (e *EmbeddingError) Error() string {
	if e.Retried {
		return fmt.Sprintf("embed chunk %s (after truncated retry): %v", e.ChunkID, e.Err)
	}
	return fmt.Sprintf("embed chunk %s: %v", e.ChunkID, e.Err)
}

// Unwrap allows matching both ErrEmbedding and the underlying cause.
func (e *EmbeddingError) Unwrap() []error {
	return []error{ErrEmbedding, e.Err}
}

// IndexProvisionError reports a failure to list or create a vector index.
type IndexProvisionError struct {
	Index string
	Err   error
}

func (e *IndexProvisionError) Error() string {
	return fmt.Sprintf("provision index %s: %v", e.Index, e.Err)
}

// Unwrap allows matching both ErrIndexProvision and the underlying cause.
func (e *IndexProvisionError) Unwrap() []error {
	return []error{ErrIndexProvision, e.Err}
}

// UpsertError reports a batch that could not be written.
// Batches before Batch were committed and are not rolled back.
type UpsertError struct {
	Index string

	// Batch is the zero-based index of the failed batch.
	Batch int

	// Committed is the number of records written before the failure.
	Committed int

	Err error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("upsert batch %d into %s (%d records committed): %v",
		e.Batch, e.Index, e.Committed, e.Err)
}

// Unwrap allows matching both ErrUpsert and the underlying cause.
func (e *UpsertError) Unwrap() []error {
	return []error{ErrUpsert, e.Err}
}
