package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// VectorIndex provides provisioning and write access to a remote vector store.
// There is no query path; records are only ever upserted.
type VectorIndex interface {
	// ListIndexes returns the names of existing indexes.
	ListIndexes(ctx context.Context) ([]string, error)

	// CreateIndex provisions an index. It returns once the index accepts writes.
	CreateIndex(ctx context.Context, spec domain.IndexSpec) error

	// Upsert inserts or replaces records keyed by ID.
	Upsert(ctx context.Context, index string, records []domain.VectorRecord) error

	// Close releases resources.
	Close() error
}
