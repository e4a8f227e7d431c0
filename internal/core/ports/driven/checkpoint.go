package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// CheckpointStore persists the embedded chunk collection between the
// embedding and upload phases, so an upload can be resumed or inspected.
type CheckpointStore interface {
	// Save replaces the checkpoint with the given chunks.
	Save(ctx context.Context, chunks []domain.EmbeddedChunk) error

	// Load returns the persisted chunks.
	// Returns domain.ErrNotFound if no checkpoint exists.
	Load(ctx context.Context) ([]domain.EmbeddedChunk, error)

	// Path returns the checkpoint location.
	Path() string
}
