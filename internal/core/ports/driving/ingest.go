package driving

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// IngestService runs the ingestion pipeline: chunk, embed, checkpoint, upload.
type IngestService interface {
	// Run reads every document, embeds every chunk, persists the checkpoint
	// and upserts the result into the named index.
	Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error)

	// Upload upserts a previously persisted checkpoint into the named index.
	Upload(ctx context.Context, opts RunOptions) (*domain.RunReport, error)
}

// Phase names a stage of the pipeline for progress reporting.
type Phase string

// Pipeline phases.
const (
	PhaseEmbed  Phase = "embed"
	PhaseUpload Phase = "upload"
)

// ProgressFunc is called as work completes within a phase.
// Calls for a phase are serialised; done increases monotonically to total.
type ProgressFunc func(phase Phase, done, total int)

// RunOptions configures a single run.
type RunOptions struct {
	// IndexName is the target vector index.
	IndexName string

	// SkipUpload stops after the checkpoint is written.
	SkipUpload bool

	// Progress receives progress updates. May be nil.
	Progress ProgressFunc
}
