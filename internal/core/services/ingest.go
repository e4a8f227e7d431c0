package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// errServiceNotConfigured is returned when a phase's collaborator is missing.
var errServiceNotConfigured = errors.New("ingest service not configured")

// IngestService runs the pipeline in two sequential phases. Every chunk is
// embedded and checkpointed before the first upsert is issued.
type IngestService struct {
	assembler  *Assembler
	embedder   *ChunkEmbedder
	sink       *BatchSink
	checkpoint driven.CheckpointStore
}

// NewIngestService creates an ingest service. assembler and embedder may be
// nil when only Upload is used.
func NewIngestService(
	assembler *Assembler,
	embedder *ChunkEmbedder,
	sink *BatchSink,
	checkpoint driven.CheckpointStore,
) *IngestService {
	return &IngestService{
		assembler:  assembler,
		embedder:   embedder,
		sink:       sink,
		checkpoint: checkpoint,
	}
}

// Run assembles, embeds, checkpoints and uploads.
func (s *IngestService) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	if s.assembler == nil || s.embedder == nil || s.checkpoint == nil {
		return nil, errServiceNotConfigured
	}
	if !opts.SkipUpload {
		if err := s.checkUpload(opts); err != nil {
			return nil, err
		}
	}

	if err := s.embedder.Preflight(ctx); err != nil {
		return nil, err
	}

	report := &domain.RunReport{Checkpoint: s.checkpoint.Path()}

	logger.Section("Chunking")
	chunks, sources, err := s.assembler.Assemble(ctx)
	if err != nil {
		return nil, err
	}
	report.Sources = sources
	report.TotalChunks = len(chunks)
	logger.Info("Total chunks: %d", len(chunks))

	logger.Section("Embedding")
	results, err := s.embedder.EmbedAll(ctx, chunks, phaseProgress(opts.Progress, driving.PhaseEmbed))
	if err != nil {
		return report, fmt.Errorf("embed chunks: %w", err)
	}
	embedded := Summarise(results, report)
	if report.Failed > 0 {
		logger.Warn("%s", report.FailureSummary())
	}

	if err := s.checkpoint.Save(ctx, embedded); err != nil {
		return report, fmt.Errorf("save checkpoint: %w", err)
	}
	logger.Info("Saved %d embedded chunks to %s", len(embedded), s.checkpoint.Path())

	if opts.SkipUpload {
		return report, nil
	}

	return report, s.upload(ctx, opts, embedded, report)
}

// Upload loads the checkpoint and uploads it.
func (s *IngestService) Upload(ctx context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	if s.checkpoint == nil {
		return nil, errServiceNotConfigured
	}
	if err := s.checkUpload(opts); err != nil {
		return nil, err
	}

	embedded, err := s.checkpoint.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	report := &domain.RunReport{
		Checkpoint:  s.checkpoint.Path(),
		TotalChunks: len(embedded),
		Embedded:    len(embedded),
	}
	for _, c := range embedded {
		if c.Truncated {
			report.Truncated++
		}
	}

	return report, s.upload(ctx, opts, embedded, report)
}

func (s *IngestService) upload(ctx context.Context, opts driving.RunOptions, embedded []domain.EmbeddedChunk, report *domain.RunReport) error {
	logger.Section("Uploading")
	result, err := s.sink.Upsert(ctx, opts.IndexName, embedded, phaseProgress(opts.Progress, driving.PhaseUpload))
	report.IndexCreated = result.IndexCreated
	report.Upserted = result.Upserted
	report.Batches = result.Batches
	return err
}

func (s *IngestService) checkUpload(opts driving.RunOptions) error {
	if s.sink == nil {
		return errServiceNotConfigured
	}
	if opts.IndexName == "" {
		return &domain.ConfigurationError{Key: "vector.index", Reason: "must not be empty"}
	}
	return nil
}

func phaseProgress(fn driving.ProgressFunc, phase driving.Phase) func(done, total int) {
	if fn == nil {
		return nil
	}
	return func(done, total int) {
		fn(phase, done, total)
	}
}
