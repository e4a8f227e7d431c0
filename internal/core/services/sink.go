package services

import (
	"context"
	"slices"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// SinkConfig configures a BatchSink.
type SinkConfig struct {
	// Spec is used when the index has to be created. Spec.Name is ignored.
	Spec domain.IndexSpec

	// BatchSize is the maximum number of records per upsert call.
	BatchSize int

	// Attempts is the number of tries per batch. 1 disables retries.
	Attempts int

	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration
}

// SinkResult describes a completed upload.
type SinkResult struct {
	IndexCreated bool
	Upserted     int
	Batches      int
}

// BatchSink writes embedded chunks to a vector index in fixed-size batches.
type BatchSink struct {
	index driven.VectorIndex
	cfg   SinkConfig
}

// NewBatchSink creates a batch sink.
func NewBatchSink(index driven.VectorIndex, cfg SinkConfig) *BatchSink {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Spec.Dimension <= 0 {
		cfg.Spec.Dimension = domain.DefaultDimensions
	}
	if cfg.Spec.Metric == "" {
		cfg.Spec.Metric = domain.MetricCosine
	}
	return &BatchSink{index: index, cfg: cfg}
}

// EnsureIndex creates the named index if it is not listed.
// It returns true if the index was created.
func (s *BatchSink) EnsureIndex(ctx context.Context, name string) (bool, error) {
	existing, err := s.index.ListIndexes(ctx)
	if err != nil {
		return false, &domain.IndexProvisionError{Index: name, Err: err}
	}
	if slices.Contains(existing, name) {
		logger.Debug("Index %s exists", name)
		return false, nil
	}

	spec := s.cfg.Spec
	spec.Name = name
	logger.Info("Creating index %s (dimension %d, metric %s)", name, spec.Dimension, spec.Metric)
	if err := s.index.CreateIndex(ctx, spec); err != nil {
		return false, &domain.IndexProvisionError{Index: name, Err: err}
	}
	return true, nil
}

// Upsert ensures the index exists and writes the chunks batch by batch.
// A failed batch aborts the remaining ones; committed batches stay written.
// progress may be nil.
func (s *BatchSink) Upsert(ctx context.Context, name string, chunks []domain.EmbeddedChunk, progress func(done, total int)) (SinkResult, error) {
	var result SinkResult

	created, err := s.EnsureIndex(ctx, name)
	if err != nil {
		return result, err
	}
	result.IndexCreated = created

	batch := make([]domain.VectorRecord, 0, s.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := retryWithBackoff(ctx, s.cfg.Attempts, s.cfg.RetryDelay, func() error {
			return s.index.Upsert(ctx, name, batch)
		})
		if err != nil {
			return &domain.UpsertError{Index: name, Batch: result.Batches, Committed: result.Upserted, Err: err}
		}

		result.Batches++
		result.Upserted += len(batch)
		logger.Info("Upserted batch %d (%d vectors)", result.Batches, len(batch))
		if progress != nil {
			progress(result.Upserted, len(chunks))
		}
		batch = batch[:0]
		return nil
	}

	for _, chunk := range chunks {
		batch = append(batch, chunk.Record())
		if len(batch) == s.cfg.BatchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := flush(); err != nil {
		return result, err
	}

	return result, nil
}
