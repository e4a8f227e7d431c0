package domain

import "fmt"

// SourceReport records how many chunks a single document produced.
type SourceReport struct {
	Name   string
	Chunks int
}

// RunReport summarises an ingestion run.
type RunReport struct {
	// Sources lists every document read, in enumeration order.
	Sources []SourceReport

	// TotalChunks is the number of chunks produced by segmentation.
	TotalChunks int

	// Embedded is the number of chunks that received a vector.
	Embedded int

	// Failed is the number of chunks dropped at the embedding stage.
	Failed int

	// Truncated is the number of embedded chunks whose text was shortened.
	Truncated int

	// Upserted is the number of records written to the vector index.
	Upserted int

	// Batches is the number of upsert calls made.
	Batches int

	// IndexCreated reports whether the index was provisioned by this run.
	IndexCreated bool

	// Checkpoint is the path the embedded chunks were persisted to.
	Checkpoint string

	// Failures holds the per-chunk embedding errors.
	Failures []error
}

// FailureSummary returns the aggregate embedding failure line.
func (r *RunReport) FailureSummary() string {
	return fmt.Sprintf("%d chunks failed of %d total", r.Failed, r.TotalChunks)
}
