package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Assembler walks a document source and segments every document.
type Assembler struct {
	source    driven.DocumentSource
	segmenter driven.Segmenter
}

// NewAssembler creates an assembler over the given source and segmenter.
func NewAssembler(source driven.DocumentSource, segmenter driven.Segmenter) *Assembler {
	return &Assembler{
		source:    source,
		segmenter: segmenter,
	}
}

// Assemble returns the chunks of every document in enumeration order, then
// in chunk order within each document. A document that cannot be read
// stops the assembly.
func (a *Assembler) Assemble(ctx context.Context) ([]domain.Chunk, []domain.SourceReport, error) {
	names, err := a.source.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list documents: %w", err)
	}

	var chunks []domain.Chunk
	reports := make([]domain.SourceReport, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		text, err := a.source.Read(ctx, name)
		if err != nil {
			return nil, nil, err
		}

		segmented := a.segmenter.Segment(text, name)
		logger.Info("Loaded %d chunks from %s", len(segmented), name)

		chunks = append(chunks, segmented...)
		reports = append(reports, domain.SourceReport{Name: name, Chunks: len(segmented)})
	}

	return chunks, reports, nil
}
