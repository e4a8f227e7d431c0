package driven

import "github.com/custodia-labs/sercha-ingest/internal/core/domain"

// Segmenter splits raw text into ordered chunks bounded by a target size.
// Segmentation is deterministic given (text, target size); only chunk IDs vary.
type Segmenter interface {
	// Segment returns the chunks of text tagged with the given source name.
	// Empty input yields no chunks.
	Segment(text, source string) []domain.Chunk

	// TargetSize returns the soft upper bound of a chunk in characters.
	TargetSize() int
}
