package domain

// Document is a named piece of raw text read from a document source.
// The text is held only long enough to be segmented.
type Document struct {
	// Name identifies the originating document (e.g. the file name).
	Name string

	// Content is the raw text.
	Content string
}

// ChunkMetadata carries the provenance of a chunk.
type ChunkMetadata struct {
	// Source is the name of the originating document.
	// It is used for provenance, not uniqueness.
	Source string `json:"source"`
}

// Chunk is a bounded-size segment of a document.
type Chunk struct {
	// ID is generated at assembly time and is only stable within a run.
	ID string `json:"id"`

	// Text is the non-empty, trimmed chunk text.
	Text string `json:"text"`

	// Metadata holds the provenance of the chunk.
	Metadata ChunkMetadata `json:"metadata"`

	// Truncated is set when Text was shortened before embedding.
	Truncated bool `json:"truncated,omitempty"`
}

// EmbeddedChunk is a chunk together with the vector computed for its Text.
type EmbeddedChunk struct {
	Chunk

	// Embedding is the vector computed for Text.
	Embedding []float32 `json:"embedding"`
}

// Record converts the embedded chunk into the record stored in a vector index.
// Metadata is limited to text and source; the vector is never duplicated into it.
func (c EmbeddedChunk) Record() VectorRecord {
	return VectorRecord{
		ID:     c.ID,
		Values: c.Embedding,
		Metadata: RecordMetadata{
			Text:   c.Text,
			Source: c.Metadata.Source,
		},
	}
}

// EmbedResult is the outcome of embedding a single chunk.
// Exactly one of Chunk or Err is meaningful.
type EmbedResult struct {
	// Chunk is the embedded chunk when Err is nil.
	Chunk EmbeddedChunk

	// Err describes why the chunk was dropped.
	Err error

	// Retried reports whether the truncate-and-retry path was taken.
	Retried bool
}

// OK returns true if the chunk was embedded.
func (r EmbedResult) OK() bool {
	return r.Err == nil
}
