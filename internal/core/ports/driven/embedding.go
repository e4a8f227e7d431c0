package driven

import "context"

// Embedder generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI over plain HTTP (text-embedding-3-small, text-embedding-3-large)
//   - OpenAI through langchaingo
//
// Errors caused by over-long input should wrap domain.ErrInputTooLong so the
// caller can retry with shorter text.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1536).
	// This is determined by the model and must match the vector index.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// TokenCounter measures text against an embedding model's token budget.
type TokenCounter interface {
	// Count returns the (possibly approximate) number of tokens in text.
	Count(text string) int

	// Truncate returns the longest prefix of text that fits in maxTokens.
	Truncate(text string, maxTokens int) string

	// Name identifies the counting strategy for logging.
	Name() string
}
