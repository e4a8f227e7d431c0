// Package langchain provides an embedding adapter backed by langchaingo's
// OpenAI client. It is an alternative to the plain HTTP adapter and works
// with any OpenAI-compatible endpoint langchaingo supports.
package langchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// lengthMarkers are substrings of provider errors caused by over-long input.
var lengthMarkers = []string{"maximum context length", "context_length_exceeded"}

// authMarkers are substrings of provider errors caused by a rejected key.
var authMarkers = []string{"status code: 401", "invalid_api_key", "incorrect api key"}

// Config holds configuration for the langchaingo embedder.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// Embedder generates embeddings through langchaingo.
type Embedder struct {
	embedder   embeddings.Embedder
	model      string
	dimensions int
}

// New creates an embedder.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Key: "OPENAI_API_KEY", Reason: "environment variable not set"}
	}
	if cfg.Model == "" {
		cfg.Model = domain.DefaultEmbeddingModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.DefaultDimensions
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("langchain: create client: %w", err)
	}

	// Text must reach the model unchanged so the stored text matches its vector.
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("langchain: create embedder: %w", err)
	}

	return &Embedder{
		embedder:   embedder,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	logger.Debug("langchain: embedding %d characters", len(text))

	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, classify(err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("langchain: no embedding returned")
	}
	return vec, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the name of the embedding model being used.
func (e *Embedder) ModelName() string {
	return e.model
}

// Ping embeds a short test string.
func (e *Embedder) Ping(ctx context.Context) error {
	if _, err := e.embedder.EmbedQuery(ctx, "ping"); err != nil {
		return fmt.Errorf("langchain: ping failed: %w", classify(err))
	}
	return nil
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}

// classify marks length rejections with domain.ErrInputTooLong and
// rejected keys with domain.ErrUnauthorized.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range lengthMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", domain.ErrInputTooLong, err)
		}
	}
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
	}
	return fmt.Errorf("langchain: embed: %w", err)
}
