package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// lengthMarkers are substrings of embedding service errors that indicate
// the input was rejected for its size.
var lengthMarkers = []string{"maximum context length", "context_length_exceeded", "too long"}

// EmbedderConfig configures a ChunkEmbedder.
type EmbedderConfig struct {
	// Dimensions is the required vector size. 0 skips the check.
	Dimensions int

	// MaxTokens bounds the text of every request.
	MaxTokens int

	// Concurrency is the number of chunks embedded at once.
	// Values below 2 embed sequentially.
	Concurrency int

	// RequestsPerSecond throttles requests. 0 disables throttling.
	RequestsPerSecond float64

	// MaxTextBytes bounds the UTF-8 size of embedded text for indexes that
	// cap stored text. 0 means no bound.
	MaxTextBytes int
}

// ChunkEmbedder turns chunks into embedded chunks. Over-long text is cut to
// the token budget before the first request; a length rejection is retried
// once with half the text that was sent. Any other failure drops the chunk.
type ChunkEmbedder struct {
	embedder driven.Embedder
	counter  driven.TokenCounter
	limiter  *rate.Limiter
	cfg      EmbedderConfig
}

// NewChunkEmbedder creates a chunk embedder.
func NewChunkEmbedder(embedder driven.Embedder, counter driven.TokenCounter, cfg EmbedderConfig) *ChunkEmbedder {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &ChunkEmbedder{
		embedder: embedder,
		counter:  counter,
		limiter:  rate.NewLimiter(limit, 1),
		cfg:      cfg,
	}
}

// Preflight checks that the embedding service accepts the credentials and
// that the model produces vectors of the configured size.
func (e *ChunkEmbedder) Preflight(ctx context.Context) error {
	model, dims := e.embedder.ModelName(), e.embedder.Dimensions()
	logger.Info("Embedding model: %s (%d dimensions, %s token counting)", model, dims, e.counter.Name())

	if e.cfg.Dimensions > 0 && dims > 0 && dims != e.cfg.Dimensions {
		return fmt.Errorf("%w: model %s produces %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, model, dims, e.cfg.Dimensions)
	}

	if err := e.embedder.Ping(ctx); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return &domain.ConfigurationError{Key: EnvOpenAIAPIKey, Reason: "rejected by the embedding service"}
		}
		return fmt.Errorf("embedding service unavailable: %w", err)
	}
	return nil
}

// Embed embeds a single chunk. The returned chunk's Text is exactly the
// text that was embedded.
func (e *ChunkEmbedder) Embed(ctx context.Context, chunk domain.Chunk) domain.EmbedResult {
	original := chunk.Text

	text := e.fit(original)
	if text != original {
		logger.Debug("Chunk %s truncated from %d to %d tokens before embedding",
			chunk.ID, e.counter.Count(original), e.counter.Count(text))
	}

	vector, err := e.request(ctx, text)
	retried := false
	if err != nil && ctx.Err() == nil && isLengthError(err) {
		retried = true
		// text is a prefix of original, so halving it also halves
		// whichever of the two is shorter.
		text = firstHalf(text)
		logger.Warn("Chunk %s rejected for length, retrying with %d characters",
			chunk.ID, utf8.RuneCountInString(text))
		vector, err = e.request(ctx, text)
	}

	if err != nil {
		return domain.EmbedResult{
			Err:     &domain.EmbeddingError{ChunkID: chunk.ID, Retried: retried, Err: err},
			Retried: retried,
		}
	}

	chunk.Text = text
	chunk.Truncated = chunk.Truncated || text != original

	return domain.EmbedResult{
		Chunk:   domain.EmbeddedChunk{Chunk: chunk, Embedding: vector},
		Retried: retried,
	}
}

// EmbedAll embeds every chunk and returns one result per chunk in input
// order. Failures are logged and carried in the results. progress may be nil.
func (e *ChunkEmbedder) EmbedAll(ctx context.Context, chunks []domain.Chunk, progress func(done, total int)) ([]domain.EmbedResult, error) {
	results := make([]domain.EmbedResult, len(chunks))

	var mu sync.Mutex
	done := 0
	finish := func(i int, res domain.EmbedResult) {
		mu.Lock()
		defer mu.Unlock()
		results[i] = res
		if !res.OK() {
			logger.Error("Error embedding chunk %s: %v", chunks[i].ID, res.Err)
		}
		done++
		if progress != nil {
			progress(done, len(chunks))
		}
	}

	if e.cfg.Concurrency == 1 || len(chunks) < 2 {
		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			finish(i, e.Embed(ctx, chunk))
		}
		return results, nil
	}

	pool, err := ants.NewPool(e.cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			finish(i, e.Embed(ctx, chunk))
		})
		if submitErr != nil {
			wg.Done()
			finish(i, domain.EmbedResult{Err: &domain.EmbeddingError{ChunkID: chunk.ID, Err: submitErr}})
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *ChunkEmbedder) request(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if e.cfg.Dimensions > 0 && len(vector) != e.cfg.Dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vector), e.cfg.Dimensions)
	}
	return vector, nil
}

// isLengthError reports whether err indicates the input was too long.
func isLengthError(err error) bool {
	if errors.Is(err, domain.ErrInputTooLong) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range lengthMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// fit cuts text to the token budget and then to MaxTextBytes.
func (e *ChunkEmbedder) fit(text string) string {
	text = e.counter.Truncate(text, e.cfg.MaxTokens)
	if e.cfg.MaxTextBytes > 0 && len(text) > e.cfg.MaxTextBytes {
		cut := e.cfg.MaxTextBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

// firstHalf returns the first half of text by rune count.
func firstHalf(text string) string {
	half := utf8.RuneCountInString(text) / 2
	i := 0
	for pos := range text {
		if i == half {
			return text[:pos]
		}
		i++
	}
	return text
}

// Summarise folds embedding results into embedded chunks and the report.
func Summarise(results []domain.EmbedResult, report *domain.RunReport) []domain.EmbeddedChunk {
	embedded := make([]domain.EmbeddedChunk, 0, len(results))
	for _, res := range results {
		if !res.OK() {
			report.Failed++
			report.Failures = append(report.Failures, res.Err)
			continue
		}
		if res.Chunk.Truncated {
			report.Truncated++
		}
		embedded = append(embedded, res.Chunk)
	}
	report.Embedded = len(embedded)
	return embedded
}
