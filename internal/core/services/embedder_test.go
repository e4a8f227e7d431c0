package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/tokens"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

const testDims = 8

func newTestChunkEmbedder(fake *fakeEmbedder, cfg EmbedderConfig) *ChunkEmbedder {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = testDims
	}
	return NewChunkEmbedder(fake, tokens.NewHeuristic(), cfg)
}

func TestChunkEmbedder_Embed_Success(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 100})

	res := e.Embed(context.Background(), chunksOf("hello world")[0])

	require.True(t, res.OK())
	assert.False(t, res.Retried)
	assert.Equal(t, "hello world", res.Chunk.Text)
	assert.False(t, res.Chunk.Truncated)
	assert.Len(t, res.Chunk.Embedding, testDims)
	assert.Equal(t, "doc.md", res.Chunk.Metadata.Source)
	assert.Equal(t, []string{"hello world"}, fake.Inputs())
}

func TestChunkEmbedder_Embed_DefensiveTruncation(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 10})
	long := strings.Repeat("é", 100)

	res := e.Embed(context.Background(), chunksOf(long)[0])

	require.True(t, res.OK())
	inputs := fake.Inputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, 40, utf8.RuneCountInString(inputs[0]), "first request carries maxTokens*4 characters")
	assert.Equal(t, inputs[0], res.Chunk.Text)
	assert.True(t, res.Chunk.Truncated)
	assert.False(t, res.Retried)
}

func TestChunkEmbedder_Embed_DefaultBudget(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	e := newTestChunkEmbedder(fake, EmbedderConfig{})
	long := strings.Repeat("a", 40000)

	res := e.Embed(context.Background(), chunksOf(long)[0])

	require.True(t, res.OK())
	assert.Len(t, fake.Inputs()[0], 32000)
}

func TestChunkEmbedder_Embed_LengthErrorRetriesOnceAtHalf(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	fake.embedFn = tooLongAbove(60, testDims)
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000})
	text := strings.Repeat("b", 100)

	res := e.Embed(context.Background(), chunksOf(text)[0])

	require.True(t, res.OK())
	assert.True(t, res.Retried)
	inputs := fake.Inputs()
	require.Len(t, inputs, 2)
	assert.Len(t, inputs[0], 100)
	assert.Len(t, inputs[1], 50)
	assert.Equal(t, inputs[1], res.Chunk.Text, "stored text matches the embedded text")
	assert.True(t, res.Chunk.Truncated)
	assert.Equal(t, float32(50), res.Chunk.Embedding[0])
}

func TestChunkEmbedder_Embed_RetryFailureDropsChunk(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	fake.embedFn = tooLongAbove(10, testDims)
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000})

	res := e.Embed(context.Background(), chunksOf(strings.Repeat("c", 100))[0])

	require.False(t, res.OK())
	assert.True(t, res.Retried)
	assert.Len(t, fake.Inputs(), 2, "exactly one retry")
	assert.ErrorIs(t, res.Err, domain.ErrEmbedding)
	assert.ErrorIs(t, res.Err, domain.ErrInputTooLong)
	var embedErr *domain.EmbeddingError
	require.True(t, errors.As(res.Err, &embedErr))
	assert.Equal(t, "c0", embedErr.ChunkID)
	assert.True(t, embedErr.Retried)
}

func TestChunkEmbedder_Embed_LengthMessageWithoutSentinel(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	calls := 0
	fake.embedFn = func(text string) ([]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("request too long for model")
		}
		return vectorFor(text, testDims), nil
	}
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000})

	res := e.Embed(context.Background(), chunksOf("abcdefgh")[0])

	require.True(t, res.OK())
	assert.True(t, res.Retried)
	assert.Equal(t, "abcd", res.Chunk.Text)
}

func TestChunkEmbedder_Embed_NonLengthErrorNotRetried(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	fake.embedFn = func(string) ([]float32, error) {
		return nil, errors.New("401 unauthorized")
	}
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000})

	res := e.Embed(context.Background(), chunksOf("text")[0])

	require.False(t, res.OK())
	assert.False(t, res.Retried)
	assert.Len(t, fake.Inputs(), 1)
	assert.ErrorIs(t, res.Err, domain.ErrEmbedding)
}

func TestChunkEmbedder_Embed_TokenQuotaErrorDropsChunk(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	calls := 0
	fake.embedFn = func(text string) ([]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("429 Too Many Requests: Rate limit reached on tokens per min (TPM)")
		}
		return vectorFor(text, testDims), nil
	}
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000})

	res := e.Embed(context.Background(), chunksOf("abcdefghij")[0])

	require.False(t, res.OK())
	assert.False(t, res.Retried)
	assert.Equal(t, []string{"abcdefghij"}, fake.Inputs())
}

func TestChunkEmbedder_Embed_RetryHalvesTruncatedText(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	fake.embedFn = func(string) ([]float32, error) {
		return nil, fmt.Errorf("embed: %w", domain.ErrInputTooLong)
	}
	e := newTestChunkEmbedder(fake, EmbedderConfig{})

	res := e.Embed(context.Background(), chunksOf(strings.Repeat("x", 100000))[0])

	require.False(t, res.OK())
	assert.True(t, res.Retried)
	inputs := fake.Inputs()
	require.Len(t, inputs, 2)
	assert.Len(t, inputs[0], 32000)
	assert.Len(t, inputs[1], 16000)
}

func TestChunkEmbedder_Embed_MaxTextBytes(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000, MaxTextBytes: 10})

	// Four 3-byte runes: the fourth would end at byte 12.
	res := e.Embed(context.Background(), chunksOf("日本語です")[0])

	require.True(t, res.OK())
	assert.Equal(t, "日本語", res.Chunk.Text)
	assert.True(t, res.Chunk.Truncated)
	assert.Equal(t, []string{"日本語"}, fake.Inputs())
}

func TestChunkEmbedder_Embed_DimensionMismatch(t *testing.T) {
	fake := newFakeEmbedder(3)
	e := newTestChunkEmbedder(fake, EmbedderConfig{Dimensions: testDims, MaxTokens: 1000})

	res := e.Embed(context.Background(), chunksOf("text")[0])

	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, domain.ErrDimensionMismatch)
	assert.Len(t, fake.Inputs(), 1)
}

func TestChunkEmbedder_EmbedAll_CountsFailures(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	fake.embedFn = func(text string) ([]float32, error) {
		if strings.HasPrefix(text, "bad") {
			return nil, errors.New("quota exceeded")
		}
		return vectorFor(text, testDims), nil
	}
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000})
	chunks := chunksOf("one", "bad two", "three", "bad four")

	var progress []int
	results, err := e.EmbedAll(context.Background(), chunks, func(done, total int) {
		assert.Equal(t, 4, total)
		progress = append(progress, done)
	})

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)

	report := &domain.RunReport{TotalChunks: len(chunks)}
	embedded := Summarise(results, report)
	assert.Len(t, embedded, 2)
	assert.Equal(t, "one", embedded[0].Text)
	assert.Equal(t, "three", embedded[1].Text)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 2, report.Embedded)
	assert.Len(t, report.Failures, 2)
	assert.Equal(t, "2 chunks failed of 4 total", report.FailureSummary())
}

func TestChunkEmbedder_EmbedAll_ConcurrentPreservesOrder(t *testing.T) {
	fake := newFakeEmbedder(testDims)
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	fake.embedFn = func(text string) ([]float32, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		// Longer texts finish first.
		time.Sleep(time.Duration(30-len(text)) * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return vectorFor(text, testDims), nil
	}
	e := newTestChunkEmbedder(fake, EmbedderConfig{MaxTokens: 1000, Concurrency: 4})

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = strings.Repeat("z", i+1)
	}
	results, err := e.EmbedAll(context.Background(), chunksOf(texts...), nil)

	require.NoError(t, err)
	require.Len(t, results, len(texts))
	for i, res := range results {
		require.True(t, res.OK())
		assert.Equal(t, texts[i], res.Chunk.Text)
	}
	assert.LessOrEqual(t, maxInFlight, 4)
}

func TestChunkEmbedder_EmbedAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newTestChunkEmbedder(newFakeEmbedder(testDims), EmbedderConfig{MaxTokens: 1000})

	_, err := e.EmbedAll(ctx, chunksOf("a", "b"), nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunkEmbedder_Preflight(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		e := newTestChunkEmbedder(newFakeEmbedder(testDims), EmbedderConfig{})
		assert.NoError(t, e.Preflight(context.Background()))
	})

	t.Run("rejected key", func(t *testing.T) {
		fake := newFakeEmbedder(testDims)
		fake.pingErr = fmt.Errorf("openai: API error 401: %w", domain.ErrUnauthorized)
		e := newTestChunkEmbedder(fake, EmbedderConfig{})

		err := e.Preflight(context.Background())

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, EnvOpenAIAPIKey, cfgErr.Key)
	})

	t.Run("unreachable service", func(t *testing.T) {
		fake := newFakeEmbedder(testDims)
		fake.pingErr = errors.New("connection refused")
		e := newTestChunkEmbedder(fake, EmbedderConfig{})

		err := e.Preflight(context.Background())

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("model dimensions differ from index", func(t *testing.T) {
		e := newTestChunkEmbedder(newFakeEmbedder(3), EmbedderConfig{})

		err := e.Preflight(context.Background())

		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})
}

func TestIsLengthError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{domain.ErrInputTooLong, true},
		{errors.New("This model's maximum context length is 8192 tokens"), true},
		{errors.New("input too long"), true},
		{fmt.Errorf("wrap: %w", errors.New("context_length_exceeded")), true},
		{errors.New("invalid length"), false},
		{errors.New("Rate limit reached for text-embedding-3-small in organization org-x on tokens per min (TPM): Limit 1000000, Used 999000, Requested 2000."), false},
		{errors.New("connection refused"), false},
		{errors.New("rate limit exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, isLengthError(tt.err))
		})
	}
}

func TestFirstHalf(t *testing.T) {
	assert.Equal(t, "", firstHalf(""))
	assert.Equal(t, "", firstHalf("a"))
	assert.Equal(t, "ab", firstHalf("abcde"))
	assert.Equal(t, "日本", firstHalf("日本語です"))
}
