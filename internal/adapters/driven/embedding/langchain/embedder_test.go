package langchain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := New(Config{})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("defaults", func(t *testing.T) {
		e, err := New(Config{APIKey: "sk-test"})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultEmbeddingModel, e.ModelName())
		assert.Equal(t, domain.DefaultDimensions, e.Dimensions())
		assert.NoError(t, e.Close())
	})
}

func TestEmbedder_Embed(t *testing.T) {
	var gotInput any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotInput = body["input"]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-small","usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer server.Close()

	e, err := New(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "line one\nline two")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Contains(t, gotInput, "line one\nline two", "newlines are preserved")
}

func TestClassify(t *testing.T) {
	t.Run("length errors", func(t *testing.T) {
		err := classify(errors.New("API returned unexpected status code: 400: This model's maximum context length is 8192 tokens"))
		assert.ErrorIs(t, err, domain.ErrInputTooLong)
	})

	t.Run("rejected key", func(t *testing.T) {
		err := classify(errors.New("API returned unexpected status code: 401: Incorrect API key provided"))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.NotErrorIs(t, err, domain.ErrInputTooLong)
	})

	t.Run("other errors", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := classify(cause)
		assert.NotErrorIs(t, err, domain.ErrInputTooLong)
		assert.ErrorIs(t, err, cause)
	})
}
