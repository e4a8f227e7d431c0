package domain

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrSourceRead", ErrSourceRead},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrInputTooLong", ErrInputTooLong},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrIndexProvision", ErrIndexProvision},
		{"ErrUpsert", ErrUpsert},
		{"ErrInvalidRepoRef", ErrInvalidRepoRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Key: "OPENAI_API_KEY", Reason: "environment variable not set"}

	assert.Equal(t, "configuration error: OPENAI_API_KEY: environment variable not set", err.Error())
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.False(t, errors.Is(err, ErrEmbedding))
}

func TestSourceReadError(t *testing.T) {
	err := &SourceReadError{Source: "a.md", Err: fs.ErrPermission}

	assert.Contains(t, err.Error(), "a.md")
	assert.True(t, errors.Is(err, ErrSourceRead))
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestEmbeddingError(t *testing.T) {
	t.Run("first attempt", func(t *testing.T) {
		err := &EmbeddingError{ChunkID: "c1", Err: errors.New("quota exceeded")}

		assert.Equal(t, "embed chunk c1: quota exceeded", err.Error())
		assert.True(t, errors.Is(err, ErrEmbedding))
	})

	t.Run("after retry", func(t *testing.T) {
		err := &EmbeddingError{ChunkID: "c1", Retried: true, Err: ErrInputTooLong}

		assert.Contains(t, err.Error(), "after truncated retry")
		assert.True(t, errors.Is(err, ErrEmbedding))
		assert.True(t, errors.Is(err, ErrInputTooLong))
	})
}

func TestIndexProvisionError(t *testing.T) {
	cause := errors.New("unauthorized")
	err := &IndexProvisionError{Index: "docs", Err: cause}

	assert.Equal(t, "provision index docs: unauthorized", err.Error())
	assert.True(t, errors.Is(err, ErrIndexProvision))
	assert.True(t, errors.Is(err, cause))
}

func TestUpsertError(t *testing.T) {
	err := &UpsertError{Index: "docs", Batch: 2, Committed: 200, Err: errors.New("timeout")}

	assert.Equal(t, "upsert batch 2 into docs (200 records committed): timeout", err.Error())
	assert.True(t, errors.Is(err, ErrUpsert))

	var upsertErr *UpsertError
	assert.True(t, errors.As(err, &upsertErr))
	assert.Equal(t, 200, upsertErr.Committed)
}
