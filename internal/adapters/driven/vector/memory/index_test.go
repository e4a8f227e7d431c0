package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func spec(name string) domain.IndexSpec {
	return domain.IndexSpec{Name: name, Dimension: 3, Metric: domain.MetricCosine}
}

func record(id string, values ...float32) domain.VectorRecord {
	return domain.VectorRecord{ID: id, Values: values, Metadata: domain.RecordMetadata{Text: "t", Source: "a.md"}}
}

func TestIndex_CreateAndList(t *testing.T) {
	ctx := context.Background()
	idx := New()

	names, err := idx.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, idx.CreateIndex(ctx, spec("b")))
	require.NoError(t, idx.CreateIndex(ctx, spec("a")))

	names, err = idx.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	got, ok := idx.Spec("a")
	require.True(t, ok)
	assert.Equal(t, 3, got.Dimension)

	assert.Error(t, idx.CreateIndex(ctx, spec("a")), "duplicate create fails")
	assert.ErrorIs(t, idx.CreateIndex(ctx, domain.IndexSpec{Name: "z"}), domain.ErrInvalidInput)
}

func TestIndex_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and replaces by id", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.CreateIndex(ctx, spec("docs")))

		require.NoError(t, idx.Upsert(ctx, "docs", []domain.VectorRecord{record("1", 1, 0, 0), record("2", 0, 1, 0)}))
		require.NoError(t, idx.Upsert(ctx, "docs", []domain.VectorRecord{record("1", 0, 0, 1)}))

		assert.Equal(t, 2, idx.Count("docs"))
		r, ok := idx.Record("docs", "1")
		require.True(t, ok)
		assert.Equal(t, []float32{0, 0, 1}, r.Values)
		assert.Equal(t, []int{2, 1}, idx.BatchSizes())
	})

	t.Run("unknown index", func(t *testing.T) {
		err := New().Upsert(ctx, "nope", []domain.VectorRecord{record("1", 1, 2, 3)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("dimension mismatch rejects whole batch", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.CreateIndex(ctx, spec("docs")))

		err := idx.Upsert(ctx, "docs", []domain.VectorRecord{record("ok", 1, 2, 3), record("bad", 1, 2)})

		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
		assert.Equal(t, 0, idx.Count("docs"))
		assert.Empty(t, idx.BatchSizes())
	})
}
