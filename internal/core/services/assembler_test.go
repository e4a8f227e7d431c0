package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors/chunker"
)

func TestAssembler_Assemble_OrdersBySourceThenChunk(t *testing.T) {
	source := &mapSource{docs: map[string]string{
		"b.md":  "beta one\n\nbeta two",
		"a.txt": "alpha",
		"c.md":  "",
	}}
	assembler := NewAssembler(source, chunker.New(chunker.WithChunkSize(8)))

	chunks, reports, err := assembler.Assemble(context.Background())

	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "alpha", chunks[0].Text)
	assert.Equal(t, "a.txt", chunks[0].Metadata.Source)
	assert.Equal(t, "beta one", chunks[1].Text)
	assert.Equal(t, "beta two", chunks[2].Text)
	assert.Equal(t, "b.md", chunks[2].Metadata.Source)

	assert.Equal(t, []domain.SourceReport{
		{Name: "a.txt", Chunks: 1},
		{Name: "b.md", Chunks: 2},
		{Name: "c.md", Chunks: 0},
	}, reports)

	ids := map[string]bool{}
	for _, c := range chunks {
		assert.NotEmpty(t, c.ID)
		ids[c.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestAssembler_Assemble_ExampleDocument(t *testing.T) {
	para := strings.Repeat("a", 599)
	text := para + "\n\n" + para // 1200 characters
	require.Len(t, text, 1200)

	source := &mapSource{docs: map[string]string{"a.md": text}}
	assembler := NewAssembler(source, chunker.New(chunker.WithChunkSize(750)))

	chunks, _, err := assembler.Assemble(context.Background())

	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestAssembler_Assemble_ReadErrorStops(t *testing.T) {
	source := &mapSource{
		docs:   map[string]string{"a.md": "fine", "b.md": "unreadable", "c.md": "never read"},
		failOn: "b.md",
	}
	assembler := NewAssembler(source, chunker.New())

	chunks, reports, err := assembler.Assemble(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceRead)
	var readErr *domain.SourceReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, "b.md", readErr.Source)
	assert.Nil(t, chunks)
	assert.Nil(t, reports)
}

func TestAssembler_Assemble_ListError(t *testing.T) {
	source := &mapSource{listErr: errors.New("directory does not exist: data/raw")}
	assembler := NewAssembler(source, chunker.New())

	_, _, err := assembler.Assemble(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list documents")
}
