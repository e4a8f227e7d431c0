package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// mapSource is an in-memory document source listing names in sorted order.
type mapSource struct {
	docs    map[string]string
	failOn  string
	listErr error
}

var _ driven.DocumentSource = (*mapSource)(nil)

func (s *mapSource) List(_ context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *mapSource) Read(_ context.Context, name string) (string, error) {
	if name == s.failOn {
		return "", &domain.SourceReadError{Source: name, Err: errors.New("permission denied")}
	}
	text, ok := s.docs[name]
	if !ok {
		return "", &domain.SourceReadError{Source: name, Err: domain.ErrNotFound}
	}
	return text, nil
}

// fakeEmbedder returns a vector derived from the text length and records
// every text it receives.
type fakeEmbedder struct {
	mu         sync.Mutex
	dims       int
	inputs     []string
	embedFn    func(text string) ([]float32, error)
	pingErr    error
	closeCalls int
}

var _ driven.Embedder = (*fakeEmbedder)(nil)

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	fn := f.embedFn
	f.mu.Unlock()

	if fn != nil {
		return fn(text)
	}
	return vectorFor(text, f.dims), nil
}

func (f *fakeEmbedder) Inputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) ModelName() string { return "fake" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return f.pingErr }
func (f *fakeEmbedder) Close() error {
	f.closeCalls++
	return nil
}

func vectorFor(text string, dims int) []float32 {
	v := make([]float32, dims)
	if dims > 0 {
		v[0] = float32(utf8.RuneCountInString(text))
	}
	return v
}

// tooLongAbove fails with a length error when the text exceeds limit runes.
func tooLongAbove(limit, dims int) func(string) ([]float32, error) {
	return func(text string) ([]float32, error) {
		if utf8.RuneCountInString(text) > limit {
			return nil, fmt.Errorf("This model's maximum context length is 8192 tokens: %w", domain.ErrInputTooLong)
		}
		return vectorFor(text, dims), nil
	}
}

// recordingIndex records every call in order.
type recordingIndex struct {
	mu        sync.Mutex
	existing  []string
	calls     []string
	specs     []domain.IndexSpec
	batches   [][]domain.VectorRecord
	listErr   error
	createErr error
	upsertErr func(batch int) error
}

var _ driven.VectorIndex = (*recordingIndex)(nil)

func (r *recordingIndex) ListIndexes(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "list")
	return r.existing, r.listErr
}

func (r *recordingIndex) CreateIndex(_ context.Context, spec domain.IndexSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "create")
	r.specs = append(r.specs, spec)
	return r.createErr
}

func (r *recordingIndex) Upsert(_ context.Context, _ string, records []domain.VectorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "upsert")
	if r.upsertErr != nil {
		if err := r.upsertErr(len(r.batches)); err != nil {
			r.batches = append(r.batches, nil)
			return err
		}
	}
	r.batches = append(r.batches, append([]domain.VectorRecord(nil), records...))
	return nil
}

func (r *recordingIndex) Close() error { return nil }

func (r *recordingIndex) batchSizes() []int {
	sizes := make([]int, 0, len(r.batches))
	for _, b := range r.batches {
		sizes = append(sizes, len(b))
	}
	return sizes
}

// memCheckpoint keeps the checkpoint in memory.
type memCheckpoint struct {
	chunks  []domain.EmbeddedChunk
	saved   bool
	saveErr error
}

var _ driven.CheckpointStore = (*memCheckpoint)(nil)

func (m *memCheckpoint) Save(_ context.Context, chunks []domain.EmbeddedChunk) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.chunks = append([]domain.EmbeddedChunk(nil), chunks...)
	m.saved = true
	return nil
}

func (m *memCheckpoint) Load(_ context.Context) ([]domain.EmbeddedChunk, error) {
	if !m.saved {
		return nil, fmt.Errorf("checkpoint: %w", domain.ErrNotFound)
	}
	return m.chunks, nil
}

func (m *memCheckpoint) Path() string { return "memory://checkpoint" }

func embeddedChunks(n, dims int) []domain.EmbeddedChunk {
	out := make([]domain.EmbeddedChunk, n)
	for i := range out {
		out[i] = domain.EmbeddedChunk{
			Chunk: domain.Chunk{
				ID:       fmt.Sprintf("chunk-%03d", i),
				Text:     strings.Repeat("x", i+1),
				Metadata: domain.ChunkMetadata{Source: "doc.md"},
			},
			Embedding: vectorFor(strings.Repeat("x", i+1), dims),
		}
	}
	return out
}

func chunksOf(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		out[i] = domain.Chunk{
			ID:       fmt.Sprintf("c%d", i),
			Text:     text,
			Metadata: domain.ChunkMetadata{Source: "doc.md"},
		}
	}
	return out
}
