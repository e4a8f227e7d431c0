// Package memory provides an in-process vector index used for dry runs and
// tests. Nothing is persisted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type collection struct {
	spec    domain.IndexSpec
	records map[string]domain.VectorRecord
}

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
	batches     []int
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		collections: make(map[string]*collection),
	}
}

// ListIndexes returns index names in sorted order.
func (x *Index) ListIndexes(_ context.Context) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	names := make([]string, 0, len(x.collections))
	for name := range x.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateIndex provisions an empty index. Creating an existing index fails.
func (x *Index) CreateIndex(_ context.Context, spec domain.IndexSpec) error {
	if spec.Name == "" || spec.Dimension <= 0 {
		return fmt.Errorf("%w: index name and dimension are required", domain.ErrInvalidInput)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.collections[spec.Name]; ok {
		return fmt.Errorf("index %s already exists", spec.Name)
	}
	x.collections[spec.Name] = &collection{
		spec:    spec,
		records: make(map[string]domain.VectorRecord),
	}
	return nil
}

// Upsert stores records by ID, replacing existing ones.
// Every vector must match the index dimension.
func (x *Index) Upsert(_ context.Context, index string, records []domain.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	c, ok := x.collections[index]
	if !ok {
		return fmt.Errorf("index %s: %w", index, domain.ErrNotFound)
	}

	for _, r := range records {
		if len(r.Values) != c.spec.Dimension {
			return fmt.Errorf("%w: record %s has %d values, index %s expects %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Values), index, c.spec.Dimension)
		}
	}
	for _, r := range records {
		c.records[r.ID] = r
	}
	x.batches = append(x.batches, len(records))
	return nil
}

// Spec returns the spec an index was created with.
func (x *Index) Spec(index string) (domain.IndexSpec, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	c, ok := x.collections[index]
	if !ok {
		return domain.IndexSpec{}, false
	}
	return c.spec, true
}

// Count returns the number of records stored in an index.
func (x *Index) Count(index string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if c, ok := x.collections[index]; ok {
		return len(c.records)
	}
	return 0
}

// Record returns a stored record by ID.
func (x *Index) Record(index, id string) (domain.VectorRecord, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	c, ok := x.collections[index]
	if !ok {
		return domain.VectorRecord{}, false
	}
	r, ok := c.records[id]
	return r, ok
}

// BatchSizes returns the size of every successful upsert call, in order.
func (x *Index) BatchSizes() []int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]int(nil), x.batches...)
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}
