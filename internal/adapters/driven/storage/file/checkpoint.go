// Package file provides a JSON checkpoint store for embedded chunks.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore persists embedded chunks as a single JSON array.
type CheckpointStore struct {
	path string
}

// NewCheckpointStore creates a store writing to path.
func NewCheckpointStore(path string) *CheckpointStore {
	if path == "" {
		path = domain.DefaultCheckpointPath
	}
	return &CheckpointStore{path: path}
}

// Path returns the checkpoint file path.
func (s *CheckpointStore) Path() string {
	return s.path
}

// Save writes chunks atomically, replacing any previous checkpoint.
func (s *CheckpointStore) Save(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if chunks == nil {
		chunks = []domain.EmbeddedChunk{}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close checkpoint: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint. Returns domain.ErrNotFound if it does not exist.
func (s *CheckpointStore) Load(ctx context.Context) ([]domain.EmbeddedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checkpoint %s: %w", s.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var chunks []domain.EmbeddedChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("%w: checkpoint %s: %v", domain.ErrInvalidInput, s.path, err)
	}
	return chunks, nil
}
