package postprocessors

import (
	"testing"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// registryMockSegmenter is a simple mock for testing registry functionality.
type registryMockSegmenter struct {
	size int
}

func (m *registryMockSegmenter) Segment(_, _ string) []domain.Chunk { return nil }
func (m *registryMockSegmenter) TargetSize() int { return m.size }

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(_ map[string]any) (driven.Segmenter, error) {
		return &registryMockSegmenter{}, nil
	})

	if !r.Has("test") {
		t.Error("expected 'test' to be registered")
	}
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(cfg map[string]any) (driven.Segmenter, error) {
		return &registryMockSegmenter{size: getIntFromConfig(cfg, "target_size")}, nil
	})

	seg, err := r.Build("test", map[string]any{"target_size": 42})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if seg.TargetSize() != 42 {
		t.Errorf("expected target size 42, got %d", seg.TargetSize())
	}
}

func TestRegistry_Build_UnknownSegmenter(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("unknown", nil)
	if err == nil {
		t.Error("expected error for unknown segmenter")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()

	if names := r.Names(); len(names) != 0 {
		t.Errorf("expected 0 names, got %d", len(names))
	}

	build := func(_ map[string]any) (driven.Segmenter, error) {
		return &registryMockSegmenter{}, nil
	}
	r.Register("beta", build)
	r.Register("alpha", build)

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected [alpha beta], got %v", names)
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	if !r.Has(DefaultSegmenter) {
		t.Error("expected 'chunker' to be registered after RegisterDefaults")
	}
}

func TestBuildChunker_WithConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	seg, err := r.Build(DefaultSegmenter, map[string]any{"target_size": int64(750)})
	if err != nil {
		t.Fatalf("Build chunker failed: %v", err)
	}

	if seg.TargetSize() != 750 {
		t.Errorf("expected target size 750, got %d", seg.TargetSize())
	}
}

func TestBuildChunker_WithNilConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	seg, err := r.Build(DefaultSegmenter, nil)
	if err != nil {
		t.Fatalf("Build chunker with nil config failed: %v", err)
	}

	if seg.TargetSize() != domain.DefaultTargetSize {
		t.Errorf("expected default target size, got %d", seg.TargetSize())
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		key      string
		expected int
	}{
		{"int value", map[string]any{"size": 100}, "size", 100},
		{"int64 value", map[string]any{"size": int64(200)}, "size", 200},
		{"float64 value", map[string]any{"size": float64(300)}, "size", 300},
		{"string value", map[string]any{"size": "400"}, "size", 0},
		{"missing key", map[string]any{"other": 100}, "size", 0},
		{"nil config", nil, "size", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getIntFromConfig(tt.cfg, tt.key)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}
