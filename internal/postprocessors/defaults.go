package postprocessors

import (
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors/chunker"
)

// DefaultSegmenter is the name of the paragraph-packing segmenter.
const DefaultSegmenter = "chunker"

// RegisterDefaults registers all built-in segmenters with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(DefaultSegmenter, buildChunker)
}

// buildChunker creates a chunker from generic config.
// Supported config keys:
//   - target_size (int): Target characters per chunk (default: 1000)
func buildChunker(cfg map[string]any) (driven.Segmenter, error) {
	var opts []chunker.Option

	if size := getIntFromConfig(cfg, "target_size"); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
