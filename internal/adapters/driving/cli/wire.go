package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/embedding/langchain"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/embedding/openai"
	storagefile "github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/tokens"
	vectormemory "github.com/custodia-labs/sercha-ingest/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/vector/milvus"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/vector/pinecone"
	"github.com/custodia-labs/sercha-ingest/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-ingest/internal/connectors/github"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/services"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors/chunker"
)

// Adapter constructors. Tests replace these with fakes.
var (
	newConfigStore     = defaultConfigStore
	newEmbedder        = defaultEmbedder
	newTokenCounter    = defaultTokenCounter
	newVectorIndex     = defaultVectorIndex
	newFetcher         = defaultFetcher
	newDocumentSource  = defaultDocumentSource
	newCheckpointStore = defaultCheckpointStore
	newSegmenter       = defaultSegmenter
)

func defaultConfigStore(path string) (driven.ConfigStore, error) {
	store, err := file.NewConfigStore(path)
	if err != nil {
		if path != "" {
			return nil, err
		}
		// No home directory: run on defaults and the environment.
		logger.Warn("Config file unavailable, using defaults: %v", err)
		return memory.NewConfigStore(nil), nil
	}
	return store, nil
}

func defaultEmbedder(_ context.Context, s domain.EmbeddingSettings) (driven.Embedder, error) {
	switch s.Provider {
	case domain.EmbeddingProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: s.Dimensions,
		})
	case domain.EmbeddingProviderLangChain:
		return langchain.New(langchain.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: s.Dimensions,
		})
	default:
		return nil, &domain.ConfigurationError{Key: "embedding.provider", Reason: "unknown provider " + string(s.Provider)}
	}
}

func defaultTokenCounter(s domain.EmbeddingSettings) driven.TokenCounter {
	if s.Tokenizer == domain.TokenizerTiktoken {
		counter, err := tokens.NewTiktoken(s.Model)
		if err == nil {
			return counter
		}
		logger.Warn("tiktoken unavailable, falling back to heuristic: %v", err)
	}
	return tokens.NewHeuristic()
}

func defaultVectorIndex(ctx context.Context, s domain.VectorSettings) (driven.VectorIndex, error) {
	switch s.Provider {
	case domain.VectorProviderPinecone:
		return pinecone.New(pinecone.Config{APIKey: s.APIKey})
	case domain.VectorProviderMilvus:
		return milvus.New(ctx, milvus.Config{Address: s.Address, APIKey: s.APIKey})
	case domain.VectorProviderMemory:
		return vectormemory.New(), nil
	default:
		return nil, &domain.ConfigurationError{Key: "vector.provider", Reason: "unknown provider " + string(s.Provider)}
	}
}

func defaultFetcher(ctx context.Context, s domain.GitHubSettings) (driven.RepositoryFetcher, error) {
	switch s.Strategy {
	case domain.FetchStrategyClone:
		return github.NewCloneFetcher(s.Token), nil
	case domain.FetchStrategyAPI:
		client, err := github.NewClient(ctx, s.Token)
		if err != nil {
			return nil, fmt.Errorf("create github client: %w", err)
		}
		return github.NewAPIFetcher(client), nil
	default:
		return nil, &domain.ConfigurationError{Key: "github.strategy", Reason: "unknown strategy " + string(s.Strategy)}
	}
}

func defaultDocumentSource(dir string) driven.DocumentSource {
	return filesystem.New(dir)
}

func defaultCheckpointStore(path string) driven.CheckpointStore {
	return storagefile.NewCheckpointStore(path)
}

func defaultSegmenter(targetSize int) driven.Segmenter {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	seg, err := registry.Build(postprocessors.DefaultSegmenter, map[string]any{"target_size": targetSize})
	if err != nil {
		// The default segmenter is always registered.
		logger.Warn("Build segmenter: %v", err)
		return chunker.New(chunker.WithChunkSize(targetSize))
	}
	return seg
}

// ensureDir creates dir if it does not exist.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// pipeline holds the services of a run and the adapters they own.
type pipeline struct {
	ingest  *services.IngestService
	closers []func() error
}

// Close releases every adapter. Errors are logged.
func (p *pipeline) Close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			logger.Warn("Close adapter: %v", err)
		}
	}
}

// buildPipeline wires the ingest service. embed configures the chunking
// and embedding phase; upload configures the vector index. The vector index
// client is only created when upload is set.
func buildPipeline(ctx context.Context, s *domain.AppSettings, embed, upload bool) (*pipeline, error) {
	p := &pipeline{}

	var sink *services.BatchSink
	if upload {
		index, err := newVectorIndex(ctx, s.Vector)
		if err != nil {
			return nil, fmt.Errorf("create vector index client: %w", err)
		}
		p.closers = append(p.closers, index.Close)

		sink = services.NewBatchSink(index, services.SinkConfig{
			Spec: domain.IndexSpec{
				Dimension: s.Embedding.Dimensions,
				Metric:    s.Vector.Metric,
				Cloud:     s.Vector.Cloud,
				Region:    s.Vector.Region,
			},
			BatchSize: s.Vector.BatchSize,
			Attempts:  s.Vector.UpsertAttempts,
		})
	}

	var (
		assembler *services.Assembler
		embedder  *services.ChunkEmbedder
	)
	if embed {
		client, err := newEmbedder(ctx, s.Embedding)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("create embedding client: %w", err)
		}
		p.closers = append(p.closers, client.Close)

		assembler = services.NewAssembler(newDocumentSource(s.Paths.RawDir), newSegmenter(s.Chunking.TargetSize))
		embedder = services.NewChunkEmbedder(client, newTokenCounter(s.Embedding), services.EmbedderConfig{
			Dimensions:        s.Embedding.Dimensions,
			MaxTokens:         s.Embedding.MaxTokens,
			Concurrency:       s.Embedding.Concurrency,
			RequestsPerSecond: s.Embedding.RequestsPerSecond,
			MaxTextBytes:      maxTextBytes(s.Vector.Provider),
		})
	}

	p.ingest = services.NewIngestService(assembler, embedder, sink, newCheckpointStore(s.Paths.Checkpoint))
	return p, nil
}

// maxTextBytes returns the stored text limit of a vector provider.
// The bound applies even when the run stops at the checkpoint, so a later
// upload stores exactly the embedded text.
func maxTextBytes(provider domain.VectorProvider) int {
	if provider == domain.VectorProviderMilvus {
		return milvus.MaxTextLength
	}
	return 0
}
