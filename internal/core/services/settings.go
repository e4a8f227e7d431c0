package services

import (
	"os"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedMaxTokens   = "embedding.max_tokens"
	keyEmbedConcurrency = "embedding.concurrency"
	keyEmbedRate        = "embedding.requests_per_second"
	keyEmbedTokenizer   = "embedding.tokenizer"
	keyVectorProvider   = "vector.provider"
	keyVectorIndex      = "vector.index"
	keyVectorMetric     = "vector.metric"
	keyVectorCloud      = "vector.cloud"
	keyVectorRegion     = "vector.region"
	keyVectorBatchSize  = "vector.batch_size"
	keyVectorAttempts   = "vector.upsert_attempts"
	keyMilvusAddress    = "milvus.address"
	keyChunkTargetSize  = "chunking.target_size"
	keyPathRawDir       = "paths.raw_dir"
	keyPathCheckpoint   = "paths.checkpoint"
	keyGitHubStrategy   = "github.strategy"
)

// Environment variables.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvPineconeAPIKey = "PINECONE_API_KEY"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvMilvusAddress  = "MILVUS_ADDRESS"
	EnvMilvusToken    = "MILVUS_TOKEN"
)

// SettingsService resolves settings from a config store and the environment.
// Environment values win over the config file; unset values use defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a settings service reading os.Getenv.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return NewSettingsServiceWithEnv(configStore, os.Getenv)
}

// NewSettingsServiceWithEnv creates a settings service with a custom
// environment lookup.
func NewSettingsServiceWithEnv(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// Get retrieves current application settings. Nothing is validated here;
// each command validates the parts it needs.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	vectorProvider := domain.VectorProvider(s.getString(keyVectorProvider, string(defaults.Vector.Provider)))
	vectorKey := s.getenv(EnvPineconeAPIKey)
	if vectorProvider == domain.VectorProviderMilvus {
		vectorKey = s.getenv(EnvMilvusToken)
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.EmbeddingProvider(s.getString(keyEmbedProvider, string(defaults.Embedding.Provider))),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // empty means the provider default
			APIKey:            s.getenv(EnvOpenAIAPIKey),
			Dimensions:        s.getInt(keyEmbedDimensions, defaults.Embedding.Dimensions),
			MaxTokens:         s.getInt(keyEmbedMaxTokens, defaults.Embedding.MaxTokens),
			Concurrency:       s.getInt(keyEmbedConcurrency, defaults.Embedding.Concurrency),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRate),
			Tokenizer:         domain.Tokenizer(s.getString(keyEmbedTokenizer, string(defaults.Embedding.Tokenizer))),
		},
		Vector: domain.VectorSettings{
			Provider:       vectorProvider,
			Index:          s.getString(keyVectorIndex, defaults.Vector.Index),
			Metric:         domain.Metric(s.getString(keyVectorMetric, string(defaults.Vector.Metric))),
			Cloud:          s.getString(keyVectorCloud, defaults.Vector.Cloud),
			Region:         s.getString(keyVectorRegion, defaults.Vector.Region),
			APIKey:         vectorKey,
			Address:        s.getEnvOr(EnvMilvusAddress, s.configStore.GetString(keyMilvusAddress)),
			BatchSize:      s.getInt(keyVectorBatchSize, defaults.Vector.BatchSize),
			UpsertAttempts: s.getInt(keyVectorAttempts, defaults.Vector.UpsertAttempts),
		},
		Chunking: domain.ChunkingSettings{
			TargetSize: s.getInt(keyChunkTargetSize, defaults.Chunking.TargetSize),
		},
		Paths: domain.PathSettings{
			RawDir:     s.getString(keyPathRawDir, defaults.Paths.RawDir),
			Checkpoint: s.getString(keyPathCheckpoint, defaults.Paths.Checkpoint),
		},
		GitHub: domain.GitHubSettings{
			Token:    s.getenv(EnvGitHubToken),
			Strategy: domain.FetchStrategy(s.getString(keyGitHubStrategy, string(defaults.GitHub.Strategy))),
		},
	}

	return settings, nil
}

// GetDefaults returns the default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getEnvOr(name, fallback string) string {
	if val := s.getenv(name); val != "" {
		return val
	}
	return fallback
}
