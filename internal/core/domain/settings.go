package domain

const unknownDescription = "Unknown"

// Defaults of the reference deployment.
const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultDimensions     = 1536
	DefaultMaxTokens      = 8000
	DefaultIndexName      = "prompt-feedback"
	DefaultCloud          = "aws"
	DefaultRegion         = "us-east-1"
	DefaultBatchSize      = 100
	DefaultTargetSize     = 1000
	DefaultRawDir         = "data/raw"
	DefaultCheckpointPath = "data/processed/embedded.json"
)

// EmbeddingProvider identifies the embedding service adapter.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderOpenAI calls the OpenAI embeddings endpoint directly.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderLangChain calls OpenAI through langchaingo.
	EmbeddingProviderLangChain EmbeddingProvider = "langchain"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderOpenAI, EmbeddingProviderLangChain:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderOpenAI:
		return "OpenAI (HTTP)"
	case EmbeddingProviderLangChain:
		return "OpenAI (langchaingo)"
	default:
		return unknownDescription
	}
}

// VectorProvider identifies the vector index adapter.
type VectorProvider string

// Available vector index providers.
const (
	VectorProviderPinecone VectorProvider = "pinecone"
	VectorProviderMilvus   VectorProvider = "milvus"

	// VectorProviderMemory keeps vectors in process. Used for dry runs.
	VectorProviderMemory VectorProvider = "memory"
)

// IsValid returns true if the provider is recognised.
func (p VectorProvider) IsValid() bool {
	switch p {
	case VectorProviderPinecone, VectorProviderMilvus, VectorProviderMemory:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p VectorProvider) RequiresAPIKey() bool {
	return p == VectorProviderPinecone
}

// String returns the string representation.
func (p VectorProvider) String() string {
	return string(p)
}

// Tokenizer selects how token counts are estimated before embedding.
type Tokenizer string

// Available tokenizers.
const (
	// TokenizerHeuristic approximates one token per four characters.
	TokenizerHeuristic Tokenizer = "heuristic"

	// TokenizerTiktoken counts tokens with the model's BPE encoding.
	TokenizerTiktoken Tokenizer = "tiktoken"
)

// IsValid returns true if the tokenizer is recognised.
func (t Tokenizer) IsValid() bool {
	return t == TokenizerHeuristic || t == TokenizerTiktoken
}

// FetchStrategy selects how repository files are retrieved from GitHub.
type FetchStrategy string

// Available fetch strategies.
const (
	// FetchStrategyClone shells out to git.
	FetchStrategyClone FetchStrategy = "clone"

	// FetchStrategyAPI downloads blobs through the GitHub REST API.
	FetchStrategyAPI FetchStrategy = "api"
)

// IsValid returns true if the strategy is recognised.
func (s FetchStrategy) IsValid() bool {
	return s == FetchStrategyClone || s == FetchStrategyAPI
}

// EmbeddingSettings holds embedding service configuration.
type EmbeddingSettings struct {
	Provider EmbeddingProvider
	Model    string

	// BaseURL overrides the API endpoint (OpenAI-compatible services).
	BaseURL string

	// APIKey is the embedding service key (OPENAI_API_KEY).
	APIKey string

	// Dimensions is the expected vector size.
	Dimensions int

	// MaxTokens bounds the text sent in a single request.
	MaxTokens int

	// Concurrency is the number of chunks embedded at once. 1 is sequential.
	Concurrency int

	// RequestsPerSecond throttles embedding calls. 0 disables throttling.
	RequestsPerSecond float64

	Tokenizer Tokenizer
}

// Validate checks the settings required to embed chunks.
func (e EmbeddingSettings) Validate() error {
	if !e.Provider.IsValid() {
		return &ConfigurationError{Key: "embedding.provider", Reason: "unknown provider " + string(e.Provider)}
	}
	if e.APIKey == "" {
		return &ConfigurationError{Key: "OPENAI_API_KEY", Reason: "environment variable not set"}
	}
	if e.Dimensions <= 0 {
		return &ConfigurationError{Key: "embedding.dimensions", Reason: "must be positive"}
	}
	if e.MaxTokens <= 0 {
		return &ConfigurationError{Key: "embedding.max_tokens", Reason: "must be positive"}
	}
	if !e.Tokenizer.IsValid() {
		return &ConfigurationError{Key: "embedding.tokenizer", Reason: "unknown tokenizer " + string(e.Tokenizer)}
	}
	return nil
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	Provider VectorProvider
	Index    string
	Metric   Metric
	Cloud    string
	Region   string

	// APIKey is the vector service key (PINECONE_API_KEY, MILVUS_TOKEN).
	APIKey string

	// Address is the Milvus endpoint.
	Address string

	BatchSize int

	// UpsertAttempts is the number of tries per batch. 1 disables retries.
	UpsertAttempts int
}

// Validate checks the settings required to upload vectors.
func (v VectorSettings) Validate() error {
	if !v.Provider.IsValid() {
		return &ConfigurationError{Key: "vector.provider", Reason: "unknown provider " + string(v.Provider)}
	}
	if v.Provider.RequiresAPIKey() && v.APIKey == "" {
		return &ConfigurationError{Key: "PINECONE_API_KEY", Reason: "must be set"}
	}
	if v.Provider == VectorProviderMilvus && v.Address == "" {
		return &ConfigurationError{Key: "MILVUS_ADDRESS", Reason: "must be set"}
	}
	if v.Index == "" {
		return &ConfigurationError{Key: "vector.index", Reason: "must not be empty"}
	}
	if !v.Metric.IsValid() {
		return &ConfigurationError{Key: "vector.metric", Reason: "unknown metric " + string(v.Metric)}
	}
	if v.BatchSize <= 0 {
		return &ConfigurationError{Key: "vector.batch_size", Reason: "must be positive"}
	}
	if v.UpsertAttempts <= 0 {
		return &ConfigurationError{Key: "vector.upsert_attempts", Reason: "must be positive"}
	}
	return nil
}

// ChunkingSettings holds segmentation configuration.
type ChunkingSettings struct {
	// TargetSize is the soft upper bound of a chunk in characters.
	TargetSize int
}

// PathSettings holds filesystem locations.
type PathSettings struct {
	// RawDir is the document source directory.
	RawDir string

	// Checkpoint is where embedded chunks are persisted before upload.
	Checkpoint string
}

// GitHubSettings holds repository fetch configuration.
type GitHubSettings struct {
	Token    string
	Strategy FetchStrategy
}

// AppSettings is the complete configuration of an ingestion run.
type AppSettings struct {
	Embedding EmbeddingSettings
	Vector    VectorSettings
	Chunking  ChunkingSettings
	Paths     PathSettings
	GitHub    GitHubSettings
}

// DefaultAppSettings returns the reference deployment configuration.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:    EmbeddingProviderOpenAI,
			Model:       DefaultEmbeddingModel,
			Dimensions:  DefaultDimensions,
			MaxTokens:   DefaultMaxTokens,
			Concurrency: 1,
			Tokenizer:   TokenizerHeuristic,
		},
		Vector: VectorSettings{
			Provider:       VectorProviderPinecone,
			Index:          DefaultIndexName,
			Metric:         MetricCosine,
			Cloud:          DefaultCloud,
			Region:         DefaultRegion,
			BatchSize:      DefaultBatchSize,
			UpsertAttempts: 1,
		},
		Chunking: ChunkingSettings{
			TargetSize: DefaultTargetSize,
		},
		Paths: PathSettings{
			RawDir:     DefaultRawDir,
			Checkpoint: DefaultCheckpointPath,
		},
		GitHub: GitHubSettings{
			Strategy: FetchStrategyClone,
		},
	}
}

// Validate checks the settings shared by every command.
func (s AppSettings) Validate() error {
	if s.Chunking.TargetSize <= 0 {
		return &ConfigurationError{Key: "chunking.target_size", Reason: "must be positive"}
	}
	if !s.GitHub.Strategy.IsValid() {
		return &ConfigurationError{Key: "github.strategy", Reason: "unknown strategy " + string(s.GitHub.Strategy)}
	}
	return nil
}
