package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a model provider for embeddings, re-ranking or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHugot runs an ONNX model in-process.
	AIProviderHugot AIProvider = "hugot"

	// AIProviderTEI is a text-embeddings-inference compatible /rerank server.
	AIProviderTEI AIProvider = "tei"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHugot, AIProviderTEI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHugot
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHugot:
		return "Hugot (in-process ONNX)"
	case AIProviderTEI:
		return "Text Embeddings Inference (rerank server)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where cards and passages are kept.
type StorageBackend string

// Available storage backends.
const (
	StorageMemory   StorageBackend = "memory"
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StoragePostgres:
		return true
	default:
		return false
	}
}

// SearchSettings holds pipeline defaults.
type SearchSettings struct {
	K       int
	CEK     int
	CEModel string
	Ranker  Ranker
	Sort    SortMode

	// BrowseMaxDistance is the similarity cutoff for browse queries.
	// Zero disables the cutoff.
	BrowseMaxDistance float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// ModelDir is where in-process models are stored (hugot).
	ModelDir string

	// RequestsPerSecond throttles batch embedding during ingestion. Zero disables it.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// RerankerSettings holds re-ranker configuration.
type RerankerSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
}

// IsConfigured returns true if a re-ranker endpoint is set up.
func (r RerankerSettings) IsConfigured() bool {
	return r.Provider == AIProviderTEI && r.BaseURL != ""
}

// LLMSettings holds answer synthesizer configuration.
type LLMSettings struct {
	Provider    AIProvider
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	switch l.Provider {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
	default:
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds catalog storage configuration.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the sqlite database.
	DataDir string

	// DSN is the postgres connection string.
	DSN string
}

// CacheSettings holds result cache configuration.
type CacheSettings struct {
	// RedisAddr enables the redis cache when non-empty.
	RedisAddr string
	Password  string
	DB        int
	TTL       time.Duration
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	Addr           string
	RequestTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Search    SearchSettings
	Embedding EmbeddingSettings
	Reranker  RerankerSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Cache     CacheSettings
	Server    ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding defaults to a local Ollama model; the re-ranker and LLM are
// left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			K:       DefaultK,
			CEK:     DefaultCEK,
			CEModel: DefaultCEModel,
			Ranker:  RankerNone,
			Sort:    SortRelevance,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		LLM: LLMSettings{
			Temperature: 0.1,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Cache: CacheSettings{
			TTL: 10 * time.Minute,
		},
		Server: ServerSettings{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHugot,
	}
}

// AllLLMProviders returns providers that support answer generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderHugot:  "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4.1-nano",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Hugot models
		"sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2": 384,
		"sentence-transformers/all-MiniLM-L6-v2":                      384,
	}
}

// PipelineConfig selects the passage processors run during ingestion.
type PipelineConfig struct {
	// Processors lists processor names in execution order.
	Processors []string

	// ProcessorConfigs holds per-processor settings keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// DefaultPipelineConfig returns the summary and chunker processors with
// 600-character chunks overlapping by 80.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"summary", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 600,
				"overlap":    80,
				"threshold":  700,
			},
		},
	}
}
