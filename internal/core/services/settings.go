package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchK            = "search.k"
	keySearchCEK          = "search.ce_k"
	keySearchCEModel      = "search.ce_model"
	keySearchRanker       = "search.ranker"
	keySearchSort         = "search.sort"
	keySearchBrowseDist   = "search.browse_max_distance"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedModelDir      = "embedding.model_dir"
	keyEmbedRPS           = "embedding.requests_per_second"
	keyRerankProvider     = "reranker.provider"
	keyRerankModel        = "reranker.model"
	keyRerankBaseURL      = "reranker.base_url"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyLLMTemperature     = "llm.temperature"
	keyStorageBackend     = "storage.backend"
	keyStorageDataDir     = "storage.data_dir"
	keyStorageDSN         = "storage.dsn"
	keyCacheRedisAddr     = "cache.redis_addr"
	keyCachePassword      = "cache.password"
	keyCacheDB            = "cache.db"
	keyCacheTTL           = "cache.ttl_seconds"
	keyServerAddr         = "server.addr"
	keyServerTimeout      = "server.request_timeout_seconds"
	keyPipelineProcessors = "pipeline.processors"
)

// settingKeys lists every key Set accepts, in display order.
var settingKeys = []string{
	keySearchK, keySearchCEK, keySearchCEModel, keySearchRanker, keySearchSort, keySearchBrowseDist,
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyEmbedModelDir, keyEmbedRPS,
	keyRerankProvider, keyRerankModel, keyRerankBaseURL,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMTemperature,
	keyStorageBackend, keyStorageDataDir, keyStorageDSN,
	keyCacheRedisAddr, keyCachePassword, keyCacheDB, keyCacheTTL,
	keyServerAddr, keyServerTimeout,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			K:                 s.getInt(keySearchK, defaults.Search.K),
			CEK:               s.getInt(keySearchCEK, defaults.Search.CEK),
			CEModel:           s.getString(keySearchCEModel, defaults.Search.CEModel),
			Ranker:            s.getRanker(defaults.Search.Ranker),
			Sort:              s.getSort(defaults.Search.Sort),
			BrowseMaxDistance: s.getFloat(keySearchBrowseDist, defaults.Search.BrowseMaxDistance),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			ModelDir:          s.configStore.GetString(keyEmbedModelDir),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
		},
		Reranker: domain.RerankerSettings{
			Provider: s.getProvider(keyRerankProvider, defaults.Reranker.Provider),
			Model:    s.getString(keyRerankModel, defaults.Search.CEModel),
			BaseURL:  s.configStore.GetString(keyRerankBaseURL),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.getString(keyStorageDataDir, defaults.Storage.DataDir),
			DSN:     s.configStore.GetString(keyStorageDSN),
		},
		Cache: domain.CacheSettings{
			RedisAddr: s.configStore.GetString(keyCacheRedisAddr),
			Password:  s.configStore.GetString(keyCachePassword),
			DB:        s.configStore.GetInt(keyCacheDB),
			TTL:       s.getSeconds(keyCacheTTL, defaults.Cache.TTL),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			RequestTimeout: s.getSeconds(keyServerTimeout, defaults.Server.RequestTimeout),
		},
	}

	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keySearchK, settings.Search.K},
		{keySearchCEK, settings.Search.CEK},
		{keySearchCEModel, settings.Search.CEModel},
		{keySearchRanker, string(settings.Search.Ranker)},
		{keySearchSort, string(settings.Search.Sort)},
		{keySearchBrowseDist, settings.Search.BrowseMaxDistance},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedModelDir, settings.Embedding.ModelDir},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyRerankProvider, settings.Reranker.Provider.String()},
		{keyRerankModel, settings.Reranker.Model},
		{keyRerankBaseURL, settings.Reranker.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyStorageDSN, settings.Storage.DSN},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
		{keyCacheDB, settings.Cache.DB},
		{keyCacheTTL, int(settings.Cache.TTL / time.Second)},
		{keyServerAddr, settings.Server.Addr},
		{keyServerTimeout, int(settings.Server.RequestTimeout / time.Second)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so an empty form never wipes them.
	secrets := map[string]string{
		keyEmbedAPIKey:   settings.Embedding.APIKey,
		keyLLMAPIKey:     settings.LLM.APIKey,
		keyCachePassword: settings.Cache.Password,
	}
	for key, val := range secrets {
		if val == "" {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	var stored any = value

	switch key {
	case keySearchK:
		n, err := parseBounded(value, domain.MinK, domain.MaxK)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		stored = n
	case keySearchCEK:
		n, err := parseBounded(value, domain.MinCEK, domain.MaxCEK)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		stored = n
	case keyCacheDB, keyCacheTTL, keyServerTimeout:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case keySearchBrowseDist, keyEmbedRPS, keyLLMTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case keySearchRanker:
		if !domain.Ranker(value).IsValid() {
			return fmt.Errorf("%w: invalid ranker: %s", domain.ErrInvalidInput, value)
		}
	case keySearchSort:
		if !domain.SortMode(value).IsValid() {
			return fmt.Errorf("%w: invalid sort mode: %s", domain.ErrInvalidInput, value)
		}
	case keyEmbedProvider:
		if !containsProvider(domain.AllEmbeddingProviders(), domain.AIProvider(value)) {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider:
		if !containsProvider(domain.AllLLMProviders(), domain.AIProvider(value)) {
			return fmt.Errorf("%w: provider %s does not support answer generation", domain.ErrInvalidInput, value)
		}
	case keyRerankProvider:
		if value != "" && domain.AIProvider(value) != domain.AIProviderTEI {
			return fmt.Errorf("%w: unsupported re-ranker provider: %s", domain.ErrInvalidInput, value)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, value)
		}
	case keySearchCEModel, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyEmbedModelDir,
		keyRerankModel, keyRerankBaseURL, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyStorageDataDir, keyStorageDSN, keyCacheRedisAddr, keyCachePassword, keyServerAddr:
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settingKeys))
	copy(out, settingKeys)
	return out
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateRerankerConfig validates the current re-ranker configuration by pinging the provider.
func (s *SettingsService) ValidateRerankerConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateReranker(&settings.Reranker)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the ingestion processor configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		defaults.Processors = processors
	}

	for _, name := range defaults.Processors {
		cfg := s.loadProcessorConfig("pipeline." + name + ".")
		if len(cfg) == 0 {
			continue
		}
		if defaults.ProcessorConfigs == nil {
			defaults.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := defaults.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range cfg {
			existing[k] = v
		}
		defaults.ProcessorConfigs[name] = existing
	}

	return defaults
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"chunk_size", "overlap", "threshold"} {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}
	return cfg
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

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if n := s.configStore.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getRanker(defaultVal domain.Ranker) domain.Ranker {
	r := domain.Ranker(s.configStore.GetString(keySearchRanker))
	if !r.IsValid() {
		return defaultVal
	}
	return r
}

func (s *SettingsService) getSort(defaultVal domain.SortMode) domain.SortMode {
	m := domain.SortMode(s.configStore.GetString(keySearchSort))
	if !m.IsValid() {
		return defaultVal
	}
	return m
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	b := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func containsProvider(list []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}

func parseBounded(value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", value)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("must be between %d and %d", lo, hi)
	}
	return n, nil
}
