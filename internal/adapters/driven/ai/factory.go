// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	hugotembed "github.com/kush-lhmm/sampann-search/internal/adapters/driven/embedding/hugot"
	ollamaembed "github.com/kush-lhmm/sampann-search/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/kush-lhmm/sampann-search/internal/adapters/driven/embedding/openai"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/embedding/throttle"
	anthropicllm "github.com/kush-lhmm/sampann-search/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/kush-lhmm/sampann-search/internal/adapters/driven/llm/ollama"
	openaillm "github.com/kush-lhmm/sampann-search/internal/adapters/driven/llm/openai"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/rerank/tei"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// settingsHint tells the user how to fix a broken provider.
const settingsHint = "Run 'sampann settings show' to review the configuration"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService

	// RerankerFactory builds the re-ranker on first use; nil when none is configured.
	RerankerFactory func(model string) (driven.Reranker, error)
	RerankerModel   string

	Warnings []string // Non-fatal issues that disabled an optional service.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init builds every AI service from settings. The embedder is required
// and its failure is returned as an error; the LLM is optional and a
// failure only adds a warning. The re-ranker is never contacted here.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider is configured. %s",
			domain.ErrCapabilityUnavailable, settingsHint)
	}

	result := &InitResult{EmbeddingService: embedder}

	if settings.Reranker.IsConfigured() {
		result.RerankerFactory = RerankerFactory(&settings.Reranker)
		result.RerankerModel = settings.Reranker.Model
		if result.RerankerModel == "" {
			result.RerankerModel = settings.Search.CEModel
		}
	}

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else {
		result.LLMService = llm
	}

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %w. %s", domain.ErrCapabilityUnavailable, err, settingsHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: embedding service unreachable (%w). %s",
			domain.ErrCapabilityUnavailable, err, settingsHint)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no LLM is configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: llm: %w. %s", domain.ErrCapabilityUnavailable, err, settingsHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: llm service unreachable (%w). %s",
			domain.ErrCapabilityUnavailable, err, settingsHint)
	}

	return svc, nil
}

// ValidateEmbeddingConfig pings the embedding provider named in settings.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	return NewConfigValidator().ValidateEmbedding(settings)
}

// ValidateRerankerConfig pings the re-ranker's health endpoint.
func ValidateRerankerConfig(settings *domain.RerankerSettings) error {
	return NewConfigValidator().ValidateReranker(settings)
}

// ValidateLLMConfig pings the LLM provider named in settings.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	return NewConfigValidator().ValidateLLM(settings)
}

// CreateEmbeddingService creates the embedding service named in settings,
// throttled when RequestsPerSecond is set.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc, err = createOllamaEmbedding(settings)
	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)
	case domain.AIProviderHugot:
		svc, err = createHugotEmbedding(settings)
	default:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama, openai or hugot", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return throttle.Wrap(svc, throttle.Config{RequestsPerSecond: settings.RequestsPerSecond}), nil
}

// CreateReranker creates the re-ranker named in settings.
// Returns nil if no re-ranker is configured.
func CreateReranker(settings *domain.RerankerSettings) (driven.Reranker, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	return tei.NewReranker(tei.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// RerankerFactory returns a builder for the configured re-ranker. The
// model argument is reported by the re-ranker; the server decides what runs.
func RerankerFactory(settings *domain.RerankerSettings) func(model string) (driven.Reranker, error) {
	return func(model string) (driven.Reranker, error) {
		s := *settings
		if model != "" {
			s.Model = model
		}
		return CreateReranker(&s)
	}
}

// CreateLLMService creates the LLM service named in settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createHugotEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return hugotembed.NewEmbeddingService(hugotembed.Config{
		Model:    settings.Model,
		ModelDir: settings.ModelDir,
	})
}
