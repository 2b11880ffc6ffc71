package ai

import (
	"context"
	"time"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building a short-lived
// client and pinging it. Unconfigured providers are valid.
type ConfigValidator struct {
	// Timeout bounds each ping. Zero means pingTimeout.
	Timeout time.Duration
}

// NewConfigValidator creates a validator with the default ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{Timeout: pingTimeout}
}

// ValidateEmbedding pings the configured embedding provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return v.ping(svc.Ping)
}

// ValidateReranker pings the configured re-ranker.
func (v *ConfigValidator) ValidateReranker(config *domain.RerankerSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	r, err := CreateReranker(config)
	if err != nil || r == nil {
		return err
	}
	defer r.Close()
	return v.ping(r.Ping)
}

// ValidateLLM pings the configured LLM provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return v.ping(svc.Ping)
}

func (v *ConfigValidator) ping(fn func(context.Context) error) error {
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = pingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return fn(ctx)
}
