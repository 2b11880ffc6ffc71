package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// RerankerFactory builds a re-ranker for the given model.
type RerankerFactory func(model string) (driven.Reranker, error)

// RerankerProvider owns the process-wide re-ranker handle. The handle is
// created on first use, exactly once even under concurrent cold starts,
// and shared read-only afterwards.
type RerankerProvider struct {
	factory RerankerFactory
	model   string

	once     sync.Once
	mu       sync.Mutex
	reranker driven.Reranker
	err      error
	closed   bool
}

// NewRerankerProvider creates a provider that builds its re-ranker lazily.
// A nil factory means no re-ranker is provisioned.
func NewRerankerProvider(factory RerankerFactory, model string) *RerankerProvider {
	return &RerankerProvider{factory: factory, model: model}
}

// StaticRerankerProvider wraps an already constructed re-ranker.
// A nil reranker means none is provisioned.
func StaticRerankerProvider(r driven.Reranker) *RerankerProvider {
	p := &RerankerProvider{}
	if r != nil {
		p.model = r.ModelName()
		p.factory = func(string) (driven.Reranker, error) { return r, nil }
	}
	return p
}

// Available reports whether a re-ranker could be requested at all.
func (p *RerankerProvider) Available() bool {
	return p != nil && p.factory != nil
}

// Model returns the model the provider serves.
func (p *RerankerProvider) Model() string {
	if p == nil {
		return ""
	}
	return p.model
}

// Get returns the shared re-ranker, initialising it on first call.
// Asking for the default model accepts whatever model is configured;
// any other model name must match exactly.
func (p *RerankerProvider) Get(model string) (driven.Reranker, error) {
	if !p.Available() {
		return nil, fmt.Errorf("%w: no re-ranker is configured", domain.ErrCapabilityUnavailable)
	}
	if model != "" && model != domain.DefaultCEModel && p.model != "" && model != p.model {
		return nil, fmt.Errorf("%w: re-ranker model %q is not loaded (have %q)",
			domain.ErrCapabilityUnavailable, model, p.model)
	}

	p.once.Do(func() {
		logger.Debug("Initialising re-ranker %q", p.model)
		r, err := p.factory(p.model)
		if err == nil && r == nil {
			err = fmt.Errorf("re-ranker factory returned nothing")
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed && r != nil {
			_ = r.Close()
			r, err = nil, fmt.Errorf("re-ranker provider is closed")
		}
		p.reranker, p.err = r, err
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCapabilityUnavailable, p.err)
	}
	if p.closed {
		return nil, fmt.Errorf("%w: re-ranker provider is closed", domain.ErrCapabilityUnavailable)
	}
	return p.reranker, nil
}

// Close releases the re-ranker if it was initialised. It is safe to call
// while a first Get is still initialising.
func (p *RerankerProvider) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.reranker == nil {
		return nil
	}
	return p.reranker.Close()
}

// rerank scores the first ceK hits in one batch and leaves the rest
// unscored. Scores are written to CEScore; Score is left untouched.
func rerank(ctx context.Context, r driven.Reranker, query string, hits []domain.Hit, ceK int) error {
	n := len(hits)
	if ceK > 0 && ceK < n {
		n = ceK
	}
	if n == 0 {
		return nil
	}

	texts := make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = hits[i].Text
	}

	scores, err := r.Score(ctx, query, texts)
	if err != nil {
		return fmt.Errorf("%w: rerank: %w", domain.ErrUpstreamFailure, err)
	}
	if len(scores) != n {
		return fmt.Errorf("%w: rerank returned %d scores for %d texts",
			domain.ErrUpstreamFailure, len(scores), n)
	}

	for i := 0; i < n; i++ {
		s := scores[i]
		hits[i].CEScore = &s
	}
	return nil
}
