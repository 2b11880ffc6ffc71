package mcp

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result  *domain.SearchResult
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{}, nil
	}
	return m.result, nil
}

// mockCompareService is a mock implementation of driving.CompareService.
type mockCompareService struct {
	comparison  *domain.Comparison
	err         error
	lastQuery   string
	lastTargets [2]string
}

func (m *mockCompareService) Compare(_ context.Context, query string) (*domain.Comparison, error) {
	m.lastQuery = query
	return m.comparison, m.err
}

func (m *mockCompareService) CompareTargets(_ context.Context, targets [2]string) (*domain.Comparison, error) {
	m.lastTargets = targets
	return m.comparison, m.err
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAssistantService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	cards        []domain.ProductCard
	stats        *domain.CatalogStats
	err          error
	lastCategory string
}

func (m *mockCatalogService) Product(_ context.Context, skuID string) (*domain.ProductCard, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.cards {
		if m.cards[i].SKUID == skuID {
			return &m.cards[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogService) Products(_ context.Context, category string) ([]domain.ProductCard, error) {
	m.lastCategory = category
	return m.cards, m.err
}

func (m *mockCatalogService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	return m.stats, m.err
}

func ptrFloat(v float64) *float64 { return &v }
