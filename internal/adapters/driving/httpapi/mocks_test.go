package httpapi

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

type mockSearchService struct {
	result  *domain.SearchResult
	err     error
	block   bool
	lastReq domain.SearchRequest
}

func (m *mockSearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{}, nil
	}
	return m.result, nil
}

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

type mockAssistantService struct {
	answer      *domain.Answer
	err         error
	lastMessage string
}

func (m *mockAssistantService) Ask(_ context.Context, message string) (*domain.Answer, error) {
	m.lastMessage = message
	return m.answer, m.err
}

type mockCatalogService struct {
	card  *domain.ProductCard
	stats *domain.CatalogStats
	err   error
}

func (m *mockCatalogService) Product(_ context.Context, skuID string) (*domain.ProductCard, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.card == nil || m.card.SKUID != skuID {
		return nil, domain.ErrNotFound
	}
	return m.card, nil
}

func (m *mockCatalogService) Products(_ context.Context, _ string) ([]domain.ProductCard, error) {
	if m.card == nil {
		return nil, m.err
	}
	return []domain.ProductCard{*m.card}, m.err
}

func (m *mockCatalogService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	return m.stats, m.err
}
