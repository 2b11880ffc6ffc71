package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService reads product cards for browse and status surfaces.
type CatalogService struct {
	cards driven.CardStore
	index driven.PassageIndex
}

// NewCatalogService creates a new catalog service. index may be nil, in
// which case Stats reports zero passages.
func NewCatalogService(cards driven.CardStore, index driven.PassageIndex) *CatalogService {
	return &CatalogService{cards: cards, index: index}
}

// Product returns one card by SKU.
func (s *CatalogService) Product(ctx context.Context, skuID string) (*domain.ProductCard, error) {
	skuID = strings.TrimSpace(skuID)
	if skuID == "" {
		return nil, fmt.Errorf("%w: empty sku id", domain.ErrInvalidInput)
	}
	return s.cards.GetCard(ctx, skuID)
}

// Products lists cards in SKU order, filtered by category when given.
func (s *CatalogService) Products(ctx context.Context, category string) ([]domain.ProductCard, error) {
	cards, err := s.cards.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return cards, nil
	}
	out := cards[:0:0]
	for i := range cards {
		if strings.EqualFold(cards[i].Category, category) {
			out = append(out, cards[i])
		}
	}
	return out, nil
}

// Stats counts what is indexed.
func (s *CatalogService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	cards, err := s.cards.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	stats := &domain.CatalogStats{
		Cards:      len(cards),
		Categories: make(map[string]int),
	}
	for i := range cards {
		stats.Categories[cards[i].Category]++
	}
	if s.index != nil {
		n, err := s.index.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting passages: %w", err)
		}
		stats.Passages = n
	}
	return stats, nil
}
