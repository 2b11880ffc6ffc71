package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// Ensure CardStore implements the interface.
var _ driven.CardStore = (*CardStore)(nil)

// CardStore is an in-memory implementation of driven.CardStore.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]domain.ProductCard
}

// NewCardStore creates a new in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[string]domain.ProductCard),
	}
}

// SaveCards inserts or replaces cards keyed by SKUID.
func (s *CardStore) SaveCards(_ context.Context, cards []domain.ProductCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		s.cards[c.SKUID] = c
	}
	return nil
}

// GetCard retrieves a card by SKU.
func (s *CardStore) GetCard(_ context.Context, skuID string) (*domain.ProductCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[skuID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// ListCards returns every card ordered by SKUID.
func (s *CardStore) ListCards(_ context.Context) ([]domain.ProductCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProductCard, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKUID < out[j].SKUID })
	return out, nil
}

// CountCards returns the number of stored cards.
func (s *CardStore) CountCards(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards), nil
}
