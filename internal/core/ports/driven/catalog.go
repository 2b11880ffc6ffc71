package driven

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// CardStore holds the authoritative product cards.
// Reads are safe for concurrent use.
type CardStore interface {
	// SaveCards inserts or replaces cards keyed by SKUID.
	SaveCards(ctx context.Context, cards []domain.ProductCard) error

	// GetCard returns the card for a SKU or domain.ErrNotFound.
	GetCard(ctx context.Context, skuID string) (*domain.ProductCard, error)

	// ListCards returns every card ordered by SKUID.
	ListCards(ctx context.Context) ([]domain.ProductCard, error)

	// CountCards returns the number of stored cards.
	CountCards(ctx context.Context) (int, error)
}
