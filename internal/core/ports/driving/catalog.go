package driving

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// CatalogService gives read-only access to the ingested product cards.
type CatalogService interface {
	// Product returns one card or domain.ErrNotFound.
	Product(ctx context.Context, skuID string) (*domain.ProductCard, error)

	// Products lists cards, optionally restricted to one category
	// (case-insensitive). An empty category lists everything.
	Products(ctx context.Context, category string) ([]domain.ProductCard, error)

	// Stats counts cards, passages and cards per category.
	Stats(ctx context.Context) (*domain.CatalogStats, error)
}
