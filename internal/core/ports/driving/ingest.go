package driving

import (
	"context"
	"io"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// IngestService loads a product catalog into the card store and passage index.
type IngestService interface {
	// IngestFile reads a catalog CSV from disk.
	IngestFile(ctx context.Context, path string) (*domain.IngestStats, error)

	// Ingest reads a catalog CSV from r.
	Ingest(ctx context.Context, r io.Reader) (*domain.IngestStats, error)
}
