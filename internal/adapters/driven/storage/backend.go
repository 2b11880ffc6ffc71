// Package storage opens the configured catalog backend.
package storage

import (
	"context"
	"fmt"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/storage/memory"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/storage/postgres"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/storage/sqlite"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// Backend pairs a card store with the passage index kept alongside it.
type Backend struct {
	Cards driven.CardStore
	Index driven.PassageIndex

	// Location describes where the data lives, for status output.
	Location string

	close func() error
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open creates the backend named in settings. Dimensions is the embedding
// size and is only used by backends with a typed vector column.
func Open(ctx context.Context, settings domain.StorageSettings, dimensions int) (*Backend, error) {
	switch settings.Backend {
	case domain.StorageMemory:
		return &Backend{
			Cards:    memory.NewCardStore(),
			Index:    memory.NewPassageIndex(),
			Location: "memory",
		}, nil

	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &Backend{
			Cards:    store.CardStore(),
			Index:    store.PassageIndex(),
			Location: store.Path(),
			close:    store.Close,
		}, nil

	case domain.StoragePostgres:
		store, err := postgres.NewStore(ctx, settings.DSN, dimensions)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return &Backend{
			Cards:    store.CardStore(),
			Index:    store.PassageIndex(),
			Location: "postgres",
			close:    store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}
