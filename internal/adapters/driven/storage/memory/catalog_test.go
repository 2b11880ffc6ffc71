package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

func TestNewCardStore(t *testing.T) {
	store := NewCardStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.cards)
}

func TestCardStore_SaveAndGet(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()
	price := 120.0

	err := store.SaveCards(ctx, []domain.ProductCard{
		{SKUID: "B", Title: "Moong Dal", Category: "Pulses", MRP: &price},
		{SKUID: "A", Title: "Roasted Cashews", Category: "Dry Fruits"},
	})
	require.NoError(t, err)

	card, err := store.GetCard(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "Moong Dal", card.Title)
	require.NotNil(t, card.MRP)
	assert.InDelta(t, 120.0, *card.MRP, 1e-9)

	count, err := store.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCardStore_SaveReplaces(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()

	require.NoError(t, store.SaveCards(ctx, []domain.ProductCard{{SKUID: "A", Title: "Old"}}))
	require.NoError(t, store.SaveCards(ctx, []domain.ProductCard{{SKUID: "A", Title: "New"}}))

	card, err := store.GetCard(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "New", card.Title)

	count, err := store.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCardStore_GetCard_NotFound(t *testing.T) {
	store := NewCardStore()

	_, err := store.GetCard(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCardStore_ListCards_Sorted(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()
	require.NoError(t, store.SaveCards(ctx, []domain.ProductCard{{SKUID: "C"}, {SKUID: "A"}, {SKUID: "B"}}))

	cards, err := store.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "A", cards[0].SKUID)
	assert.Equal(t, "B", cards[1].SKUID)
	assert.Equal(t, "C", cards[2].SKUID)
}

func TestCardStore_ConcurrentAccess(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.SaveCards(ctx, []domain.ProductCard{{SKUID: "A", Title: "Chana"}})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.GetCard(ctx, "A")
		}()
	}
	wg.Wait()

	count, err := store.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
