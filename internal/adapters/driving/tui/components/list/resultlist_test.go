package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/styles"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

func ptrFloat(v float64) *float64 { return &v }

func sampleHits() []domain.Hit {
	return []domain.Hit{
		{SKUID: "a", Title: "Tata Sampann Chana Dal", Category: "Dals", Price: ptrFloat(112), Weight: &domain.Weight{Value: 1, Unit: "kg"}, Text: "Unpolished chana dal", Score: 0.21},
		{SKUID: "b", Title: "Tata Sampann Moong Dal", Category: "Dals", Price: ptrFloat(145), Score: 0.33, CEScore: ptrFloat(4.2)},
		{SKUID: "c", Title: "Tata Sampann Kaju", Category: "Dry Fruits", Score: 0.5},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.Init())
	assert.Nil(t, list.SelectedHit())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_SetHitsResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())
	list.SetSelected(2)

	list.SetHits(sampleHits()[:2])

	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, 2, list.Count())
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected(), "stays at top")

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, list.Selected())

	list.MoveDown()
	assert.Equal(t, 2, list.Selected(), "stays at bottom")
	assert.Equal(t, "c", list.SelectedHit().SKUID)

	list.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, list.Selected())
}

func TestResultList_SetSelectedIgnoresOutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetHits(sampleHits())

	list.SetSelected(-1)
	list.SetSelected(10)

	assert.Equal(t, 0, list.Selected())
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 40)

	assert.Contains(t, list.View(), "No products found")

	list.SetHits(sampleHits())
	view := list.View()

	assert.Contains(t, view, "Products (3)")
	assert.Contains(t, view, "Chana Dal")
	assert.Contains(t, view, "₹112.00")
	assert.Contains(t, view, "1 kg")
	assert.Contains(t, view, "ce 4.200")
	assert.Contains(t, view, "price n/a")
}

func TestResultList_ViewScrollsToSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 7) // one hit visible
	list.SetHits(sampleHits())
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "Kaju")
	assert.NotContains(t, view, "Chana Dal")
}

func TestFormatScore(t *testing.T) {
	hits := sampleHits()

	assert.Equal(t, "dist 0.210", FormatScore(&hits[0]))
	assert.Equal(t, "ce 4.200", FormatScore(&hits[1]))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a b", Truncate("a \n  b", 10))
	assert.Equal(t, "₹₹₹₹...", Truncate("₹₹₹₹₹₹₹₹", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
