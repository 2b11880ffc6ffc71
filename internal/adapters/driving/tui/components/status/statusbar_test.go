package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/keymap"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_ViewByState(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Bar)
		contains []string
	}{
		{"ready", func(*Bar) {}, []string{"Ready", "enter: search"}},
		{"searching", func(b *Bar) { b.SetState(StateSearching) }, []string{"Searching..."}},
		{"thinking", func(b *Bar) { b.SetState(StateThinking) }, []string{"Thinking..."}},
		{"error with message", func(b *Bar) {
			b.SetState(StateError)
			b.SetMessage("embedder down")
		}, []string{"Error: embedder down"}},
		{"results", func(b *Bar) {
			b.SetState(StateResults)
			b.SetResultCount(4)
		}, []string{"4 products", "s: sort", "r: re-rank"}},
		{"message wins over count", func(b *Bar) {
			b.SetState(StateResults)
			b.SetResultCount(4)
			b.SetMessage("filters relaxed")
		}, []string{"filters relaxed"}},
		{"mode", func(b *Bar) { b.SetMode("price_asc") }, []string{"[price_asc]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(3)
	bar.SetMode("title_asc")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	assert.Equal(t, "title_asc", bar.Mode(), "mode survives a clear")
}
