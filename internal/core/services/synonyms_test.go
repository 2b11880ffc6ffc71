package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"tata", "sampann", "roasted", "cashews", "200g"},
		Tokenize("Tata Sampann Roasted Cashews, 200g!"))
	assert.Equal(t, []string{"काजू", "200g"}, Tokenize("काजू 200g"))
	assert.Empty(t, Tokenize("  ?! "))
}

func TestExpandQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"kaju", "kaju cashew cashews"},
		{"kaju hai?", "kaju cashew cashews hai"},
		{"chai", "chai tea"},
		{"Moong dal", "moong green gram dal"},
		{"chana", "chana bengal gram chickpea chickpeas"},
		{"beverages", "beverages tea coffee"},
		{"cashews", "cashews cashew kaju"},
		{"ragi flour", "ragi flour"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandQuery(tt.query))
		})
	}
}

func TestExpandQuery_OneLevel(t *testing.T) {
	// tea and coffee come from the beverages group; their own synonyms
	// (chai, cold brew) are not pulled in.
	got := ExpandTokens("beverages")
	assert.Equal(t, []string{"beverages", "tea", "coffee"}, got)
	assert.NotContains(t, got, "chai")
	assert.NotContains(t, got, "brew")
}

func TestExpandQuery_KeepsOriginalTokens(t *testing.T) {
	queries := []string{
		"kaju", "chai", "tea", "moong dal", "chana", "beverages",
		"haldi and mirchi", "badam vs akhrot", "cashews",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			expanded := ExpandTokens(q)
			assert.Subset(t, expanded, Tokenize(q))
			assert.Equal(t, Tokenize(q)[0], expanded[0])
		})
	}
}

func TestExpandTokens_EachWordOnce(t *testing.T) {
	tokens := ExpandTokens("kaju cashew kaju")

	seen := make(map[string]int)
	for _, tok := range tokens {
		seen[tok]++
	}
	for tok, n := range seen {
		assert.Equal(t, 1, n, "token %q emitted %d times", tok, n)
	}
	assert.Equal(t, []string{"kaju", "cashew", "cashews"}, tokens)
}

func TestInferFamily(t *testing.T) {
	f := inferFamily(map[string]struct{}{"dals": {}})
	if assert.NotNil(t, f) {
		assert.Equal(t, "pulses", f.name)
		assert.True(t, f.isAlias("Pulses"))
		assert.False(t, f.isAlias("Spices"))
	}

	assert.Nil(t, inferFamily(map[string]struct{}{"kaju": {}}))
}

func TestInferFamily_MultiWordAlias(t *testing.T) {
	f := inferFamily(map[string]struct{}{"dry": {}, "fruits": {}, "gift": {}})
	if assert.NotNil(t, f) {
		assert.Equal(t, "dry fruits", f.name)
		assert.True(t, f.isAlias("Dry Fruits"))
	}

	assert.Nil(t, inferFamily(map[string]struct{}{"fruits": {}}))
}
