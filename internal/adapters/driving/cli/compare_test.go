package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

func sampleComparison() *domain.Comparison {
	return &domain.Comparison{Offers: []domain.Offer{
		{
			Target: "chana dal",
			Hit: domain.Hit{
				Title:  "Tata Sampann Chana Dal 1kg",
				Price:  ptr(120.0),
				Weight: &domain.Weight{Value: 1, Unit: "kg"},
				Link:   "https://example.com/chana",
			},
			UnitPricePerKg: ptr(120.0),
			Matches:        3,
		},
		{
			Target:  "mustard oil",
			Hit:     domain.Hit{Title: "Tata Sampann Mustard Oil 1l", Price: ptr(180.0)},
			Matches: 1,
		},
	}}
}

func TestCompareCmd_Use(t *testing.T) {
	assert.Equal(t, "compare [query | product-a product-b]", compareCmd.Use)
}

func TestCompareCmd_ArgCount(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("compare")
	assert.Error(t, err)

	_, err = executeCommand("compare", "a", "b", "c")
	assert.Error(t, err)
}

func TestCompareCmd_FreeTextQuery(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.compare.result = sampleComparison()

	out, err := executeCommand("compare", "chana dal vs mustard oil")

	require.NoError(t, err)
	assert.Equal(t, "chana dal vs mustard oil", ts.compare.query)
	assert.Contains(t, out, "CHANA DAL")
	assert.Contains(t, out, "Tata Sampann Chana Dal 1kg")
	assert.Contains(t, out, "₹120.00 per kg")
	assert.Contains(t, out, "3 matching products")
	assert.Contains(t, out, "MUSTARD OIL")
	assert.Contains(t, out, "per-kg price n/a")
}

func TestCompareCmd_TwoTargets(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.compare.result = sampleComparison()

	_, err := executeCommand("compare", "chana dal", "mustard oil")

	require.NoError(t, err)
	assert.Equal(t, [2]string{"chana dal", "mustard oil"}, ts.compare.targets)
	assert.Empty(t, ts.compare.query)
}

func TestCompareCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.compare.result = sampleComparison()

	out, err := executeCommand("compare", "--json", "chana dal vs mustard oil")
	require.NoError(t, err)

	var got domain.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Offers, 2)
	assert.Equal(t, "chana dal", got.Offers[0].Target)
	assert.Nil(t, got.Offers[1].UnitPricePerKg)
}

func TestCompareCmd_Errors(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.compare.err = domain.ErrAmbiguousComparison

	_, err := executeCommand("compare", "just one thing")

	require.ErrorIs(t, err, domain.ErrAmbiguousComparison)
	assert.Contains(t, err.Error(), "compare failed")

	compareService = nil
	_, err = executeCommand("compare", "a vs b")
	assert.EqualError(t, err, "compare service not configured")
}
