package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

func categorised(h domain.Hit, category string) domain.Hit {
	h.Category = category
	return h
}

func TestGrounder_Ground(t *testing.T) {
	cashews := categorised(hit("KAJU", "Roasted Cashews 200g", ptrFloat(250), nil, 0.2), "Dry Fruits")
	moong := categorised(hit("MOONG", "Moong Dal 500g", ptrFloat(120), nil, 0.1), "Pulses")
	flax := categorised(hit("FLAX", "Flax Mix", ptrFloat(90), nil, 0.3), "Dry Fruits")
	ragi := categorised(hit("RAGI", "Nachni Atta", ptrFloat(60), nil, 0.4), "Flour")

	t.Run("synonym matches title", func(t *testing.T) {
		kept, err := Grounder{}.Ground("kaju 200g", []domain.Hit{moong, cashews}, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"KAJU"}, skus(kept))
	})

	t.Run("family matches category", func(t *testing.T) {
		kept, err := Grounder{}.Ground("seeds", []domain.Hit{flax, moong}, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"FLAX"}, skus(kept))
	})

	t.Run("family word for pulses", func(t *testing.T) {
		kept, err := Grounder{}.Ground("dals under 100", []domain.Hit{cashews, moong}, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"MOONG"}, skus(kept))
	})

	t.Run("category token without family", func(t *testing.T) {
		kept, err := Grounder{}.Ground("ragi flour", []domain.Hit{ragi, moong}, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"RAGI"}, skus(kept))
	})

	t.Run("stopwords are not evidence", func(t *testing.T) {
		tata := categorised(hit("T", "Tata Sampann Besan", nil, nil, 0.1), "Flour")

		_, err := Grounder{}.Ground("tata sampann products", []domain.Hit{tata}, false)

		assert.ErrorIs(t, err, domain.ErrNoEvidence)
	})

	t.Run("no evidence", func(t *testing.T) {
		_, err := Grounder{}.Ground("kaju", []domain.Hit{moong}, false)

		assert.ErrorIs(t, err, domain.ErrNoEvidence)
	})

	t.Run("empty hits", func(t *testing.T) {
		_, err := Grounder{}.Ground("kaju", nil, false)

		assert.ErrorIs(t, err, domain.ErrNoEvidence)
	})
}

func TestGrounder_Browse(t *testing.T) {
	near := hit("NEAR", "Chia Seeds", nil, nil, 0.2)
	far := hit("FAR", "Kalmi Dates", nil, nil, 0.7)

	t.Run("relaxed gate keeps unrelated titles", func(t *testing.T) {
		kept, err := Grounder{}.Ground("show me all products", []domain.Hit{near, far}, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"NEAR", "FAR"}, skus(kept))
	})

	t.Run("strict gate rejects the same hits", func(t *testing.T) {
		_, err := Grounder{}.Ground("show me all products", []domain.Hit{near, far}, false)

		assert.ErrorIs(t, err, domain.ErrNoEvidence)
	})

	t.Run("distance cutoff", func(t *testing.T) {
		kept, err := Grounder{BrowseMaxDistance: 0.5}.Ground("show me all products", []domain.Hit{near, far}, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"NEAR"}, skus(kept))
	})

	t.Run("everything beyond the cutoff", func(t *testing.T) {
		_, err := Grounder{BrowseMaxDistance: 0.1}.Ground("show me all products", []domain.Hit{near, far}, true)

		assert.ErrorIs(t, err, domain.ErrNoEvidence)
	})
}
