package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/storage/vecmath"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// Ensure PassageIndex implements the interface.
var _ driven.PassageIndex = (*PassageIndex)(nil)

type indexedPassage struct {
	passage domain.Passage
	vector  []float32
}

// PassageIndex is an in-memory brute-force cosine index.
type PassageIndex struct {
	mu       sync.RWMutex
	passages map[string]indexedPassage
}

// NewPassageIndex creates a new in-memory passage index.
func NewPassageIndex() *PassageIndex {
	return &PassageIndex{
		passages: make(map[string]indexedPassage),
	}
}

// Upsert stores passages with their embeddings, replacing existing IDs.
func (x *PassageIndex) Upsert(_ context.Context, passages []domain.Passage, embeddings [][]float32) error {
	if len(passages) != len(embeddings) {
		return fmt.Errorf("upsert: %d passages but %d embeddings", len(passages), len(embeddings))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, p := range passages {
		vec := make([]float32, len(embeddings[i]))
		copy(vec, embeddings[i])
		x.passages[p.ID] = indexedPassage{passage: p, vector: vec}
	}
	return nil
}

// Search returns up to k passages by ascending cosine distance.
// Ties are broken by passage ID so results are deterministic.
func (x *PassageIndex) Search(
	_ context.Context, query []float32, k int, filter driven.PassageFilter,
) ([]driven.PassageMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]driven.PassageMatch, 0, len(x.passages))
	for _, ip := range x.passages {
		if filter.Category != "" && ip.passage.Metadata["category"] != filter.Category {
			continue
		}
		matches = append(matches, driven.PassageMatch{
			Passage:  ip.passage,
			Distance: vecmath.CosineDistance(query, ip.vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Passage.ID < matches[j].Passage.ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of indexed passages.
func (x *PassageIndex) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.passages), nil
}

// Close releases resources.
func (x *PassageIndex) Close() error {
	return nil
}
