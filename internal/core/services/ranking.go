package services

import (
	"math"
	"sort"
	"strings"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// RankPolicy decides which hit is more relevant.
type RankPolicy int

// Ranking policies.
const (
	// RankByDistance orders by dense distance ascending.
	RankByDistance RankPolicy = iota

	// RankByCrossEncoder orders by re-ranker score descending, then distance.
	RankByCrossEncoder
)

// ceValue treats a missing re-ranker score as the worst possible score.
func ceValue(h *domain.Hit) float64 {
	if h.CEScore == nil {
		return math.Inf(-1)
	}
	return *h.CEScore
}

// better reports whether a ranks strictly before b under the policy.
// Ties fall through to lowercased title and then SKU, which makes the
// ordering total.
func (p RankPolicy) better(a, b *domain.Hit) bool {
	if p == RankByCrossEncoder {
		ca, cb := ceValue(a), ceValue(b)
		if ca != cb {
			return ca > cb
		}
	}
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return titleLess(a, b)
}

// titleLess orders by lowercased title, then SKU, then section and text.
func titleLess(a, b *domain.Hit) bool {
	ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
	if ta != tb {
		return ta < tb
	}
	if a.SKUID != b.SKUID {
		return a.SKUID < b.SKUID
	}
	if a.Section != b.Section {
		return a.Section < b.Section
	}
	return a.Text < b.Text
}

// DedupeBySKU keeps the best-seen hit per product under the policy.
// Output order is unspecified; callers must sort afterwards.
func DedupeBySKU(hits []domain.Hit, policy RankPolicy) []domain.Hit {
	best := make(map[string]int, len(hits))
	out := make([]domain.Hit, 0, len(hits))
	for i := range hits {
		idx, ok := best[hits[i].SKUID]
		if !ok {
			best[hits[i].SKUID] = len(out)
			out = append(out, hits[i])
			continue
		}
		if policy.better(&hits[i], &out[idx]) {
			out[idx] = hits[i]
		}
	}
	return out
}

// SortHits orders hits in place. Relevance uses the policy; price modes sink
// unpriced hits to the bottom in both directions with title as the
// secondary key; title mode compares lowercased titles.
func SortHits(hits []domain.Hit, mode domain.SortMode, policy RankPolicy) {
	var less func(a, b *domain.Hit) bool

	switch mode {
	case domain.SortPriceAsc:
		less = func(a, b *domain.Hit) bool { return priceLess(a, b, false) }
	case domain.SortPriceDesc:
		less = func(a, b *domain.Hit) bool { return priceLess(a, b, true) }
	case domain.SortTitleAsc:
		less = titleLess
	default:
		less = policy.better
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return less(&hits[i], &hits[j])
	})
}

func priceLess(a, b *domain.Hit, desc bool) bool {
	switch {
	case a.Price == nil && b.Price == nil:
		return titleLess(a, b)
	case a.Price == nil:
		return false
	case b.Price == nil:
		return true
	}
	pa, pb := *a.Price, *b.Price
	if pa != pb {
		if desc {
			return pa > pb
		}
		return pa < pb
	}
	return titleLess(a, b)
}

// Truncate returns at most k hits.
func Truncate(hits []domain.Hit, k int) []domain.Hit {
	if k >= 0 && len(hits) > k {
		return hits[:k]
	}
	return hits
}
