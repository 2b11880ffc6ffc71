package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// fetchMultiplier widens retrieval beyond k to leave headroom for
// deduplication and numeric filtering.
const fetchMultiplier = 3

// SearchService runs the hybrid retrieval and ranking pipeline.
type SearchService struct {
	cards     driven.CardStore
	index     driven.PassageIndex
	embedder  driven.EmbeddingService
	rerankers *RerankerProvider
}

// NewSearchService creates a new search service.
// The rerankers parameter is optional (can be nil); requests that ask for
// a re-ranker then fail with domain.ErrCapabilityUnavailable.
func NewSearchService(
	cards driven.CardStore,
	index driven.PassageIndex,
	embedder driven.EmbeddingService,
	rerankers *RerankerProvider,
) *SearchService {
	return &SearchService{
		cards:     cards,
		index:     index,
		embedder:  embedder,
		rerankers: rerankers,
	}
}

// RerankerAvailable reports whether cross-encoder ranking can be requested.
func (s *SearchService) RerankerAvailable() bool {
	return s.rerankers.Available()
}

// Search runs one request through normalisation, expansion, retrieval,
// card filtering, optional re-ranking, deduplication, sorting and
// truncation, in that order.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	logger.Section("Search Execution")
	req.Normalise()
	logger.Debug("Query: %q k=%d sort=%s ranker=%s ce_k=%d", req.Query, req.K, req.Sort, req.Ranker, req.CEK)

	inferred := ExtractFilters(req.Query)
	applied := applyOverrides(inferred, req)
	expanded := ExpandQuery(applied.CleanedQuery)
	logger.Debug("Cleaned: %q expanded: %q", applied.CleanedQuery, expanded)

	var explain *domain.Explain
	if req.Explain {
		explain = &domain.Explain{
			RequestID:     uuid.NewString(),
			OriginalQuery: req.Query,
			CleanedQuery:  applied.CleanedQuery,
			ExpandedQuery: expanded,
			Inferred:      explainFilters(inferred),
			Applied:       explainFilters(applied),
			Ranker:        req.Ranker,
			Sort:          req.Sort,
			DistinctBySKU: req.DistinctBySKU,
		}
	}

	if req.Query == "" {
		logger.Debug("Empty query, returning no results")
		return &domain.SearchResult{Hits: []domain.Hit{}, Explain: explain}, nil
	}

	// An explicitly requested re-ranker must exist before any work is done.
	var reranker driven.Reranker
	policy := RankByDistance
	if req.Ranker == domain.RankerCrossEncoder {
		r, err := s.rerankers.Get(req.CEModel)
		if err != nil {
			logger.Warn("Re-ranker requested but unavailable: %v", err)
			return nil, err
		}
		reranker = r
		policy = RankByCrossEncoder
		if explain != nil {
			explain.CEModel = r.ModelName()
		}
	}

	fetchK := req.K * fetchMultiplier
	if reranker != nil && req.CEK > fetchK {
		fetchK = req.CEK
	}

	candidates, stats, err := s.retrieve(ctx, expanded, fetchK, applied)
	if err != nil {
		return nil, err
	}
	if explain != nil {
		explain.FetchK = fetchK
		explain.Retrieved = stats.retrieved
		explain.Resolved = stats.resolved
		explain.Filtered = stats.filtered
		explain.FilterFallback = stats.fallback
	}

	if reranker != nil {
		done := logger.Timed("rerank")
		err := rerank(ctx, reranker, applied.CleanedQuery, candidates, req.CEK)
		done()
		if err != nil {
			return nil, err
		}
	}

	hits := candidates
	if req.DistinctBySKU {
		hits = DedupeBySKU(hits, policy)
	}
	if explain != nil {
		explain.Deduped = len(hits)
	}

	SortHits(hits, req.Sort, policy)
	hits = Truncate(hits, req.K)

	logger.Info("Search returned %d hits", len(hits))
	return &domain.SearchResult{Hits: hits, Explain: explain}, nil
}

// retrieveStats counts candidates at each retrieval stage.
type retrieveStats struct {
	retrieved int
	resolved  int
	filtered  int
	fallback  bool
}

// retrieve embeds the query, searches the index, resolves each passage to
// its card and applies numeric filters against the card. Passages whose
// card is missing are dropped. When the filters reject every resolved
// candidate the unfiltered set is returned instead.
func (s *SearchService) retrieve(
	ctx context.Context, query string, fetchK int, f domain.QueryFilters,
) ([]domain.Hit, retrieveStats, error) {
	var stats retrieveStats

	if s.embedder == nil || s.index == nil || s.cards == nil {
		return nil, stats, fmt.Errorf("%w: search index is not configured", domain.ErrCapabilityUnavailable)
	}

	done := logger.Timed("embed")
	vec, err := s.embedder.Embed(ctx, query)
	done()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: embed query: %w", domain.ErrUpstreamFailure, err)
	}

	var filter driven.PassageFilter
	if f.Category != nil {
		filter.Category = *f.Category
	}

	done = logger.Timed("index search")
	matches, err := s.index.Search(ctx, vec, fetchK, filter)
	done()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: index search: %w", domain.ErrUpstreamFailure, err)
	}
	stats.retrieved = len(matches)

	resolved := make([]domain.Hit, 0, len(matches))
	filtered := make([]domain.Hit, 0, len(matches))
	cards := make(map[string]*domain.ProductCard)

	for _, m := range matches {
		card, ok := cards[m.Passage.SKUID]
		if !ok {
			card, err = s.cards.GetCard(ctx, m.Passage.SKUID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					logger.Debug("Dropping orphan passage %s", m.Passage.ID)
					cards[m.Passage.SKUID] = nil
					continue
				}
				return nil, stats, fmt.Errorf("get card %s: %w", m.Passage.SKUID, err)
			}
			cards[m.Passage.SKUID] = card
		}
		if card == nil {
			continue
		}

		hit := hitFromCard(card, m)
		resolved = append(resolved, hit)
		if matchesPrice(card, f.MaxPrice) && matchesWeight(card, f.WeightValue, f.WeightUnit) {
			filtered = append(filtered, hit)
		}
	}
	stats.resolved = len(resolved)
	stats.filtered = len(filtered)
	logger.Debug("Retrieved %d, resolved %d, filtered %d", stats.retrieved, stats.resolved, stats.filtered)

	if len(filtered) == 0 && len(resolved) > 0 {
		logger.Warn("Filters rejected all %d candidates, falling back to unfiltered set", len(resolved))
		stats.fallback = true
		return resolved, stats, nil
	}
	return filtered, stats, nil
}

// applyOverrides lets explicit request constraints win over inferred ones.
func applyOverrides(f domain.QueryFilters, req domain.SearchRequest) domain.QueryFilters {
	if req.Category != nil {
		f.Category = req.Category
	}
	if req.MaxPrice != nil {
		f.MaxPrice = req.MaxPrice
	}
	if req.WeightValue != nil {
		f.WeightValue = req.WeightValue
	}
	if req.WeightUnit != nil {
		unit := domain.NormaliseUnit(*req.WeightUnit)
		f.WeightUnit = &unit
	}
	if req.SkipNumericFilters {
		f.MaxPrice, f.WeightValue, f.WeightUnit = nil, nil, nil
	}
	return f
}

func explainFilters(f domain.QueryFilters) domain.ExplainFilters {
	return domain.ExplainFilters{
		Category:    f.Category,
		MaxPrice:    f.MaxPrice,
		WeightValue: f.WeightValue,
		WeightUnit:  f.WeightUnit,
	}
}

// hitFromCard builds a hit from the authoritative card and the matched passage.
func hitFromCard(card *domain.ProductCard, m driven.PassageMatch) domain.Hit {
	h := domain.Hit{
		SKUID:    card.SKUID,
		Title:    card.Title,
		Category: card.Category,
		Price:    card.MRP,
		Link:     card.Link,
		Section:  m.Passage.Section,
		Text:     m.Passage.Text,
		Score:    m.Distance,
	}
	if card.NetQuantity != nil {
		h.Weight = &domain.Weight{Value: card.NetQuantity.Value, Unit: card.NetQuantity.Unit}
	}
	return h
}

// matchesPrice requires a known MRP no greater than maxPrice.
func matchesPrice(card *domain.ProductCard, maxPrice *float64) bool {
	if maxPrice == nil {
		return true
	}
	return card.MRP != nil && *card.MRP <= *maxPrice
}

// matchesWeight requires the card's pack to equal every supplied part.
// A card without a pack size cannot confirm the constraint.
func matchesWeight(card *domain.ProductCard, value *float64, unit *string) bool {
	if value == nil && unit == nil {
		return true
	}
	q := card.NetQuantity
	if q == nil {
		return false
	}
	if value != nil && math.Abs(q.Value-*value) > 1e-9 {
		return false
	}
	if unit != nil && q.Unit != strings.ToLower(*unit) {
		return false
	}
	return true
}
