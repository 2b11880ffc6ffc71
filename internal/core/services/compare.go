package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// Ensure CompareService implements the interface.
var _ driving.CompareService = (*CompareService)(nil)

// compareTopK is the retrieval width per comparison target.
const compareTopK = 10

// minDistinctiveLen is the shortest token that can identify a product.
const minDistinctiveLen = 3

// genericTokens describe many products and cannot identify one.
var genericTokens = map[string]struct{}{
	"seeds": {}, "seed": {}, "dal": {}, "dals": {}, "powder": {}, "organic": {},
	"premium": {}, "tata": {}, "sampann": {}, "pack": {}, "best": {}, "the": {},
	"and": {}, "of": {}, "whole": {}, "split": {}, "unpolished": {}, "masala": {},
	"dates": {}, "nuts": {}, "beans": {}, "lentils": {}, "rice": {}, "flour": {}, "gram": {},
}

var (
	compareLead   = regexp.MustCompile(`(?i)\b(?:compare|comparison of|comparison|difference between|which is better|which one is better|what is better|between)\b`)
	compareSplit  = regexp.MustCompile(`(?i)\s+(?:vs\.?|versus|and|or|with)\s+|\s*/\s*|\s*,\s*`)
	trailingPunct = regexp.MustCompile(`[?.!]+\s*$`)
)

// CompareService selects the best offer for each of two products.
type CompareService struct {
	search driving.SearchService
	ranker domain.Ranker
}

// NewCompareService creates a comparison service on top of search.
// ranker is used for every per-target retrieval.
func NewCompareService(search driving.SearchService, ranker domain.Ranker) *CompareService {
	if !ranker.IsValid() {
		ranker = domain.RankerNone
	}
	return &CompareService{search: search, ranker: ranker}
}

// SplitTargets recovers the comparison targets from a free-text query.
// Fewer than two targets is domain.ErrAmbiguousComparison; extra targets
// beyond the first two are ignored.
func SplitTargets(query string) ([2]string, error) {
	var out [2]string

	s := compareLead.ReplaceAllString(query, " ")
	s = trailingPunct.ReplaceAllString(strings.TrimSpace(s), "")

	var targets []string
	for _, part := range compareSplit.Split(s, -1) {
		part = strings.Join(strings.Fields(part), " ")
		if part != "" {
			targets = append(targets, part)
		}
	}
	if len(targets) < 2 {
		return out, fmt.Errorf("%w: found %d in %q", domain.ErrAmbiguousComparison, len(targets), query)
	}
	if len(targets) > 2 {
		logger.Warn("Comparison has %d targets, using the first two", len(targets))
	}
	out[0], out[1] = targets[0], targets[1]
	return out, nil
}

// Compare splits query into two targets and compares them.
func (s *CompareService) Compare(ctx context.Context, query string) (*domain.Comparison, error) {
	targets, err := SplitTargets(query)
	if err != nil {
		return nil, err
	}
	return s.CompareTargets(ctx, targets)
}

// CompareTargets runs retrieval for each target independently and picks
// its best offer.
func (s *CompareService) CompareTargets(ctx context.Context, targets [2]string) (*domain.Comparison, error) {
	logger.Section("Comparison")
	result := &domain.Comparison{Offers: make([]domain.Offer, 0, 2)}

	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			return nil, fmt.Errorf("%w: empty comparison target", domain.ErrAmbiguousComparison)
		}

		res, err := s.search.Search(ctx, domain.SearchRequest{
			Query:              target,
			K:                  compareTopK,
			DistinctBySKU:      true,
			Sort:               domain.SortRelevance,
			Ranker:             s.ranker,
			SkipNumericFilters: true,
		})
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", target, err)
		}

		matching := FilterByDistinctive(target, res.Hits)
		logger.Debug("Target %q: %d of %d hits match", target, len(matching), len(res.Hits))
		if len(matching) == 0 {
			return nil, fmt.Errorf("%w: no product matches %q", domain.ErrInsufficientData, target)
		}

		offer := BestOffer(matching)
		offer.Target = target
		result.Offers = append(result.Offers, offer)
	}
	return result, nil
}

// DistinctiveTokens returns the expanded target tokens that can identify a
// product: not generic and at least three characters long. When a target
// has none, every expanded token of sufficient length is used.
func DistinctiveTokens(target string) []string {
	expanded := ExpandTokens(target)
	var out, fallback []string
	for _, tok := range expanded {
		if utf8.RuneCountInString(tok) < minDistinctiveLen {
			continue
		}
		fallback = append(fallback, tok)
		if _, generic := genericTokens[tok]; !generic {
			out = append(out, tok)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// FilterByDistinctive keeps hits whose title contains a distinctive token
// of the target, preserving order.
func FilterByDistinctive(target string, hits []domain.Hit) []domain.Hit {
	tokens := make(map[string]struct{})
	for _, t := range DistinctiveTokens(target) {
		tokens[t] = struct{}{}
	}

	var out []domain.Hit
	for _, h := range hits {
		if titleOverlaps(h.Title, tokens) {
			out = append(out, h)
		}
	}
	return out
}

// UnitPricePerKg returns the price per kilogram for mass-based packs.
func UnitPricePerKg(h domain.Hit) *float64 {
	if h.Price == nil || h.Weight == nil {
		return nil
	}
	kg, ok := domain.NetQuantity{Value: h.Weight.Value, Unit: h.Weight.Unit}.Kilograms()
	if !ok {
		return nil
	}
	v := *h.Price / kg
	return &v
}

// BestOffer picks the lowest price per kilogram, then the lowest raw price,
// then the first hit. hits must not be empty.
func BestOffer(hits []domain.Hit) domain.Offer {
	best := -1
	var bestUnit *float64
	for i := range hits {
		up := UnitPricePerKg(hits[i])
		if up == nil {
			continue
		}
		if bestUnit == nil || *up < *bestUnit {
			best, bestUnit = i, up
		}
	}

	if best < 0 {
		for i := range hits {
			if hits[i].Price == nil {
				continue
			}
			if best < 0 || *hits[i].Price < *hits[best].Price {
				best = i
			}
		}
	}

	if best < 0 {
		best = 0
	}
	return domain.Offer{
		Hit:            hits[best],
		UnitPricePerKg: UnitPricePerKg(hits[best]),
		Matches:        len(hits),
	}
}
