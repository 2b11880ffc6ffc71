package services

import (
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// groundingStopwords never count as evidence: they appear in most titles or
// in most questions.
var groundingStopwords = map[string]struct{}{
	"tata": {}, "sampann": {}, "the": {}, "a": {}, "an": {}, "of": {}, "for": {},
	"in": {}, "me": {}, "show": {}, "do": {}, "you": {}, "have": {}, "is": {},
	"are": {}, "with": {}, "and": {}, "or": {}, "price": {}, "pack": {},
	"net": {}, "weight": {}, "best": {}, "buy": {}, "want": {}, "need": {},
	"i": {}, "any": {}, "some": {}, "what": {}, "which": {}, "how": {},
	"much": {}, "hai": {}, "kya": {}, "please": {}, "products": {}, "product": {},
}

// Grounder is the final lexical relevance gate before hits reach an answer
// generator.
type Grounder struct {
	// BrowseMaxDistance is the dense distance cutoff for browse queries.
	// Zero keeps every hit.
	BrowseMaxDistance float64
}

// Ground keeps hits with lexical evidence for the query. A hit passes if its
// title shares a token with the expanded query, or its category names the
// product family inferred from the query, or, when no family is inferred,
// its category shares a token with the query. Browse queries skip the
// lexical test and apply only the distance cutoff.
//
// Returns domain.ErrNoEvidence when nothing passes.
func (g Grounder) Ground(query string, hits []domain.Hit, browse bool) ([]domain.Hit, error) {
	var kept []domain.Hit

	if browse {
		for _, h := range hits {
			if g.BrowseMaxDistance > 0 && h.Score > g.BrowseMaxDistance {
				continue
			}
			kept = append(kept, h)
		}
	} else {
		qTokens := groundingTokens(query)
		family := inferFamily(qTokens)

		for _, h := range hits {
			if titleOverlaps(h.Title, qTokens) || categoryMatches(h.Category, qTokens, family) {
				kept = append(kept, h)
			}
		}
	}

	logger.Debug("Grounding: %d of %d hits kept (browse=%t)", len(kept), len(hits), browse)
	if len(kept) == 0 {
		return nil, domain.ErrNoEvidence
	}
	return kept, nil
}

// groundingTokens returns the expanded, constraint-free query tokens.
func groundingTokens(query string) map[string]struct{} {
	cleaned := ExtractFilters(query).CleanedQuery
	out := make(map[string]struct{})
	for _, tok := range ExpandTokens(cleaned) {
		if _, stop := groundingStopwords[tok]; stop {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

func titleOverlaps(title string, q map[string]struct{}) bool {
	for _, tok := range Tokenize(title) {
		if _, ok := q[tok]; ok {
			return true
		}
	}
	return false
}

func categoryMatches(category string, q map[string]struct{}, family *productFamily) bool {
	if category == "" {
		return false
	}
	if family != nil {
		return family.isAlias(category)
	}
	for _, tok := range Tokenize(category) {
		if _, stop := groundingStopwords[tok]; stop {
			continue
		}
		if _, ok := q[tok]; ok {
			return true
		}
	}
	return false
}
