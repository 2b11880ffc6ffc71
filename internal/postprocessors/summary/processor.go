// Package summary provides the overview and diet passage processor.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// Processor adds an overview passage and a dietary passage for each card.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a new summary processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "summary"
}

// Process appends the overview and diet passages to passages.
func (p *Processor) Process(
	_ context.Context, card *domain.ProductCard, passages []domain.Passage,
) ([]domain.Passage, error) {
	if card == nil {
		return nil, fmt.Errorf("card is nil")
	}

	meta := func() map[string]string {
		return map[string]string{"category": card.Category}
	}

	passages = append(passages,
		domain.Passage{
			ID:       card.SKUID + "#overview",
			SKUID:    card.SKUID,
			Section:  domain.SectionOverview,
			Text:     OverviewText(card),
			Metadata: meta(),
		},
		domain.Passage{
			ID:       card.SKUID + "#diet",
			SKUID:    card.SKUID,
			Section:  domain.SectionDiet,
			Text:     DietText(card),
			Metadata: meta(),
		},
	)
	return passages, nil
}

// OverviewText renders the one-line card summary that is embedded for
// retrieval, e.g. "Roasted Cashews 200 g - Category: Dry Fruits. USP: Crunchy. MRP ₹250."
func OverviewText(card *domain.ProductCard) string {
	var b strings.Builder
	b.WriteString(card.Title)
	if card.NetQuantity != nil {
		b.WriteString(" ")
		b.WriteString(card.NetQuantity.String())
	}
	b.WriteString(" - Category: ")
	b.WriteString(card.Category)
	b.WriteString(". USP: ")
	b.WriteString(orDash(strings.Join(uniqueSorted(card.ClaimTexts()), ", ")))
	b.WriteString(". MRP ₹")
	if card.MRP != nil {
		b.WriteString(strconv.FormatFloat(*card.MRP, 'f', -1, 64))
	} else {
		b.WriteString("-")
	}
	b.WriteString(".")
	return b.String()
}

// DietText renders the dietary suitability passage.
func DietText(card *domain.ProductCard) string {
	return card.Title + ": Dietary suitability - " + orDash(strings.Join(card.DietaryTags, ", ")) + "."
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
