package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// phraseSubstitutions canonicalise common shopper phrasings before extraction.
var phraseSubstitutions = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)\bprotein\s*rich\b`), "high protein"},
	{regexp.MustCompile(`(?i)\bhigh\s*in\s*protein\b`), "high protein"},
	{regexp.MustCompile(`(?i)\bpack\s*size\b`), "net weight"},
	{regexp.MustCompile(`(?i)\bnet\s*wt\b`), "net weight"},
}

var (
	rupeeSpacing = regexp.MustCompile(`₹\s*(\d)`)

	// Price patterns. The earliest match in the query wins.
	pricePrefix = regexp.MustCompile(`(?i)(?:₹|\brs\.?|\binr)\s*(\d+(?:\.\d+)?)\b`)
	priceSuffix = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:rupees|rupee|rs|inr)\b\.?`)
	priceUnder  = regexp.MustCompile(`(?i)(?:\b(?:under|below|less than)|<=)\s*(\d+(?:\.\d+)?)\b`)

	weightPattern = regexp.MustCompile(
		`(?i)(\d+(?:\.\d+)?)\s*(kgs|kg|kilos|kilo|grams|gram|gms|gm|g|litres|litre|ltrs|ltr|l|ml)\b`)

	// weightClause also swallows a comparison word that directly precedes a
	// weight ("under 1kg") so no orphaned operator is left behind.
	weightClause = regexp.MustCompile(
		`(?i)(?:(?:\b(?:under|below|less than)|<=)\s*)?\d+(?:\.\d+)?\s*` +
			`(?:kgs|kg|kilos|kilo|grams|gram|gms|gm|g|litres|litre|ltrs|ltr|l|ml)\b`)

	// unitAhead detects a number that is really a pack size ("rs 1 kg").
	unitAhead = regexp.MustCompile(`(?i)^\s*(?:kgs|kg|kilos|kilo|grams|gram|gms|gm|g|litres|litre|ltrs|ltr|l|ml)\b`)

	danglingCurrency = regexp.MustCompile(`(?i)₹|\b(?:rupees|rupee|rs|inr)\b\.?`)
	danglingOperator = regexp.MustCompile(`(?i)(?:\b(?:under|below|less than)|<=)\s*$`)
	multiSpace       = regexp.MustCompile(`\s{2,}`)
)

// categoryKeywords maps query keywords onto catalog categories.
// Only family words that never appear inside product titles are listed.
var categoryKeywords = []struct {
	pattern  *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)\bdry\s*fruits?\b`), "Dry Fruits"},
	{regexp.MustCompile(`(?i)\b(?:pulses|dals)\b`), "Pulses"},
	{regexp.MustCompile(`(?i)\bspices\b`), "Spices"},
	{regexp.MustCompile(`(?i)\bbeverages\b`), "Tea, Coffee and Beverages"},
}

// NormaliseQuery trims the query, applies the phrase table and
// canonicalises rupee spacing ("₹ 50" becomes "₹50").
func NormaliseQuery(q string) string {
	s := strings.TrimSpace(q)
	for _, sub := range phraseSubstitutions {
		s = sub.pattern.ReplaceAllString(s, sub.repl)
	}
	return rupeeSpacing.ReplaceAllString(s, "₹$1")
}

// ExtractFilters derives structured constraints and a constraint-free
// semantic query from free text. It never fails: anything that cannot be
// parsed is simply left unset.
func ExtractFilters(q string) domain.QueryFilters {
	qn := NormaliseQuery(q)

	f := domain.QueryFilters{
		MaxPrice: extractMaxPrice(qn),
	}

	if m := weightPattern.FindStringSubmatch(qn); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			unit := domain.NormaliseUnit(m[2])
			f.WeightValue = &v
			f.WeightUnit = &unit
		}
	}

	for _, ck := range categoryKeywords {
		if ck.pattern.MatchString(qn) {
			category := ck.category
			f.Category = &category
			break
		}
	}

	f.CleanedQuery = cleanQuery(qn)
	if f.CleanedQuery == "" {
		f.CleanedQuery = strings.TrimSpace(q)
	}
	return f
}

// extractMaxPrice returns the earliest price constraint in s.
func extractMaxPrice(s string) *float64 {
	bestPos := -1
	var best *float64

	for _, re := range []*regexp.Regexp{pricePrefix, priceSuffix, priceUnder} {
		for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
			if re != priceSuffix && unitAhead.MatchString(s[loc[1]:]) {
				continue
			}
			if bestPos >= 0 && loc[0] >= bestPos {
				break
			}
			v, err := strconv.ParseFloat(s[loc[2]:loc[3]], 64)
			if err != nil {
				continue
			}
			bestPos = loc[0]
			best = &v
			break
		}
	}
	return best
}

// cleanQuery strips every price, weight and comparison clause, repeating
// until nothing more can be removed so that the result carries no residual
// constraint syntax.
func cleanQuery(s string) string {
	for i := 0; i < 4; i++ {
		prev := s
		s = weightClause.ReplaceAllString(s, " ")
		s = priceUnder.ReplaceAllString(s, " ")
		s = pricePrefix.ReplaceAllString(s, " ")
		s = priceSuffix.ReplaceAllString(s, " ")
		s = danglingCurrency.ReplaceAllString(s, " ")
		s = multiSpace.ReplaceAllString(s, " ")
		s = strings.TrimSpace(s)
		s = strings.TrimSpace(danglingOperator.ReplaceAllString(s, ""))
		if s == prev {
			break
		}
	}
	return s
}

// Intent flags detected in a shopper message.
type Intent struct {
	// Compare is set for "compare X vs Y" style questions.
	Compare bool

	// Browse is set when the shopper wants a catalogue listing.
	Browse bool

	// Smalltalk is set for greetings and chit-chat with no product content.
	Smalltalk bool
}

var (
	compareIntent = regexp.MustCompile(
		`(?i)\b(?:compare|comparison|vs|versus|difference between|which is better|better than)\b`)

	browseIntent = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:show|list|browse|display|see)\b(?:\s+\w+){0,3}?\s+(?:all|every|entire|whole)\b`),
		regexp.MustCompile(`(?i)\b(?:all|your|available)\s+(?:products|items|range|catalog|catalogue)\b`),
		regexp.MustCompile(`(?i)\bwhat\s+(?:products|items)\s+(?:do\s+you\s+)?(?:have|sell|offer)\b`),
	}

	greetingPattern  = regexp.MustCompile(`(?i)\b(?:hi|hey|hello|yo|namaste|good (?:morning|afternoon|evening))\b`)
	smalltalkPattern = regexp.MustCompile(`(?i)\b(?:how are you|what'?s up|thanks|thank you|help)\b`)
)

// smalltalkFiller are words that may surround a greeting without turning
// it into a product question.
var smalltalkFiller = map[string]struct{}{
	"me": {}, "please": {}, "there": {}, "can": {}, "you": {}, "i": {}, "need": {},
	"ok": {}, "okay": {}, "so": {}, "much": {}, "a": {}, "lot": {}, "tata": {},
	"sampann": {}, "bot": {}, "assistant": {}, "ji": {}, "dear": {}, "friend": {},
}

// DetectIntent classifies a shopper message.
func DetectIntent(msg string) Intent {
	m := strings.TrimSpace(msg)
	var in Intent
	if m == "" {
		in.Smalltalk = true
		return in
	}

	in.Compare = compareIntent.MatchString(m)
	for _, re := range browseIntent {
		if re.MatchString(m) {
			in.Browse = true
			break
		}
	}

	if greetingPattern.MatchString(m) || smalltalkPattern.MatchString(m) {
		rest := greetingPattern.ReplaceAllString(m, " ")
		rest = smalltalkPattern.ReplaceAllString(rest, " ")
		in.Smalltalk = true
		for _, tok := range Tokenize(rest) {
			if _, ok := smalltalkFiller[tok]; !ok {
				in.Smalltalk = false
				break
			}
		}
	}
	return in
}
