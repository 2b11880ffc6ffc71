package services

import (
	"regexp"
	"strings"
)

// tokenSplit collapses everything except letters, digits, underscore and
// Devanagari (including its combining vowel signs) into separators.
var tokenSplit = regexp.MustCompile(`[^\p{L}\p{N}_\x{0900}-\x{097F}]+`)

// Tokenize lowercases s and splits it into word tokens.
func Tokenize(s string) []string {
	return strings.Fields(tokenSplit.ReplaceAllString(strings.ToLower(s), " "))
}

// synonymGroup maps a Hinglish or English product word onto its equivalents.
type synonymGroup struct {
	key     string
	members []string
}

// synonymTable is ordered so lookups by member are deterministic.
var synonymTable = []synonymGroup{
	// nuts and seeds
	{"kaju", []string{"cashew", "cashews", "kaju"}},
	{"badam", []string{"almond", "almonds", "badam"}},
	{"pista", []string{"pistachio", "pistachios", "pista"}},
	{"akhrot", []string{"walnut", "walnuts", "akhrot"}},
	{"chironji", []string{"charoli", "chironji"}},
	{"chia", []string{"chia"}},
	// dals and pulses
	{"moong", []string{"moong", "green gram"}},
	{"masoor", []string{"masoor", "red lentil", "red lentils"}},
	{"urad", []string{"urad", "black gram"}},
	{"chana", []string{"chana", "bengal gram", "chickpea", "chickpeas"}},
	{"toor", []string{"toor", "arhar", "pigeon pea", "pigeon peas"}},
	{"rajma", []string{"rajma", "kidney bean", "kidney beans"}},
	// beverages
	{"chai", []string{"tea", "chai"}},
	{"tea", []string{"tea", "chai"}},
	{"coffee", []string{"coffee", "cold brew"}},
	{"beverages", []string{"beverages", "tea", "coffee"}},
	// spices
	{"haldi", []string{"turmeric", "haldi"}},
	{"dhania", []string{"coriander", "dhania"}},
	{"mirchi", []string{"chilli", "chili", "mirchi"}},
}

var synonymsByKey = func() map[string][]string {
	m := make(map[string][]string, len(synonymTable))
	for _, g := range synonymTable {
		m[g.key] = g.members
	}
	return m
}()

// synonymsOf returns the group a word belongs to: its own group when it is a
// key, otherwise the first group listing it as a member.
func synonymsOf(word string) []string {
	if members, ok := synonymsByKey[word]; ok {
		return members
	}
	for _, g := range synonymTable {
		for _, m := range g.members {
			if m == word {
				return g.members
			}
		}
	}
	return nil
}

// ExpandTokens returns the tokens of q followed by the synonyms of each
// token. Only the query's own tokens are looked up; emitted synonyms are not
// expanded again. Each word is emitted once and multi-word synonyms are
// emitted as their words.
func ExpandTokens(q string) []string {
	seen := make(map[string]struct{})
	var out []string
	emit := func(word string) {
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}

	for _, tok := range Tokenize(q) {
		emit(tok)
		for _, member := range synonymsOf(tok) {
			for _, w := range strings.Fields(member) {
				emit(w)
			}
		}
	}
	return out
}

// ExpandQuery returns the synonym-expanded form of q as a single string.
func ExpandQuery(q string) string {
	return strings.Join(ExpandTokens(q), " ")
}

// productFamily is a broad catalog grouping with the category names and
// query words that identify it.
type productFamily struct {
	name    string
	aliases []string
}

var productFamilies = []productFamily{
	{"pulses", []string{"pulses", "dals", "lentils"}},
	{"spices", []string{"spices", "spice"}},
	{"dry fruits", []string{"dry fruits", "nuts", "seeds"}},
	{"tea, coffee and beverages", []string{"tea, coffee and beverages", "beverages", "tea", "coffee"}},
}

// inferFamily returns the first family with an alias whose words all
// appear in tokens, so "dry fruits" matches a query holding "dry" and "fruits".
func inferFamily(tokens map[string]struct{}) *productFamily {
	for i := range productFamilies {
		for _, alias := range productFamilies[i].aliases {
			if containsAll(tokens, Tokenize(alias)) {
				return &productFamilies[i]
			}
		}
	}
	return nil
}

func containsAll(tokens map[string]struct{}, words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if _, ok := tokens[w]; !ok {
			return false
		}
	}
	return true
}

// isAlias reports whether category names this family.
func (f *productFamily) isAlias(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, alias := range f.aliases {
		if c == alias {
			return true
		}
	}
	return false
}
