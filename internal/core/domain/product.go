package domain

import (
	"crypto/sha1" //nolint:gosec // G505: identity hash, not a security boundary.
	"encoding/hex"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Units accepted for a product's net quantity.
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMillilitre = "ml"
	UnitLitre      = "l"
)

// DefaultBrand is the brand assumed for catalog rows that do not name one.
const DefaultBrand = "Tata Sampann"

// NetQuantity is the declared pack size of a product.
type NetQuantity struct {
	// Value is the numeric amount (e.g. 500).
	Value float64

	// Unit is one of g, kg, ml, l.
	Unit string
}

// String formats the quantity as "500 g".
func (q NetQuantity) String() string {
	return strconv.FormatFloat(q.Value, 'f', -1, 64) + " " + q.Unit
}

// IsMass reports whether the unit is a recognised mass unit.
func (q NetQuantity) IsMass() bool {
	return q.Unit == UnitGram || q.Unit == UnitKilogram
}

// Kilograms returns the mass in kilograms. The second return is false
// for volume units or non-positive values.
func (q NetQuantity) Kilograms() (float64, bool) {
	if q.Value <= 0 {
		return 0, false
	}
	switch q.Unit {
	case UnitKilogram:
		return q.Value, true
	case UnitGram:
		return q.Value / 1000, true
	default:
		return 0, false
	}
}

// Claim is a marketing or regulatory statement about a product.
type Claim struct {
	Text     string
	Approved bool
	Source   string
}

// ProductCard is the authoritative record for one catalog product.
// Cards are created by ingestion and are read-only afterwards.
type ProductCard struct {
	// SKUID is the stable identity hash of brand, title and pack size.
	SKUID string

	Brand    string
	Title    string
	Category string

	// NetQuantity is nil when the pack size could not be parsed.
	NetQuantity *NetQuantity

	// MRP is the listed price in rupees; nil when unknown.
	MRP *float64

	Link        string
	Description string
	Claims      []Claim
	DietaryTags []string
}

// ClaimTexts returns the text of every claim.
func (c *ProductCard) ClaimTexts() []string {
	out := make([]string, 0, len(c.Claims))
	for _, cl := range c.Claims {
		out = append(out, cl.Text)
	}
	return out
}

// Passage sections.
const (
	SectionOverview    = "Overview"
	SectionDiet        = "Diet"
	SectionDescription = "Description"
)

// Passage is one independently embedded unit of product text.
// Many passages may reference one ProductCard.
type Passage struct {
	// ID is unique across the index (e.g. "ABC123#desc-2").
	ID string

	// SKUID references the owning ProductCard.
	SKUID string

	// Section is the part of the card this text came from.
	Section string

	Text     string
	Metadata map[string]string
}

// StableSKU derives a product identity from its parts.
// Parts are trimmed, lowercased and joined with "|" before hashing.
func StableSKU(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha1.Sum([]byte(strings.Join(norm, "|"))) //nolint:gosec // identity hash
	return strings.ToUpper(hex.EncodeToString(sum[:])[:16])
}

var packSizePattern = regexp.MustCompile(`^\s*([\d.]+)\s*([a-zA-Z]+)\s*$`)

var unitAliases = map[string]string{
	"ltr":    UnitLitre,
	"ltrs":   UnitLitre,
	"litre":  UnitLitre,
	"liter":  UnitLitre,
	"litres": UnitLitre,
	"kgs":    UnitKilogram,
	"kilo":   UnitKilogram,
	"kilos":  UnitKilogram,
	"grams":  UnitGram,
	"gram":   UnitGram,
	"gm":     UnitGram,
	"gms":    UnitGram,
}

// ParsePackSize parses strings such as "1 kg", "500g" or "1 Litre".
// It returns nil when the value or unit cannot be recognised.
func ParsePackSize(raw string) *NetQuantity {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	m := packSizePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	unit := NormaliseUnit(m[2])
	if !IsValidUnit(unit) {
		return nil
	}
	return &NetQuantity{Value: val, Unit: unit}
}

// NormaliseUnit lowercases a unit and maps aliases such as "gms" or
// "litre" onto g, kg, ml or l. Unknown units are returned lowercased.
func NormaliseUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[unit]; ok {
		return alias
	}
	return unit
}

// IsValidUnit reports whether unit is one of g, kg, ml, l.
func IsValidUnit(unit string) bool {
	switch unit {
	case UnitGram, UnitKilogram, UnitMillilitre, UnitLitre:
		return true
	default:
		return false
	}
}

// Dietary tags inferred from product text.
const (
	TagVegetarian  = "vegetarian"
	TagHighProtein = "high-protein"
	TagHighFiber   = "high-fiber"
	TagGlutenFree  = "gluten-free"
)

// InferDietaryTags merges existing tags with tags inferred from the
// card's title, description and claims. Every product is vegetarian.
func InferDietaryTags(c *ProductCard) []string {
	tags := make(map[string]struct{})
	for _, t := range c.DietaryTags {
		tags[strings.ToLower(t)] = struct{}{}
	}

	blob := strings.ToLower(strings.Join(
		append([]string{c.Title, c.Description}, c.ClaimTexts()...), " "))

	if strings.Contains(blob, "protein") {
		tags[TagHighProtein] = struct{}{}
	}
	if strings.Contains(blob, "fiber") || strings.Contains(blob, "fibre") {
		tags[TagHighFiber] = struct{}{}
	}
	if strings.Contains(blob, "gluten free") || strings.Contains(blob, "gluten-free") {
		tags[TagGlutenFree] = struct{}{}
	}
	tags[TagVegetarian] = struct{}{}

	out := make([]string, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
