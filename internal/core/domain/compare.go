package domain

// Offer is the best product found for one comparison target.
type Offer struct {
	// Target is the product phrase as the user wrote it.
	Target string `json:"target"`

	// Hit is the selected product.
	Hit Hit `json:"best_hit"`

	// UnitPricePerKg is the price per kilogram; nil for volume or unknown packs.
	UnitPricePerKg *float64 `json:"unit_price_per_kg,omitempty"`

	// Matches is the number of hits that satisfied the target.
	Matches int `json:"matches"`
}

// Comparison is the result of a two-product comparison.
type Comparison struct {
	Offers []Offer `json:"offers"`
}
