package domain

import "strings"

// Request limits applied by the search pipeline.
const (
	DefaultK       = 5
	MinK           = 1
	MaxK           = 50
	DefaultCEK     = 30
	MinCEK         = 5
	MaxCEK         = 100
	DefaultCEModel = "cross-encoder/ms-marco-MiniLM-L-6-v2"
)

// SortMode selects the final ordering of hits.
type SortMode string

// Available sort modes.
const (
	// SortRelevance orders by the active ranking policy.
	SortRelevance SortMode = "relevance"

	// SortPriceAsc orders cheapest first; unpriced hits last.
	SortPriceAsc SortMode = "price_asc"

	// SortPriceDesc orders most expensive first; unpriced hits last.
	SortPriceDesc SortMode = "price_desc"

	// SortTitleAsc orders by lowercased title.
	SortTitleAsc SortMode = "title_asc"
)

// IsValid returns true if the sort mode is recognised.
func (m SortMode) IsValid() bool {
	switch m {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortTitleAsc:
		return true
	default:
		return false
	}
}

// Ranker selects the second-stage scorer.
type Ranker string

// Available rankers.
const (
	// RankerNone ranks by dense distance only.
	RankerNone Ranker = "none"

	// RankerCrossEncoder re-scores candidates with a pairwise relevance model.
	RankerCrossEncoder Ranker = "cross_encoder"
)

// IsValid returns true if the ranker is recognised.
func (r Ranker) IsValid() bool {
	return r == RankerNone || r == RankerCrossEncoder
}

// Weight is a pack size attached to a hit.
type Weight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// QueryFilters holds constraints extracted from a free-text query.
// Optional fields are nil when the query does not state them.
type QueryFilters struct {
	Category     *string
	MaxPrice     *float64
	WeightValue  *float64
	WeightUnit   *string
	CleanedQuery string
}

// HasNumeric reports whether a price or weight constraint is present.
func (f QueryFilters) HasNumeric() bool {
	return f.MaxPrice != nil || f.WeightValue != nil || f.WeightUnit != nil
}

// SearchRequest is the inbound search contract.
type SearchRequest struct {
	// Query is the raw user text.
	Query string

	// K is the number of hits to return after all stages.
	K int

	// Explicit constraints. When set they override values extracted from Query.
	Category    *string
	MaxPrice    *float64
	WeightValue *float64
	WeightUnit  *string

	// DistinctBySKU collapses passages of one product into a single hit.
	DistinctBySKU bool

	Sort    SortMode
	Ranker  Ranker
	CEModel string

	// CEK is the number of candidates handed to the re-ranker.
	CEK int

	// Explain attaches pipeline diagnostics to the result.
	Explain bool

	// SkipNumericFilters disables price and weight filtering.
	SkipNumericFilters bool
}

// Normalise clamps K and CEK into range and fills defaults.
func (r *SearchRequest) Normalise() {
	r.Query = strings.TrimSpace(r.Query)
	r.K = clamp(r.K, MinK, MaxK, DefaultK)
	r.CEK = clamp(r.CEK, MinCEK, MaxCEK, DefaultCEK)
	if !r.Sort.IsValid() {
		r.Sort = SortRelevance
	}
	if !r.Ranker.IsValid() {
		r.Ranker = RankerNone
	}
	if r.CEModel == "" {
		r.CEModel = DefaultCEModel
	}
}

func clamp(v, lo, hi, def int) int {
	switch {
	case v == 0:
		return def
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// Hit is a single ranked search result.
//
// Score and CEScore live on incomparable scales and are never merged:
// Score is a dense distance (lower is better), CEScore a re-ranker
// relevance (higher is better) and is nil when no re-ranker ran.
type Hit struct {
	SKUID    string   `json:"sku_id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	Weight   *Weight  `json:"weight"`
	Link     string   `json:"link"`
	Section  string   `json:"section"`
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
	CEScore  *float64 `json:"ce_score,omitempty"`
}

// ExplainFilters lists the constraints in effect at one stage.
type ExplainFilters struct {
	Category    *string  `json:"category"`
	MaxPrice    *float64 `json:"max_price"`
	WeightValue *float64 `json:"weight_value"`
	WeightUnit  *string  `json:"weight_unit"`
}

// Explain reports what each pipeline stage did for one request.
type Explain struct {
	RequestID     string         `json:"request_id"`
	OriginalQuery string         `json:"query_original"`
	CleanedQuery  string         `json:"query_cleaned"`
	ExpandedQuery string         `json:"query_expanded"`
	Inferred      ExplainFilters `json:"filters_inferred"`
	Applied       ExplainFilters `json:"filters_applied"`

	FetchK    int `json:"fetch_k"`
	Retrieved int `json:"retrieved"`
	Resolved  int `json:"resolved"`
	Filtered  int `json:"filtered"`
	Deduped   int `json:"deduped"`

	// FilterFallback is true when the numeric filters rejected every
	// candidate and the unfiltered set was used instead.
	FilterFallback bool `json:"filter_fallback"`

	Ranker        Ranker   `json:"ranker"`
	CEModel       string   `json:"ce_model,omitempty"`
	Sort          SortMode `json:"sort"`
	DistinctBySKU bool     `json:"distinct_by_sku"`
}

// ResultKind discriminates the shape of a SearchResult.
type ResultKind int

// Result kinds.
const (
	// ResultHits carries hits only.
	ResultHits ResultKind = iota

	// ResultHitsWithExplain carries hits plus an Explain block.
	ResultHitsWithExplain
)

// SearchResult is the outcome of a search: hits, optionally with diagnostics.
type SearchResult struct {
	Hits    []Hit    `json:"results"`
	Explain *Explain `json:"explain,omitempty"`
}

// Kind reports which shape this result has.
func (r *SearchResult) Kind() ResultKind {
	if r.Explain != nil {
		return ResultHitsWithExplain
	}
	return ResultHits
}
