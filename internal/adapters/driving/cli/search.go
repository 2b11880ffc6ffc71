package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

var (
	searchK         int
	searchCategory  string
	searchMaxPrice  float64
	searchWeight    string
	searchDistinct  bool
	searchSort      string
	searchRanker    string
	searchCEModel   string
	searchCEK       int
	searchExplain   bool
	searchNoNumeric bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the product catalog",
	Long: `Runs the hybrid product search pipeline.

Price and pack-size constraints are read from the query itself
("chana dal under 100 1kg") and may be overridden with flags. Hindi and
English product names are expanded as synonyms (kaju, cashew).

Examples:
  sampann search "kaju 200g"
  sampann search "dals under 150" --sort price_asc
  sampann search "healthy snacks" --ranker cross_encoder --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.IntVarP(&searchK, "k", "k", 0, "number of results (1-50, default from settings)")
	f.StringVar(&searchCategory, "category", "", "exact category, e.g. 'Dry Fruits'")
	f.Float64Var(&searchMaxPrice, "max-price", 0, "maximum price in rupees")
	f.StringVar(&searchWeight, "weight", "", "exact pack size, e.g. 500g or 1kg")
	f.BoolVar(&searchDistinct, "distinct", true, "return at most one result per product")
	f.StringVar(&searchSort, "sort", "", "relevance, price_asc, price_desc or title_asc")
	f.StringVar(&searchRanker, "ranker", "", "none or cross_encoder")
	f.StringVar(&searchCEModel, "ce-model", "", "cross-encoder model name")
	f.IntVar(&searchCEK, "ce-k", 0, "candidates to re-rank (5-100)")
	f.BoolVar(&searchExplain, "explain", false, "show what each pipeline stage did")
	f.BoolVar(&searchNoNumeric, "no-numeric-filters", false, "ignore price and pack-size constraints")
	f.BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured("search")
	}

	req, err := buildSearchRequest(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := searchService.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, result)
	}
	outputSearchTable(cmd, req.Query, result)
	return nil
}

// buildSearchRequest applies settings defaults, then explicit flags.
func buildSearchRequest(cmd *cobra.Command, query string) (domain.SearchRequest, error) {
	req := domain.SearchRequest{
		Query:              query,
		K:                  searchK,
		DistinctBySKU:      searchDistinct,
		Sort:               domain.SortMode(searchSort),
		Ranker:             domain.Ranker(searchRanker),
		CEModel:            searchCEModel,
		CEK:                searchCEK,
		Explain:            searchExplain,
		SkipNumericFilters: searchNoNumeric,
	}

	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			applySearchDefaults(&req, settings.Search)
		}
	}

	if req.Sort != "" && !req.Sort.IsValid() {
		return req, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidInput, searchSort)
	}
	if req.Ranker != "" && !req.Ranker.IsValid() {
		return req, fmt.Errorf("%w: unknown ranker %q", domain.ErrInvalidInput, searchRanker)
	}

	flags := cmd.Flags()
	if searchCategory != "" {
		category := searchCategory
		req.Category = &category
	}
	if flags.Changed("max-price") {
		price := searchMaxPrice
		req.MaxPrice = &price
	}
	if searchWeight != "" {
		qty := domain.ParsePackSize(searchWeight)
		if qty == nil {
			return req, fmt.Errorf("%w: cannot parse pack size %q", domain.ErrInvalidInput, searchWeight)
		}
		req.WeightValue = &qty.Value
		req.WeightUnit = &qty.Unit
	}
	return req, nil
}

func applySearchDefaults(req *domain.SearchRequest, s domain.SearchSettings) {
	if req.K == 0 {
		req.K = s.K
	}
	if req.CEK == 0 {
		req.CEK = s.CEK
	}
	if req.CEModel == "" {
		req.CEModel = s.CEModel
	}
	if req.Ranker == "" {
		req.Ranker = s.Ranker
	}
	if req.Sort == "" {
		req.Sort = s.Sort
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

var (
	titleStyle = color.New(color.Bold)
	priceStyle = color.New(color.FgGreen)
	dimStyle   = color.New(color.Faint)
	warnStyle  = color.New(color.FgYellow)
)

func outputSearchTable(cmd *cobra.Command, query string, result *domain.SearchResult) {
	if len(result.Hits) == 0 {
		cmd.Println("No products found.")
	} else {
		cmd.Printf("Results for %q:\n\n", query)
		for i := range result.Hits {
			printHit(cmd, i+1, &result.Hits[i])
		}
	}

	if result.Kind() == domain.ResultHitsWithExplain {
		printExplain(cmd, result.Explain)
	}
}

func printHit(cmd *cobra.Command, n int, h *domain.Hit) {
	cmd.Printf("  [%d] %s  %s", n, titleStyle.Sprint(h.Title), priceStyle.Sprint(formatPrice(h.Price)))
	if h.Weight != nil {
		cmd.Printf("  %s", domain.NetQuantity{Value: h.Weight.Value, Unit: h.Weight.Unit})
	}
	cmd.Println()

	meta := []string{h.Category, fmt.Sprintf("distance %.3f", h.Score)}
	if h.CEScore != nil {
		meta = append(meta, fmt.Sprintf("ce %.2f", *h.CEScore))
	}
	cmd.Printf("      %s\n", dimStyle.Sprint(strings.Join(meta, " · ")))
	if h.Link != "" {
		cmd.Printf("      %s\n", h.Link)
	}
	if h.Text != "" {
		cmd.Printf("      %s\n", truncate(h.Text, 160))
	}
	cmd.Println()
}

func printExplain(cmd *cobra.Command, e *domain.Explain) {
	cmd.Println("Explain:")
	cmd.Printf("  request:   %s\n", e.RequestID)
	cmd.Printf("  cleaned:   %q\n", e.CleanedQuery)
	cmd.Printf("  expanded:  %q\n", e.ExpandedQuery)
	cmd.Printf("  filters:   %s\n", describeFilters(e.Applied))
	cmd.Printf("  stages:    fetch %d, retrieved %d, resolved %d, filtered %d, deduped %d\n",
		e.FetchK, e.Retrieved, e.Resolved, e.Filtered, e.Deduped)
	cmd.Printf("  ranker:    %s", e.Ranker)
	if e.CEModel != "" {
		cmd.Printf(" (%s)", e.CEModel)
	}
	cmd.Println()
	cmd.Printf("  sort:      %s\n", e.Sort)
	if e.FilterFallback {
		cmd.Println("  " + warnStyle.Sprint("numeric filters matched nothing; showing unfiltered results"))
	}
}

func describeFilters(f domain.ExplainFilters) string {
	var parts []string
	if f.Category != nil {
		parts = append(parts, "category="+*f.Category)
	}
	if f.MaxPrice != nil {
		parts = append(parts, "max_price="+formatPrice(f.MaxPrice))
	}
	if f.WeightValue != nil || f.WeightUnit != nil {
		w := "weight="
		if f.WeightValue != nil {
			w += fmt.Sprintf("%g", *f.WeightValue)
		}
		if f.WeightUnit != nil {
			w += *f.WeightUnit
		}
		parts = append(parts, w)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func formatPrice(p *float64) string {
	if p == nil {
		return "price n/a"
	}
	return fmt.Sprintf("₹%.2f", *p)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
