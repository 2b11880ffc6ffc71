package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// SearchInput is the input schema for the search_products tool.
type SearchInput struct {
	Query    string   `json:"query" jsonschema:"what the shopper is looking for, e.g. 'chana dal under 150'"`
	K        int      `json:"k,omitempty" jsonschema:"number of products to return (1-50, default 5)"`
	Category string   `json:"category,omitempty" jsonschema:"restrict to one catalog category"`
	MaxPrice *float64 `json:"max_price,omitempty" jsonschema:"maximum price in rupees"`
	Sort     string   `json:"sort,omitempty" jsonschema:"relevance, price_asc, price_desc or title_asc"`
	Rerank   bool     `json:"rerank,omitempty" jsonschema:"re-score candidates with the cross-encoder"`
}

// SearchOutput is the output schema for the search_products tool.
type SearchOutput struct {
	Results []ProductOutput `json:"results"`
	Count   int             `json:"count"`
}

// ProductOutput represents a single product hit.
type ProductOutput struct {
	SKUID    string   `json:"sku_id"`
	Title    string   `json:"title"`
	Category string   `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Pack     string   `json:"pack,omitempty"`
	Link     string   `json:"link,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	Score    float64  `json:"score"`
	CEScore  *float64 `json:"ce_score,omitempty"`
}

// CompareInput is the input schema for the compare_products tool.
type CompareInput struct {
	Query string `json:"query,omitempty" jsonschema:"free text naming two products, e.g. 'chia seeds vs flax seeds'"`
	A     string `json:"a,omitempty" jsonschema:"first product when naming targets explicitly"`
	B     string `json:"b,omitempty" jsonschema:"second product when naming targets explicitly"`
}

// CompareOutput is the output schema for the compare_products tool.
type CompareOutput struct {
	Offers []OfferOutput `json:"offers"`
}

// OfferOutput is the best product found for one target.
type OfferOutput struct {
	Target         string        `json:"target"`
	Best           ProductOutput `json:"best"`
	UnitPricePerKg *float64      `json:"unit_price_per_kg,omitempty"`
	Matches        int           `json:"matches"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Message string `json:"message" jsonschema:"the shopper's question"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Kind     string          `json:"kind"`
	Text     string          `json:"text"`
	Evidence []ProductOutput `json:"evidence,omitempty"`
}

// errToolUnavailable is returned when a tool's backing service is not wired.
var errToolUnavailable = errors.New("tool not available in this configuration")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_products",
		Description: "Search the Tata Sampann catalog. Understands prices ('under 200'), pack sizes ('1kg') and Hindi product names.",
	}, s.handleSearch)

	if s.ports.Compare != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "compare_products",
			Description: "Compare two products and return the best offer for each, with price per kg where known",
		}, s.handleCompare)
	}

	if s.ports.Assistant != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask a shopping question; answers are grounded in catalog products",
		}, s.handleAsk)
	}
}

// handleSearch handles the search_products tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req := domain.SearchRequest{
		Query:         input.Query,
		K:             input.K,
		MaxPrice:      input.MaxPrice,
		DistinctBySKU: true,
		Sort:          domain.SortMode(input.Sort),
	}
	if input.Category != "" {
		req.Category = &input.Category
	}
	if input.Rerank {
		req.Ranker = domain.RankerCrossEncoder
	}

	result, err := s.ports.Search.Search(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ProductOutput, len(result.Hits)),
		Count:   len(result.Hits),
	}
	for i := range result.Hits {
		output.Results[i] = productOutput(&result.Hits[i])
	}
	return nil, output, nil
}

// handleCompare handles the compare_products tool invocation.
func (s *Server) handleCompare(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompareInput,
) (*mcp.CallToolResult, CompareOutput, error) {
	if s.ports.Compare == nil {
		return nil, CompareOutput{}, errToolUnavailable
	}

	var (
		cmp *domain.Comparison
		err error
	)
	if input.A != "" || input.B != "" {
		cmp, err = s.ports.Compare.CompareTargets(ctx, [2]string{input.A, input.B})
	} else {
		cmp, err = s.ports.Compare.Compare(ctx, input.Query)
	}
	if err != nil {
		return nil, CompareOutput{}, err
	}

	output := CompareOutput{Offers: make([]OfferOutput, len(cmp.Offers))}
	for i, o := range cmp.Offers {
		output.Offers[i] = OfferOutput{
			Target:         o.Target,
			Best:           productOutput(&o.Hit),
			UnitPricePerKg: o.UnitPricePerKg,
			Matches:        o.Matches,
		}
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Assistant == nil {
		return nil, AskOutput{}, errToolUnavailable
	}

	answer, err := s.ports.Assistant.Ask(ctx, input.Message)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{Kind: string(answer.Kind), Text: answer.Text}
	for i := range answer.Hits {
		output.Evidence = append(output.Evidence, productOutput(&answer.Hits[i]))
	}
	return nil, output, nil
}

func productOutput(h *domain.Hit) ProductOutput {
	out := ProductOutput{
		SKUID:    h.SKUID,
		Title:    h.Title,
		Category: h.Category,
		Price:    h.Price,
		Link:     h.Link,
		Snippet:  h.Text,
		Score:    h.Score,
		CEScore:  h.CEScore,
	}
	if h.Weight != nil {
		out.Pack = domain.NetQuantity{Value: h.Weight.Value, Unit: h.Weight.Unit}.String()
	}
	return out
}
