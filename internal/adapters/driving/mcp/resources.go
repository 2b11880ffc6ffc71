package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for catalog resources.
	uriScheme = "sampann://"
)

// registerResources registers all resource handlers with the MCP server.
// Resources need the catalog port; without it none are registered.
func (s *Server) registerResources() {
	if s.ports.Catalog == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "catalog",
		Name:        "catalog",
		Description: "Indexed card and passage counts, with cards per category",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "categories/{category}",
		Name:        "category-products",
		Description: "Products in one catalog category",
		MIMEType:    "application/json",
	}, s.handleCategoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "products/{skuId}",
		Name:        "product-card",
		Description: "Full product card for one SKU",
		MIMEType:    "application/json",
	}, s.handleProductResource)
}

// handleCatalogResource returns catalog statistics.
func (s *Server) handleCatalogResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Catalog.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleCategoryResource lists products in a category.
func (s *Server) handleCategoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	category, err := url.PathUnescape(extractSuffix(req.Params.URI, uriScheme+"categories/"))
	if err != nil || category == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	cards, err := s.ports.Catalog.Products(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	type productInfo struct {
		SKUID string   `json:"sku_id"`
		Title string   `json:"title"`
		Pack  string   `json:"pack,omitempty"`
		Price *float64 `json:"price,omitempty"`
	}

	infos := make([]productInfo, len(cards))
	for i := range cards {
		infos[i] = productInfo{
			SKUID: cards[i].SKUID,
			Title: cards[i].Title,
			Price: cards[i].MRP,
		}
		if cards[i].NetQuantity != nil {
			infos[i].Pack = cards[i].NetQuantity.String()
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleProductResource returns one product card.
func (s *Server) handleProductResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	skuID := extractSuffix(req.Params.URI, uriScheme+"products/")
	if skuID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	card, err := s.ports.Catalog.Product(ctx, skuID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return jsonResource(req.Params.URI, card)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSuffix returns the single path segment after prefix, or "" when
// uri does not have that shape.
func extractSuffix(uri, prefix string) string {
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(uri, prefix)
	if strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
