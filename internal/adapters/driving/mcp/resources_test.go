package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

func TestExtractSuffix(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		prefix   string
		expected string
	}{
		{
			name:     "valid product URI",
			uri:      "sampann://products/ABC123",
			prefix:   "sampann://products/",
			expected: "ABC123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://products/ABC123",
			prefix:   "sampann://products/",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "sampann://products/ABC123/extra",
			prefix:   "sampann://products/",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			prefix:   "sampann://products/",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSuffix(tt.uri, tt.prefix)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func testCatalog() *mockCatalogService {
	return &mockCatalogService{
		cards: []domain.ProductCard{{
			SKUID:       "A1",
			Title:       "Tata Sampann Chana Dal",
			Category:    "Ready to Cook",
			NetQuantity: &domain.NetQuantity{Value: 500, Unit: "g"},
			MRP:         ptrFloat(95),
		}},
		stats: &domain.CatalogStats{Cards: 1, Passages: 3, Categories: map[string]int{"Ready to Cook": 1}},
	}
}

func TestServer_handleCatalogResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Catalog: testCatalog()})

		result, err := server.handleCatalogResource(ctx, makeReadResourceRequest("sampann://catalog"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"passages": 3`)
		assert.Contains(t, result.Contents[0].Text, `"Ready to Cook": 1`)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Catalog: &mockCatalogService{err: errors.New("db closed")}})

		_, err := server.handleCatalogResource(ctx, makeReadResourceRequest("sampann://catalog"))

		assert.ErrorContains(t, err, "reading catalog stats")
	})
}

func TestServer_handleCategoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("unescapes category", func(t *testing.T) {
		catalog := testCatalog()
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Catalog: catalog})

		result, err := server.handleCategoryResource(ctx, makeReadResourceRequest("sampann://categories/Ready%20to%20Cook"))

		require.NoError(t, err)
		assert.Equal(t, "Ready to Cook", catalog.lastCategory)
		assert.Contains(t, result.Contents[0].Text, `"pack": "500 g"`)
		assert.Contains(t, result.Contents[0].Text, `"sku_id": "A1"`)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Catalog: testCatalog()})

		_, err := server.handleCategoryResource(ctx, makeReadResourceRequest("sampann://categories/"))

		require.Error(t, err)
	})
}

func TestServer_handleProductResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns card", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Catalog: testCatalog()})

		result, err := server.handleProductResource(ctx, makeReadResourceRequest("sampann://products/A1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "Tata Sampann Chana Dal")
	})

	t.Run("unknown sku returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Catalog: testCatalog()})

		_, err := server.handleProductResource(ctx, makeReadResourceRequest("sampann://products/ZZ"))

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Catalog: &mockCatalogService{err: errors.New("timeout")}})

		_, err := server.handleProductResource(ctx, makeReadResourceRequest("sampann://products/A1"))

		assert.ErrorContains(t, err, "getting product")
	})
}
