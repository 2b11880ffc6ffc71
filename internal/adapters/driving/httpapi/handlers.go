package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Message string `json:"message"`
}

// AskResponse is the reply to POST /v1/ask.
type AskResponse struct {
	Reply string       `json:"reply"`
	Kind  string       `json:"kind"`
	Hits  []domain.Hit `json:"hits,omitempty"`
}

// HealthResponse is the reply to GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Cards    int    `json:"cards"`
	Passages int    `json:"passages"`
	Reranker bool   `json:"reranker"`
}

// ProductResponse is the JSON view of a product card.
type ProductResponse struct {
	SKUID       string   `json:"sku_id"`
	Brand       string   `json:"brand"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Pack        string   `json:"pack,omitempty"`
	MRP         *float64 `json:"mrp,omitempty"`
	Link        string   `json:"link,omitempty"`
	Description string   `json:"description,omitempty"`
	Claims      []string `json:"claims,omitempty"`
	DietaryTags []string `json:"dietary_tags,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if s.ports.RerankerAvailable != nil {
		resp.Reranker = s.ports.RerankerAvailable()
	}
	if s.ports.Catalog != nil {
		stats, err := s.ports.Catalog.Stats(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "catalog unavailable", err.Error())
			return
		}
		resp.Cards = stats.Cards
		resp.Passages = stats.Passages
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := s.ports.Search.Search(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if result.Hits == nil {
		result.Hits = []domain.Hit{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if s.ports.Compare == nil {
		writeError(w, http.StatusServiceUnavailable, "capability unavailable", "comparison is not configured")
		return
	}

	q := r.URL.Query()
	a, b := strings.TrimSpace(q.Get("a")), strings.TrimSpace(q.Get("b"))

	var (
		cmp *domain.Comparison
		err error
	)
	switch {
	case a != "" || b != "":
		if a == "" || b == "" {
			writeError(w, http.StatusBadRequest, "invalid request", "both a and b are required")
			return
		}
		cmp, err = s.ports.Compare.CompareTargets(r.Context(), [2]string{a, b})
	case strings.TrimSpace(q.Get("q")) != "":
		cmp, err = s.ports.Compare.Compare(r.Context(), q.Get("q"))
	default:
		writeError(w, http.StatusBadRequest, "invalid request", "q or a and b are required")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.ports.Assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "capability unavailable", "assistant is not configured")
		return
	}

	var body AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "body must be JSON with a message field")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "invalid request", "message is required")
		return
	}

	answer, err := s.ports.Assistant.Ask(r.Context(), body.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{
		Reply: answer.Text,
		Kind:  string(answer.Kind),
		Hits:  answer.Hits,
	})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	if s.ports.Catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "capability unavailable", "catalog is not configured")
		return
	}

	card, err := s.ports.Catalog.Product(r.Context(), chi.URLParam(r, "skuId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := ProductResponse{
		SKUID:       card.SKUID,
		Brand:       card.Brand,
		Title:       card.Title,
		Category:    card.Category,
		MRP:         card.MRP,
		Link:        card.Link,
		Description: card.Description,
		Claims:      card.ClaimTexts(),
		DietaryTags: card.DietaryTags,
	}
	if card.NetQuantity != nil {
		resp.Pack = card.NetQuantity.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseSearchRequest validates query parameters. Explicit values outside
// the accepted ranges are rejected rather than clamped.
func parseSearchRequest(q url.Values) (domain.SearchRequest, error) {
	req := domain.SearchRequest{
		Query:         strings.TrimSpace(q.Get("q")),
		DistinctBySKU: true,
		CEModel:       q.Get("ce_model"),
	}
	if req.Query == "" {
		return req, errors.New("q is required")
	}

	var err error
	if req.K, err = intParam(q, "k", domain.MinK, domain.MaxK); err != nil {
		return req, err
	}
	if req.CEK, err = intParam(q, "ce_k", domain.MinCEK, domain.MaxCEK); err != nil {
		return req, err
	}
	if req.MaxPrice, err = floatParam(q, "max_price"); err != nil {
		return req, err
	}
	if req.WeightValue, err = floatParam(q, "weight_value"); err != nil {
		return req, err
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		req.Category = &v
	}
	if v := q.Get("weight_unit"); v != "" {
		unit := domain.NormaliseUnit(v)
		if !domain.IsValidUnit(unit) {
			return req, errors.New("weight_unit must be one of g, kg, ml, l")
		}
		req.WeightUnit = &unit
	}
	if req.DistinctBySKU, err = boolParam(q, "distinct_by_sku", true); err != nil {
		return req, err
	}
	if req.Explain, err = boolParam(q, "explain", false); err != nil {
		return req, err
	}
	if req.SkipNumericFilters, err = boolParam(q, "skip_numeric_filters", false); err != nil {
		return req, err
	}

	if v := q.Get("sort"); v != "" {
		req.Sort = domain.SortMode(v)
		if !req.Sort.IsValid() {
			return req, errors.New("sort must be relevance, price_asc, price_desc or title_asc")
		}
	}
	switch v := q.Get("ranker"); v {
	case "", "relevance", string(domain.RankerNone):
		req.Ranker = domain.RankerNone
	case string(domain.RankerCrossEncoder):
		req.Ranker = domain.RankerCrossEncoder
	default:
		return req, errors.New("ranker must be relevance or cross_encoder")
	}
	return req, nil
}

func intParam(q url.Values, name string, lo, hi int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}

func floatParam(q url.Values, name string) (*float64, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number", name)
	}
	return &f, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s must be true or false", name)
	}
	return b, nil
}
