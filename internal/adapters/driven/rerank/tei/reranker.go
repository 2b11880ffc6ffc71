// Package tei provides a cross-encoder re-ranker backed by a
// text-embeddings-inference compatible /rerank endpoint.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// DefaultTimeout bounds one scoring call.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the TEI re-ranker.
type Config struct {
	// BaseURL is the server base URL (required).
	BaseURL string

	// Model is reported by ModelName. The server decides what it actually runs.
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores (query, text) pairs against a remote cross-encoder.
type Reranker struct {
	client  *http.Client
	baseURL string
	model   string
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
	Truncate  bool     `json:"truncate"`
}

type rerankScore struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// NewReranker creates a new TEI re-ranker.
func NewReranker(cfg Config) (*Reranker, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("tei: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Reranker{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}, nil
}

// Score returns one relevance score per text, in input order.
func (r *Reranker) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("tei: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tei: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tei: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tei: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("tei: status %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("tei: status %d: %s", resp.StatusCode, string(raw))
	}

	var scored []rerankScore
	if err := json.Unmarshal(raw, &scored); err != nil {
		return nil, fmt.Errorf("tei: decode response: %w", err)
	}
	if len(scored) != len(texts) {
		return nil, fmt.Errorf("tei: %d scores for %d texts", len(scored), len(texts))
	}

	out := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(texts) || seen[s.Index] {
			return nil, fmt.Errorf("tei: bad score index %d", s.Index)
		}
		seen[s.Index] = true
		out[s.Index] = s.Score
	}
	return out, nil
}

// ModelName returns the configured model name.
func (r *Reranker) ModelName() string {
	return r.model
}

// Ping checks the /health endpoint.
func (r *Reranker) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("tei: failed to create ping request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("tei: ping failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tei: health returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
