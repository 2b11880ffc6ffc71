package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReranker(t *testing.T, handler http.HandlerFunc) *Reranker {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	r, err := NewReranker(Config{BaseURL: server.URL + "/", Model: "cross-encoder/ms-marco-MiniLM-L-6-v2"})
	require.NoError(t, err)
	return r
}

func TestNewReranker(t *testing.T) {
	_, err := NewReranker(Config{})
	assert.Error(t, err)
}

func TestReranker_Score_RestoresInputOrder(t *testing.T) {
	var got rerankRequest
	r := newTestReranker(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/rerank", req.URL.Path)
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"index":2,"score":0.9},{"index":0,"score":0.4},{"index":1,"score":0.1}]`))
	})

	scores, err := r.Score(context.Background(), "besan", []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0.1, 0.9}, scores)
	assert.Equal(t, "besan", got.Query)
	assert.Equal(t, []string{"a", "b", "c"}, got.Texts)
	assert.True(t, got.Truncate)
}

func TestReranker_Score_Empty(t *testing.T) {
	r := newTestReranker(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	scores, err := r.Score(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestReranker_Score_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error json", http.StatusRequestEntityTooLarge, `{"error":"batch too large","error_type":"Validation"}`, "batch too large"},
		{"server error text", http.StatusBadGateway, `bad gateway`, "status 502"},
		{"count mismatch", http.StatusOK, `[{"index":0,"score":1}]`, "1 scores for 2 texts"},
		{"duplicate index", http.StatusOK, `[{"index":0,"score":1},{"index":0,"score":2}]`, "bad score index"},
		{"index out of range", http.StatusOK, `[{"index":0,"score":1},{"index":5,"score":2}]`, "bad score index"},
		{"not json", http.StatusOK, `nope`, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := r.Score(context.Background(), "q", []string{"a", "b"})

			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestReranker_Ping(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	r := newTestReranker(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/health", req.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	assert.NoError(t, r.Ping(context.Background()))
	healthy.Store(false)
	assert.ErrorContains(t, r.Ping(context.Background()), "503")
	assert.Equal(t, "cross-encoder/ms-marco-MiniLM-L-6-v2", r.ModelName())
	assert.NoError(t, r.Close())
}
