package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockCardStore implements driven.CardStore for testing.
type mockCardStore struct {
	mu      sync.Mutex
	cards   map[string]domain.ProductCard
	getErr  error
	saveErr error
	gets    int
}

func newMockCardStore(cards ...domain.ProductCard) *mockCardStore {
	m := &mockCardStore{cards: make(map[string]domain.ProductCard)}
	for _, c := range cards {
		m.cards[c.SKUID] = c
	}
	return m
}

func (m *mockCardStore) SaveCards(_ context.Context, cards []domain.ProductCard) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cards {
		m.cards[c.SKUID] = c
	}
	return nil
}

func (m *mockCardStore) GetCard(_ context.Context, skuID string) (*domain.ProductCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.cards[skuID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockCardStore) ListCards(_ context.Context) ([]domain.ProductCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ProductCard, 0, len(m.cards))
	for _, c := range m.cards {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCardStore) CountCards(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cards), nil
}

// mockPassageIndex implements driven.PassageIndex for testing.
// Search ignores the vector and returns the preset matches in order.
type mockPassageIndex struct {
	matches   []driven.PassageMatch
	searchErr error
	upsertErr error

	searches   int
	lastK      int
	lastFilter driven.PassageFilter
	upserted   []domain.Passage
}

func (m *mockPassageIndex) Upsert(_ context.Context, passages []domain.Passage, embeddings [][]float32) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if len(passages) != len(embeddings) {
		return errors.New("length mismatch")
	}
	m.upserted = append(m.upserted, passages...)
	return nil
}

func (m *mockPassageIndex) Search(
	_ context.Context, _ []float32, k int, filter driven.PassageFilter,
) ([]driven.PassageMatch, error) {
	m.searches++
	m.lastK = k
	m.lastFilter = filter
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.matches) {
		return m.matches[:k], nil
	}
	return m.matches, nil
}

func (m *mockPassageIndex) Count(_ context.Context) (int, error) {
	return len(m.upserted), nil
}

func (m *mockPassageIndex) Close() error {
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	batchLen  int // overrides the number of returned vectors when > 0

	lastText string
	batches  int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.lastText = text
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.embedding == nil {
		return []float32{1, 0, 0}, nil
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	n := len(texts)
	if m.batchLen > 0 {
		n = m.batchLen
	}
	result := make([][]float32, n)
	for i := range result {
		result[i] = []float32{1, 0, 0}
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockReranker implements driven.Reranker for testing.
// Texts found in scores get that score; others score zero.
type mockReranker struct {
	scores   map[string]float64
	scoreErr error
	short    bool // return one score fewer than requested

	calls     int
	lastQuery string
	lastTexts []string
	closes    atomic.Int32
}

func (m *mockReranker) Score(_ context.Context, query string, texts []string) ([]float64, error) {
	m.calls++
	m.lastQuery = query
	m.lastTexts = texts
	if m.scoreErr != nil {
		return nil, m.scoreErr
	}
	out := make([]float64, len(texts))
	for i, t := range texts {
		out[i] = m.scores[t]
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockReranker) ModelName() string {
	return domain.DefaultCEModel
}

func (m *mockReranker) Ping(_ context.Context) error {
	return nil
}

func (m *mockReranker) Close() error {
	m.closes.Add(1)
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	reply   string
	chatErr error

	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages = messages
	m.opts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockSearchService implements driving.SearchService for testing.
// Results are keyed by request query; unknown queries return no hits.
type mockSearchService struct {
	results   map[string][]domain.Hit
	searchErr error

	requests []domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.requests = append(m.requests, req)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return &domain.SearchResult{Hits: m.results[req.Query]}, nil
}

// mockCompareService implements driving.CompareService for testing.
type mockCompareService struct {
	result *domain.Comparison
	err    error
	calls  int
}

func (m *mockCompareService) Compare(_ context.Context, _ string) (*domain.Comparison, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockCompareService) CompareTargets(_ context.Context, _ [2]string) (*domain.Comparison, error) {
	m.calls++
	return m.result, m.err
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	err   error
	calls []string
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	m.calls = append(m.calls, "embedding")
	return m.err
}

func (m *mockAIValidator) ValidateReranker(_ *domain.RerankerSettings) error {
	m.calls = append(m.calls, "reranker")
	return m.err
}

func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.calls = append(m.calls, "llm")
	return m.err
}

// --- Fixtures ---

func ptrFloat(v float64) *float64 { return &v }

func ptrString(v string) *string { return &v }

func testCard(sku, title, category string, price *float64, qty *domain.NetQuantity) domain.ProductCard {
	return domain.ProductCard{
		SKUID:       sku,
		Brand:       domain.DefaultBrand,
		Title:       title,
		Category:    category,
		NetQuantity: qty,
		MRP:         price,
		Link:        "https://example.com/" + sku,
	}
}

func match(sku, section, text string, distance float64) driven.PassageMatch {
	return driven.PassageMatch{
		Passage: domain.Passage{
			ID:      sku + "#" + section,
			SKUID:   sku,
			Section: section,
			Text:    text,
		},
		Distance: distance,
	}
}

func hit(sku, title string, price *float64, weight *domain.Weight, score float64) domain.Hit {
	return domain.Hit{
		SKUID:  sku,
		Title:  title,
		Price:  price,
		Weight: weight,
		Score:  score,
	}
}

func grams(v float64) *domain.NetQuantity { return &domain.NetQuantity{Value: v, Unit: "g"} }

func kilos(v float64) *domain.NetQuantity { return &domain.NetQuantity{Value: v, Unit: "kg"} }
