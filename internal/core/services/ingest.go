package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of passages embedded per request.
const DefaultEmbedBatchSize = 32

// Catalog CSV columns. Brand is optional and defaults to DefaultBrand.
const (
	colTitle       = "product name"
	colCategory    = "category"
	colWeight      = "weight"
	colUSP         = "usp"
	colPrice       = "price"
	colLink        = "link"
	colDescription = "description"
	colBrand       = "brand"
)

// ProgressFunc reports embedded passages out of the total.
type ProgressFunc func(done, total int)

// IngestService loads a product catalog into the card store and passage index.
type IngestService struct {
	cards     driven.CardStore
	index     driven.PassageIndex
	embedder  driven.EmbeddingService
	pipeline  driven.PostProcessorPipeline
	batchSize int
	progress  ProgressFunc
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProgress sets a callback invoked after every embedded batch.
func WithProgress(fn ProgressFunc) IngestOption {
	return func(s *IngestService) {
		s.progress = fn
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	cards driven.CardStore,
	index driven.PassageIndex,
	embedder driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		cards:     cards,
		index:     index,
		embedder:  embedder,
		pipeline:  pipeline,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestFile reads a catalog CSV from disk.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.IngestStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return s.Ingest(ctx, f)
}

// Ingest reads a catalog CSV, stores its cards and indexes their passages.
// Cards are saved before any passage is indexed so no passage is ever
// visible without its card. Rows without a title or category are skipped.
func (s *IngestService) Ingest(ctx context.Context, r io.Reader) (*domain.IngestStats, error) {
	logger.Section("Ingest")
	if s.cards == nil || s.index == nil || s.embedder == nil || s.pipeline == nil {
		return nil, fmt.Errorf("%w: ingestion is not configured", domain.ErrCapabilityUnavailable)
	}

	cards, skipped, err := ParseCatalog(r)
	if err != nil {
		return nil, err
	}
	stats := &domain.IngestStats{Cards: len(cards), Skipped: skipped}
	if len(cards) == 0 {
		logger.Warn("Catalog has no usable rows (%d skipped)", skipped)
		return stats, nil
	}

	var passages []domain.Passage
	for i := range cards {
		ps, err := s.pipeline.Process(ctx, &cards[i])
		if err != nil {
			return nil, fmt.Errorf("build passages for %s: %w", cards[i].SKUID, err)
		}
		passages = append(passages, ps...)
	}
	stats.Passages = len(passages)

	if err := s.cards.SaveCards(ctx, cards); err != nil {
		return nil, fmt.Errorf("save cards: %w", err)
	}

	for start := 0; start < len(passages); start += s.batchSize {
		end := start + s.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}

		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: embed passages: %w", domain.ErrUpstreamFailure, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%w: embedder returned %d vectors for %d passages",
				domain.ErrUpstreamFailure, len(vecs), len(batch))
		}
		if err := s.index.Upsert(ctx, batch, vecs); err != nil {
			return nil, fmt.Errorf("index passages: %w", err)
		}
		if s.progress != nil {
			s.progress(end, len(passages))
		}
	}

	logger.Info("Ingested %d cards, %d passages, skipped %d rows", stats.Cards, stats.Passages, stats.Skipped)
	return stats, nil
}

// ParseCatalog reads catalog rows into cards. Later rows with the same SKU
// replace earlier ones. It returns the cards in first-seen order and the
// number of rows skipped as invalid.
func ParseCatalog(r io.Reader) ([]domain.ProductCard, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read catalog header: %w", domain.ErrInvalidInput, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colTitle]; !ok {
		return nil, 0, fmt.Errorf("%w: catalog has no %q column", domain.ErrInvalidInput, "Product Name")
	}

	var cards []domain.ProductCard
	index := make(map[string]int)
	skipped, line := 0, 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, 0, fmt.Errorf("%w: catalog line %d: %w", domain.ErrInvalidInput, line, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		card, ok := buildCard(field)
		if !ok {
			logger.Debug("Skipping catalog line %d", line)
			skipped++
			continue
		}
		if i, dup := index[card.SKUID]; dup {
			cards[i] = card
			continue
		}
		index[card.SKUID] = len(cards)
		cards = append(cards, card)
	}
	return cards, skipped, nil
}

// buildCard maps one catalog row onto a card. Rows without a title or
// category are rejected.
func buildCard(field func(string) string) (domain.ProductCard, bool) {
	title := field(colTitle)
	category := field(colCategory)
	if title == "" || category == "" {
		return domain.ProductCard{}, false
	}

	brand := field(colBrand)
	if brand == "" {
		brand = domain.DefaultBrand
	}
	weight := field(colWeight)

	card := domain.ProductCard{
		SKUID:       domain.StableSKU(brand, title, weight),
		Brand:       brand,
		Title:       title,
		Category:    category,
		NetQuantity: domain.ParsePackSize(weight),
		Link:        field(colLink),
		Description: field(colDescription),
	}

	if price, ok := parsePrice(field(colPrice)); ok {
		card.MRP = &price
	}

	for _, c := range strings.Split(field(colUSP), ",") {
		if c = strings.TrimSpace(c); c != "" {
			card.Claims = append(card.Claims, domain.Claim{Text: c, Source: "catalog"})
		}
	}

	card.DietaryTags = domain.InferDietaryTags(&card)
	return card, true
}

// parsePrice reads catalog prices such as "250", "₹ 250" or "Rs. 1,250".
func parsePrice(raw string) (float64, bool) {
	v := strings.TrimSpace(raw)
	lower := strings.ToLower(v)
	for _, prefix := range []string{"₹", "rs.", "rs", "inr"} {
		if strings.HasPrefix(lower, prefix) {
			v = v[len(prefix):]
			break
		}
	}
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	price, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
