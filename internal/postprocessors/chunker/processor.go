// Package chunker provides a fixed-size description chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 600

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 80

// DefaultThreshold is the description length above which chunking starts.
const DefaultThreshold = 700

// emptyDescription stands in for a missing description so every card
// has a description passage.
const emptyDescription = "No description provided."

// Processor splits a card's description into fixed-size passages.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	threshold int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithThreshold sets the length a description must exceed to be chunked.
func WithThreshold(threshold int) Option {
	return func(p *Processor) {
		if threshold > 0 {
			p.threshold = threshold
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		threshold: DefaultThreshold,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process appends one passage per description chunk to passages.
// Descriptions no longer than the threshold become a single passage.
func (p *Processor) Process(
	_ context.Context, card *domain.ProductCard, passages []domain.Passage,
) ([]domain.Passage, error) {
	if card == nil {
		return nil, fmt.Errorf("card is nil")
	}

	desc := strings.Join(strings.Fields(card.Description), " ")

	var chunks []string
	switch {
	case desc == "":
		chunks = []string{emptyDescription}
	case len([]rune(desc)) > p.threshold:
		chunks = p.Split(desc)
	default:
		chunks = []string{desc}
	}

	for i, chunk := range chunks {
		part := i + 1
		passages = append(passages, domain.Passage{
			ID:      fmt.Sprintf("%s#desc-%d", card.SKUID, part),
			SKUID:   card.SKUID,
			Section: domain.SectionDescription,
			Text:    card.Title + ": " + chunk,
			Metadata: map[string]string{
				"category":   card.Category,
				"desc_part":  strconv.Itoa(part),
				"desc_total": strconv.Itoa(len(chunks)),
			},
		})
	}
	return passages, nil
}

// Split cuts text into chunkSize-rune windows advancing by
// chunkSize-overlap. Whitespace is collapsed first.
func (p *Processor) Split(text string) []string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) == 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	if step < 1 {
		step = 1
	}

	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
