package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// Assistant retrieval defaults.
const (
	assistantK        = 8
	assistantCEK      = 40
	snippetMaxRunes   = 400
	assistantMaxToken = 512
)

// Canned replies.
const (
	GreetingReply = "Hello! How can I assist you with Tata Sampann products today?"

	NoEvidenceReply = "I'd be happy to help! For accurate pricing, please let me know the product and " +
		"pack size - for example, 'Sugar 5 kg' or 'Rice 10 kg'."

	AmbiguousComparisonReply = "Which two products would you like me to compare? " +
		"For example, 'compare chia seeds vs kalmi dates'."

	InsufficientComparisonReply = "I don't have enough catalog data to compare those products. " +
		"Could you name them as they appear on the pack?"
)

// defaultSystemPrompt is the fallback prompt when no PromptStore is configured.
const defaultSystemPrompt = `You are the {brand} product assistant. Today is {today}.
Answer only from the product context you are given. Never invent prices, pack sizes or links.
If the context does not contain the answer, say you don't have enough information.`

// defaultTurnPrompt is the fallback user turn when no PromptStore is configured.
const defaultTurnPrompt = `User question:
{question}

Context (use for answering; do not fabricate; cite with [#] by index when referring to products):
{context}

Instructions:
- Answer only from the context above.
- If the answer is not present, say you don't have enough information.
- When listing products, include name, pack size, price, and link; add [#] citation.
- Be concise and helpful.`

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptAssistantSystem: defaultSystemPrompt,
		driven.PromptAssistantTurn:   defaultTurnPrompt,
	}
}

// AssistantConfig holds the assistant's retrieval and generation settings.
type AssistantConfig struct {
	// Brand is substituted into the system prompt.
	Brand string

	// UseReranker requests cross-encoder ranking. It must only be set when
	// a re-ranker is provisioned.
	UseReranker bool
	CEModel     string

	Temperature float64

	// BrowseMaxDistance is the grounding cutoff for browse questions.
	BrowseMaxDistance float64
}

// AssistantService answers shopper questions from grounded catalog evidence.
type AssistantService struct {
	search      driving.SearchService
	compare     driving.CompareService
	llm         driven.LLMService
	promptStore driven.PromptStore
	grounder    Grounder
	cfg         AssistantConfig
	now         func() time.Time
}

// NewAssistantService creates a new assistant.
// The llm parameter is optional (can be nil); answers are then a
// deterministic listing of the grounded evidence.
func NewAssistantService(
	search driving.SearchService,
	compare driving.CompareService,
	llm driven.LLMService,
	cfg AssistantConfig,
) *AssistantService {
	if cfg.Brand == "" {
		cfg.Brand = domain.DefaultBrand
	}
	return &AssistantService{
		search:   search,
		compare:  compare,
		llm:      llm,
		grounder: Grounder{BrowseMaxDistance: cfg.BrowseMaxDistance},
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *AssistantService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ask answers one message. Greetings get a canned reply without retrieval;
// comparison questions are delegated; everything else is retrieved,
// grounded and then synthesised or listed.
func (s *AssistantService) Ask(ctx context.Context, message string) (*domain.Answer, error) {
	logger.Section("Assistant")
	msg := strings.TrimSpace(message)
	intent := DetectIntent(msg)
	logger.Debug("Intent: compare=%t browse=%t smalltalk=%t", intent.Compare, intent.Browse, intent.Smalltalk)

	if intent.Smalltalk {
		return &domain.Answer{Kind: domain.AnswerSmalltalk, Text: GreetingReply}, nil
	}

	if intent.Compare && s.compare != nil {
		return s.answerComparison(ctx, msg)
	}

	req := domain.SearchRequest{
		Query:         msg,
		K:             assistantK,
		DistinctBySKU: true,
		Sort:          domain.SortRelevance,
		Ranker:        domain.RankerNone,
	}
	if s.cfg.UseReranker {
		req.Ranker = domain.RankerCrossEncoder
		req.CEModel = s.cfg.CEModel
		req.CEK = assistantCEK
	}

	res, err := s.search.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits, err := s.grounder.Ground(msg, res.Hits, intent.Browse)
	if errors.Is(err, domain.ErrNoEvidence) {
		logger.Info("No grounded evidence among %d hits", len(res.Hits))
		return &domain.Answer{Kind: domain.AnswerClarification, Text: NoEvidenceReply}, nil
	}
	if err != nil {
		return nil, err
	}

	if s.llm == nil {
		return &domain.Answer{Kind: domain.AnswerListing, Text: RenderListing(hits), Hits: hits}, nil
	}

	reply, err := s.synthesise(ctx, msg, hits)
	if err != nil {
		return nil, err
	}
	return &domain.Answer{Kind: domain.AnswerGrounded, Text: reply, Hits: hits}, nil
}

func (s *AssistantService) answerComparison(ctx context.Context, msg string) (*domain.Answer, error) {
	cmp, err := s.compare.Compare(ctx, msg)
	switch {
	case errors.Is(err, domain.ErrAmbiguousComparison):
		return &domain.Answer{Kind: domain.AnswerClarification, Text: AmbiguousComparisonReply}, nil
	case errors.Is(err, domain.ErrInsufficientData):
		logger.Info("Comparison lacks data: %v", err)
		return &domain.Answer{Kind: domain.AnswerClarification, Text: InsufficientComparisonReply}, nil
	case err != nil:
		return nil, err
	}

	hits := make([]domain.Hit, 0, len(cmp.Offers))
	for _, o := range cmp.Offers {
		hits = append(hits, o.Hit)
	}
	return &domain.Answer{Kind: domain.AnswerComparison, Text: RenderComparison(cmp), Hits: hits}, nil
}

func (s *AssistantService) synthesise(ctx context.Context, question string, hits []domain.Hit) (string, error) {
	system := strings.NewReplacer(
		"{brand}", s.cfg.Brand,
		"{today}", s.now().Format("2006-01-02"),
	).Replace(s.loadPrompt(driven.PromptAssistantSystem, defaultSystemPrompt))

	turn := strings.NewReplacer(
		"{question}", question,
		"{context}", BuildContextBlock(hits),
	).Replace(s.loadPrompt(driven.PromptAssistantTurn, defaultTurnPrompt))

	done := logger.Timed("llm")
	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: turn},
	}, driven.ChatOptions{
		MaxTokens:   assistantMaxToken,
		Temperature: s.cfg.Temperature,
	})
	done()
	if err != nil {
		return "", fmt.Errorf("%w: llm: %w", domain.ErrUpstreamFailure, err)
	}
	return strings.TrimSpace(reply), nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AssistantService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// BuildContextBlock renders hits as numbered evidence for the LLM:
//
//	[1] Roasted Cashews | ₹250 | Pack: 200 g
//	    Link: https://...
//	    Section: Overview
//	    Snippet: ...
func BuildContextBlock(hits []domain.Hit) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] %s | %s%s\n", i+1, h.Title, formatPrice(h.Price), packSuffix(h.Weight))
		fmt.Fprintf(&b, "    Link: %s\n", h.Link)
		fmt.Fprintf(&b, "    Section: %s\n", h.Section)
		fmt.Fprintf(&b, "    Snippet: %s", snippet(h.Text))
	}
	return b.String()
}

// RenderListing lists grounded hits without an LLM.
func RenderListing(hits []domain.Hit) string {
	var b strings.Builder
	b.WriteString("Here is what I found:")
	for i, h := range hits {
		fmt.Fprintf(&b, "\n%d. %s | %s%s", i+1, h.Title, formatPrice(h.Price), packSuffix(h.Weight))
		if h.Link != "" {
			fmt.Fprintf(&b, " | %s", h.Link)
		}
	}
	return b.String()
}

// RenderComparison describes the best offer for each target.
func RenderComparison(cmp *domain.Comparison) string {
	var b strings.Builder
	for i, o := range cmp.Offers {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s | %s%s", o.Target, o.Hit.Title, formatPrice(o.Hit.Price), packSuffix(o.Hit.Weight))
		if o.UnitPricePerKg != nil {
			fmt.Fprintf(&b, " | ₹%s per kg", strconv.FormatFloat(*o.UnitPricePerKg, 'f', 2, 64))
		}
		if o.Hit.Link != "" {
			fmt.Fprintf(&b, " | %s", o.Hit.Link)
		}
	}
	return b.String()
}

func formatPrice(p *float64) string {
	if p == nil {
		return "₹-"
	}
	return "₹" + strconv.FormatFloat(*p, 'f', -1, 64)
}

func packSuffix(w *domain.Weight) string {
	if w == nil || w.Value == 0 || w.Unit == "" {
		return ""
	}
	return " | Pack: " + strconv.FormatFloat(w.Value, 'f', -1, 64) + " " + w.Unit
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= snippetMaxRunes {
		return text
	}
	return strings.TrimRight(string(runes[:snippetMaxRunes]), " \t\n") + "..."
}
