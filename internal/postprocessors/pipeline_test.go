package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined passages.
type mockProcessor struct {
	name     string
	passages []domain.Passage
	err      error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(
	_ context.Context, _ *domain.ProductCard, passages []domain.Passage,
) ([]domain.Passage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.passages != nil {
		return append(passages, m.passages...), nil
	}
	return passages, nil
}

func testCard() *domain.ProductCard {
	return &domain.ProductCard{
		SKUID:       "SKU1",
		Title:       "Moong Dal",
		Category:    "Pulses",
		Description: "Split green gram.",
	}
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
}

func TestPipeline_Process_NilCard(t *testing.T) {
	p := NewPipeline()

	_, err := p.Process(context.Background(), nil)
	if err == nil {
		t.Error("expected error for nil card")
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	p := NewPipeline()

	passages, err := p.Process(context.Background(), testCard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if passages != nil {
		t.Errorf("expected nil passages from empty pipeline, got %v", passages)
	}
}

func TestPipeline_Process_MultipleProcessors(t *testing.T) {
	p := NewPipeline(
		&mockProcessor{name: "first", passages: []domain.Passage{{ID: "a"}}},
		&mockProcessor{name: "second", passages: []domain.Passage{{ID: "b"}, {ID: "c"}}},
	)

	passages, err := p.Process(context.Background(), testCard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}
	for _, ps := range passages {
		if ps.SKUID != "SKU1" {
			t.Errorf("passage %s not stamped with card SKU, got %q", ps.ID, ps.SKUID)
		}
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")

	p := NewPipeline(&mockProcessor{
		name: "failing",
		err:  expectedErr,
	})

	_, err := p.Process(context.Background(), testCard())
	if err == nil {
		t.Error("expected error from failing processor")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestDefaultPipeline(t *testing.T) {
	passages, err := DefaultPipeline().Process(context.Background(), testCard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"SKU1#overview", "SKU1#diet", "SKU1#desc-1"}
	if len(passages) != len(want) {
		t.Fatalf("expected %d passages, got %d", len(want), len(passages))
	}
	for i, id := range want {
		if passages[i].ID != id {
			t.Errorf("passage %d: expected %q, got %q", i, id, passages[i].ID)
		}
	}
}
