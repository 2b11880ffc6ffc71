package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
		if p.threshold != DefaultThreshold {
			t.Errorf("expected threshold %d, got %d", DefaultThreshold, p.threshold)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1), WithThreshold(0))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
		if p.threshold != DefaultThreshold {
			t.Errorf("expected default threshold, got %d", p.threshold)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_NilCard(t *testing.T) {
	p := New()
	if _, err := p.Process(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil card")
	}
}

func TestProcessor_Process_EmptyDescription(t *testing.T) {
	p := New()
	card := &domain.ProductCard{SKUID: "SKU1", Title: "Chana Dal"}

	passages, err := p.Process(context.Background(), card, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].ID != "SKU1#desc-1" {
		t.Errorf("unexpected id %q", passages[0].ID)
	}
	if passages[0].Text != "Chana Dal: No description provided." {
		t.Errorf("unexpected text %q", passages[0].Text)
	}
}

func TestProcessor_Process_ShortDescription(t *testing.T) {
	p := New()
	card := &domain.ProductCard{
		SKUID:       "SKU2",
		Title:       "Roasted Cashews",
		Category:    "Dry Fruits",
		Description: "  Crunchy   whole cashews,\nroasted lightly. ",
	}

	passages, err := p.Process(context.Background(), card, []domain.Passage{{ID: "SKU2#overview"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("expected existing passage plus 1, got %d", len(passages))
	}
	got := passages[1]
	if got.Text != "Roasted Cashews: Crunchy whole cashews, roasted lightly." {
		t.Errorf("unexpected text %q", got.Text)
	}
	if got.Section != domain.SectionDescription {
		t.Errorf("expected description section, got %q", got.Section)
	}
	if got.Metadata["category"] != "Dry Fruits" || got.Metadata["desc_total"] != "1" {
		t.Errorf("unexpected metadata %v", got.Metadata)
	}
}

func TestProcessor_Process_LongDescription(t *testing.T) {
	p := New()
	card := &domain.ProductCard{
		SKUID:       "SKU3",
		Title:       "Toor Dal",
		Description: strings.Repeat("a", 1000),
	}

	passages, err := p.Process(context.Background(), card, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000 runes, step 520: windows start at 0 and 520.
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages[1].ID != "SKU3#desc-2" {
		t.Errorf("unexpected id %q", passages[1].ID)
	}
	if passages[1].Metadata["desc_part"] != "2" || passages[1].Metadata["desc_total"] != "2" {
		t.Errorf("unexpected metadata %v", passages[1].Metadata)
	}
}

func TestProcessor_Split(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))

	t.Run("empty", func(t *testing.T) {
		if got := p.Split("   "); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("overlapping windows", func(t *testing.T) {
		got := p.Split("abcdefghijklmnopqrst")
		want := []string{"abcdefghij", "ijklmnopqr", "qrst"}
		if len(got) != len(want) {
			t.Fatalf("expected %d chunks, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		got := p.Split(strings.Repeat("दाल", 5))
		for _, c := range got {
			if !strings.HasPrefix("दालदालदालदालदाल", c) && !strings.Contains("दालदालदालदालदाल", c) {
				t.Errorf("chunk %q is not a substring", c)
			}
		}
	})
}
