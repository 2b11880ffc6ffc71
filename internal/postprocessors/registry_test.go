package postprocessors

import (
	"context"
	"testing"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(
	_ context.Context, _ *domain.ProductCard, passages []domain.Passage,
) ([]domain.Passage, error) {
	return passages, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(cfg map[string]any) (driven.PostProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockProcessor{name: name}, nil
	})

	proc, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Build("unknown", nil); err == nil {
		t.Error("expected error for unknown processor")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	names := r.Names()
	if len(names) != 2 || names[0] != "chunker" || names[1] != "summary" {
		t.Errorf("expected sorted [chunker summary], got %v", names)
	}
}

func TestRegistry_BuildPipeline(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	t.Run("default config", func(t *testing.T) {
		p, err := r.BuildPipeline(domain.DefaultPipelineConfig())
		if err != nil {
			t.Fatalf("BuildPipeline failed: %v", err)
		}
		if p.Len() != 2 {
			t.Errorf("expected 2 processors, got %d", p.Len())
		}
	})

	t.Run("empty config", func(t *testing.T) {
		if _, err := r.BuildPipeline(domain.PipelineConfig{}); err == nil {
			t.Error("expected error for empty pipeline")
		}
	})

	t.Run("unknown processor", func(t *testing.T) {
		_, err := r.BuildPipeline(domain.PipelineConfig{Processors: []string{"summary", "stemmer"}})
		if err == nil {
			t.Error("expected error for unknown processor")
		}
	})
}

func TestBuildChunker_WithConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	cfg := map[string]any{
		"chunk_size": int64(10),
		"overlap":    float64(0),
		"threshold":  5,
	}

	proc, err := r.Build("chunker", cfg)
	if err != nil {
		t.Fatalf("Build chunker failed: %v", err)
	}

	card := &domain.ProductCard{SKUID: "S", Title: "T", Description: "abcdefghijklmnopqrst"}
	passages, err := proc.Process(context.Background(), card, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(passages) != 2 {
		t.Errorf("expected 2 chunks of 10 without overlap, got %d", len(passages))
	}
}

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{"a": 1, "b": int64(2), "c": float64(3), "d": "4"}
	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3, "d": 0, "missing": 0} {
		if got := getIntFromConfig(cfg, key); got != want {
			t.Errorf("%s: expected %d, got %d", key, want, got)
		}
	}
}
