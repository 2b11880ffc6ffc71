package postprocessors

import (
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/postprocessors/chunker"
	"github.com/kush-lhmm/sampann-search/internal/postprocessors/summary"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("summary", buildSummary)
	r.Register("chunker", buildChunker)
}

// DefaultPipeline returns the summary and chunker processors with default settings.
func DefaultPipeline() *Pipeline {
	r := NewRegistry()
	RegisterDefaults(r)
	p, err := r.BuildPipeline(domain.DefaultPipelineConfig())
	if err != nil {
		// Built-in processors cannot fail to build.
		panic(err)
	}
	return p
}

func buildSummary(_ map[string]any) (driven.PostProcessor, error) {
	return summary.New(), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 600)
//   - overlap (int): Overlapping characters between chunks (default: 80)
//   - threshold (int): Length a description must exceed to be chunked (default: 700)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
		if threshold := getIntFromConfig(cfg, "threshold"); threshold > 0 {
			opts = append(opts, chunker.WithThreshold(threshold))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
