// Package hugot provides an in-process embedding service that runs a
// sentence-transformers ONNX model with the pure Go hugot backend.
package hugot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2"
	DefaultDimensions = 384
	onnxFilePath      = "onnx/model.onnx"
)

// ErrModelMissing is returned when the model is not on disk and downloads are disabled.
var ErrModelMissing = errors.New("hugot: model not found")

// Config holds configuration for the hugot embedding service.
type Config struct {
	// Model is the Hugging Face model name (default: paraphrase-multilingual-MiniLM-L12-v2).
	Model string

	// ModelDir holds downloaded models (default: ~/.sampann/models).
	ModelDir string

	// Offline disables downloading a missing model.
	Offline bool
}

// EmbeddingService embeds text with a local feature-extraction pipeline.
type EmbeddingService struct {
	session    *hugot.Session
	pipeline   *pipelines.FeatureExtractionPipeline
	model      string
	dimensions int

	mu sync.Mutex
}

// ModelPath returns where a model is stored inside dir.
func ModelPath(dir, model string) string {
	return filepath.Join(dir, strings.ReplaceAll(model, "/", "_"))
}

// PrepareModel returns the on-disk path of model, downloading it into dir
// unless offline is set.
func PrepareModel(model, dir string, offline bool) (string, error) {
	path := ModelPath(dir, model)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("hugot: stat model: %w", err)
	}
	if offline {
		return "", fmt.Errorf("%w: %s (run once online or copy it to %s)", ErrModelMissing, model, path)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("hugot: create model directory: %w", err)
	}
	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = onnxFilePath
	downloaded, err := hugot.DownloadModel(model, dir, opts)
	if err != nil {
		return "", fmt.Errorf("hugot: download model: %w", err)
	}
	return downloaded, nil
}

// NewEmbeddingService loads (and if needed downloads) the model and
// starts a Go-backend session.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ModelDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("hugot: get home directory: %w", err)
		}
		cfg.ModelDir = filepath.Join(home, ".sampann", "models")
	}

	modelPath, err := PrepareModel(cfg.Model, cfg.ModelDir, cfg.Offline)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("hugot: create session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "sampann-embedder",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("hugot: create pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("hugot: create pipeline: %w", err)
	}

	dims := domain.EmbeddingDimensions()[cfg.Model]
	if dims == 0 {
		dims = DefaultDimensions
	}

	return &EmbeddingService{
		session:    session,
		pipeline:   pipeline,
		model:      cfg.Model,
		dimensions: dims,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch runs the whole batch through the pipeline at once.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("hugot: run pipeline: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("hugot: %d embeddings for %d inputs", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping is a no-op once the pipeline is loaded.
func (s *EmbeddingService) Ping(_ context.Context) error {
	if s.pipeline == nil {
		return errors.New("hugot: pipeline not loaded")
	}
	return nil
}

// Close destroys the session.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	s.pipeline = nil
	return err
}
