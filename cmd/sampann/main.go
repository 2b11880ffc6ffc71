// Command sampann searches the Tata Sampann product catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/ai"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/cache/redis"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/config/file"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/storage"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/cli"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/core/services"
	"github.com/kush-lhmm/sampann-search/internal/logger"
	"github.com/kush-lhmm/sampann-search/internal/postprocessors"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := os.Getenv("SAMPANN_CONFIG_DIR")

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	cli.SetSettingsService(settingsService)
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		return bootstrap(ctx, settingsService, configDir)
	})
	cli.SetVersion(version)

	return cli.Execute()
}

// bootstrap builds the search pipeline from the saved settings.
func bootstrap(ctx context.Context, settingsService *services.SettingsService, configDir string) (*cli.Services, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	aiServices, err := ai.Init(settings)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, settings.Storage, aiServices.EmbeddingService.Dimensions())
	if err != nil {
		aiServices.Close()
		return nil, err
	}
	logger.Debug("storage: %s", backend.Location)

	rerankers := services.NewRerankerProvider(aiServices.RerankerFactory, aiServices.RerankerModel)
	searcher := services.NewSearchService(backend.Cards, backend.Index, aiServices.EmbeddingService, rerankers)

	warnings := aiServices.Warnings
	var (
		search driving.SearchService = searcher
		cache  driven.ResultCache
	)
	if settings.Cache.RedisAddr != "" {
		c, err := redis.NewCache(ctx, redis.Config{
			Addr:     settings.Cache.RedisAddr,
			Password: settings.Cache.Password,
			DB:       settings.Cache.DB,
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("result cache disabled: %v", err))
		} else {
			cache = c
			search = services.NewCachedSearchService(searcher, c, settings.Cache.TTL)
		}
	}

	ranker := domain.RankerNone
	if rerankers.Available() {
		ranker = settings.Search.Ranker
	}
	compare := services.NewCompareService(search, ranker)

	assistant := services.NewAssistantService(search, compare, aiServices.LLMService, services.AssistantConfig{
		UseReranker:       ranker == domain.RankerCrossEncoder,
		CEModel:           settings.Search.CEModel,
		Temperature:       settings.LLM.Temperature,
		BrowseMaxDistance: settings.Search.BrowseMaxDistance,
	})
	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir, services.DefaultPrompts())
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("custom prompts disabled: %v", err))
	} else {
		assistant.SetPromptStore(prompts)
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("pipeline config ignored: %v", err))
		pipeline = postprocessors.DefaultPipeline()
	}

	ingest := func(progress func(done, total int)) driving.IngestService {
		return services.NewIngestService(backend.Cards, backend.Index, aiServices.EmbeddingService, pipeline,
			services.WithProgress(progress))
	}

	return &cli.Services{
		Search:            search,
		Compare:           compare,
		Assistant:         assistant,
		Catalog:           services.NewCatalogService(backend.Cards, backend.Index),
		Ingest:            ingest,
		Cache:             cache,
		RerankerAvailable: searcher.RerankerAvailable,
		Warnings:          warnings,
		Close: func() error {
			var errs []error
			if cache != nil {
				errs = append(errs, cache.Close())
			}
			errs = append(errs, rerankers.Close(), backend.Close())
			aiServices.Close()
			return errors.Join(errs...)
		},
	}, nil
}
