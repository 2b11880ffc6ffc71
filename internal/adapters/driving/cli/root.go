// Package cli implements the sampann command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired by Bootstrap. Commands read these package variables so
// tests can swap in mocks.
var (
	searchService     driving.SearchService
	compareService    driving.CompareService
	assistantService  driving.AssistantService
	catalogService    driving.CatalogService
	settingsService   driving.SettingsService
	ingestFactory     IngestFactory
	resultCache       driven.ResultCache
	rerankerAvailable func() bool
)

var (
	verbose        bool
	commandTimeout time.Duration
)

// IngestFactory builds an ingest service that reports embedding progress.
type IngestFactory func(progress func(done, total int)) driving.IngestService

// Services is everything the pipeline commands need.
type Services struct {
	Search            driving.SearchService
	Compare           driving.CompareService
	Assistant         driving.AssistantService
	Catalog           driving.CatalogService
	Ingest            IngestFactory
	Cache             driven.ResultCache
	RerankerAvailable func() bool

	// Close releases stores and model sessions.
	Close func() error

	// Warnings are printed once before the command runs.
	Warnings []string
}

// Bootstrap builds Services from the current settings.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	bootstrap     Bootstrap
	loaded        *Services
	bootstrapErr  error
	bootstrapDone bool
)

var rootCmd = &cobra.Command{
	Use:   "sampann",
	Short: "Tata Sampann product search",
	Long: `sampann searches the Tata Sampann catalog with a hybrid pipeline:
query normalisation, price and pack-size extraction, Hindi/English synonym
expansion, dense retrieval, optional cross-encoder re-ranking and strict
grounding.

Load a catalog with 'sampann ingest', then search, compare or ask.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics")
	rootCmd.PersistentFlags().DurationVar(&commandTimeout, "timeout", 0,
		"deadline for one-shot commands such as search and ask (0 = none)")
}

// SetSettingsService injects the settings service. It is available before
// the pipeline is built so 'settings' works without a reachable embedder.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap registers the function that builds the pipeline on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
	loaded = nil
	bootstrapErr = nil
	bootstrapDone = false
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeServices()

	return rootCmd.ExecuteContext(ctx)
}

// loadServices runs the bootstrap once and publishes its services.
// Without a bootstrap the package variables are used as they are.
func loadServices(cmd *cobra.Command) error {
	if bootstrap == nil {
		return nil
	}
	if bootstrapDone {
		return bootstrapErr
	}
	bootstrapDone = true

	svcs, err := bootstrap(cmd.Context())
	if err != nil {
		bootstrapErr = err
		return err
	}
	loaded = svcs
	searchService = svcs.Search
	compareService = svcs.Compare
	assistantService = svcs.Assistant
	catalogService = svcs.Catalog
	ingestFactory = svcs.Ingest
	resultCache = svcs.Cache
	rerankerAvailable = svcs.RerankerAvailable

	warn := color.New(color.FgYellow)
	for _, w := range svcs.Warnings {
		warn.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w) //nolint:errcheck
	}
	return nil
}

func closeServices() {
	if loaded == nil || loaded.Close == nil {
		return
	}
	if err := loaded.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	loaded = nil
}

// commandContext applies --timeout to one-shot commands.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if commandTimeout > 0 {
		return context.WithTimeout(ctx, commandTimeout)
	}
	return context.WithCancel(ctx)
}

// errNotConfigured reports a missing service by name.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}
