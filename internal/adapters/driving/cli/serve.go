package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the search pipeline over HTTP.

Routes:
  GET  /v1/search?q=...       product search (same options as 'sampann search')
  GET  /v1/compare?q=...      compare two products (or ?a=...&b=...)
  POST /v1/ask                {"message": "..."} shopping assistant
  GET  /v1/products/{sku}     one product card
  GET  /healthz               liveness and catalog counts

The listen address and per-request deadline come from settings
(server.addr, server.request_timeout_seconds) unless --addr is given.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured("search")
	}

	cfg := httpapi.Config{Addr: ":8080"}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			cfg.Addr = settings.Server.Addr
			cfg.RequestTimeout = settings.Server.RequestTimeout
		}
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Search:            searchService,
		Compare:           compareService,
		Assistant:         assistantService,
		Catalog:           catalogService,
		RerankerAvailable: rerankerAvailable,
	}, cfg)
	if err != nil {
		return err
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = httpapi.DefaultRequestTimeout
	}
	cmd.Printf("HTTP API listening on %s (request timeout %s)\n", cfg.Addr, timeout.Round(time.Second))
	if err := server.Run(cmd.Context()); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
