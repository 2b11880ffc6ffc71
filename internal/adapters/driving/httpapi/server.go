// Package httpapi serves the search pipeline over a small REST API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// DefaultRequestTimeout bounds each request when Config leaves it unset.
const DefaultRequestTimeout = 30 * time.Second

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// Ports aggregates the driving ports the API exposes.
// Compare, Assistant and Catalog are optional; their routes answer 503 when unset.
type Ports struct {
	Search    driving.SearchService
	Compare   driving.CompareService
	Assistant driving.AssistantService
	Catalog   driving.CatalogService

	// RerankerAvailable reports whether cross_encoder requests can succeed.
	RerankerAvailable func() bool
}

// Config holds HTTP server configuration.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
}

// Server is the REST API server.
type Server struct {
	ports   *Ports
	cfg     Config
	handler http.Handler
}

// NewServer builds the router for the given ports.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil || ports.Search == nil {
		return nil, ErrMissingSearchService
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{ports: ports, cfg: cfg}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/compare", s.handleCompare)
		r.Post("/ask", s.handleAsk)
		r.Get("/products/{skuId}", s.handleProduct)
	})

	// Paths used by existing storefront integrations.
	r.Get("/tata/search", s.handleSearch)
	r.Post("/tata/chat", s.handleAsk)

	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", s.cfg.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requestLogger logs each request at debug level with its chi request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start),
			chimiddleware.GetReqID(r.Context()))
	})
}
