// Package server exposes the render pipeline to the presentation
// shell over HTTP. The shell owns layout, theming, and the actual
// chart rendering; this surface only hands it JSON.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/metrics"
	"github.com/lucentlabs/lens/pkg/registry"
	"github.com/lucentlabs/lens/pkg/view"
)

// Server serves the dashboard JSON API.
type Server struct {
	log      *slog.Logger
	cfg      Config
	router   *chi.Mux
	httpSrv  *http.Server
	loader   *dataset.Loader
	renderer *view.Renderer
	sources  []dataset.Source

	mu   sync.RWMutex
	snap *dataset.Snapshot
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		log:      cfg.Logger,
		cfg:      cfg,
		router:   chi.NewRouter(),
		loader:   cfg.Loader,
		renderer: cfg.Renderer,
		sources:  registry.Sources(cfg.DataDir),
	}
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	return s, nil
}

func (s *Server) setupRoutes() {
	limiter := newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Get("/version", s.handleVersion)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Use(limiter.middleware)
		r.Get("/views", s.handleListViews)
		r.Get("/views/{id}", s.handleRenderView)
		r.Get("/datasets", s.handleDatasetReport)
		r.Get("/datasets/{name}", s.handleDatasetPreview)
		r.Post("/reload", s.handleReload)
	})
}

// Load runs an initial load of every declared dataset. It fails only
// when zero datasets are usable — the one fatal condition.
func (s *Server) Load(ctx context.Context) error {
	snap, err := s.loader.LoadAll(ctx, s.sources)
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.log.Info("server: datasets loaded", "loaded", snap.LoadedCount(), "declared", len(s.sources))
	return nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	serveErrCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("server: http server error", "error", err)
			serveErrCh <- fmt.Errorf("failed to listen and serve: %w", err)
		}
	}()

	s.log.Info("server: http listening", "address", s.cfg.ListenAddr)

	select {
	case <-ctx.Done():
		s.log.Info("server: stopping", "reason", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		s.log.Info("server: shutdown complete")
		return nil
	case err := <-serveErrCh:
		return err
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// snapshot returns the current immutable dataset snapshot, which may
// be nil before the initial load.
func (s *Server) snapshot() *dataset.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
