// Package server assembles the HTTP surface: routing, middleware, metrics and
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/bachatbox/bachatbox/pkg/config"
)

// Registrar mounts a group of routes on the mux.
type Registrar interface {
	Register(mux *http.ServeMux)
}

// Server is the configured HTTP server.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// New builds the mux, wraps it in the middleware chain and returns a server
// ready to listen.
func New(cfg *config.Config, logger *slog.Logger, registrars ...Registrar) *Server {
	mux := http.NewServeMux()
	for _, r := range registrars {
		r.Register(mux)
	}
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	corsOpts := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	})

	var handler http.Handler = mux
	handler = corsOpts.Handler(handler)
	handler = RateLimit(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst)(handler)
	handler = Logging(logger)(handler)
	handler = Recovery(logger)(handler)
	handler = RequestID(handler)

	return &Server{
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
