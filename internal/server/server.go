// Package server exposes the viewport, static url and layer builders over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MeKo-Tech/mapboxutil/internal/archive"
	"github.com/MeKo-Tech/mapboxutil/internal/logging"
	"github.com/MeKo-Tech/mapboxutil/internal/mapbox"
	"github.com/MeKo-Tech/mapboxutil/internal/metrics"
	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
)

// Config configures the HTTP API.
type Config struct {
	Client   *mapbox.Client // signs static image urls
	Username string         // default style owner
	Style    string         // default style id

	// Archive, when set, is served under /images/{name}.
	Archive      *archive.Reader
	CacheControl string

	// Metrics, when set, records every request and is served under /metrics.
	// Upstream latency is only recorded when Client reports to it
	// (mapbox.Config.Observer).
	Metrics *metrics.Provider
}

// Server holds the handlers of the HTTP API.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a server. A nil client signs urls with placeholder tokens.
func New(cfg Config, logger *slog.Logger) *Server {
	if cfg.Client == nil {
		cfg.Client = mapbox.NewClient(mapbox.Config{Logger: logger})
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(withCORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/viewport", s.handleViewport)
	r.Get("/static-url", s.handleStaticURL)
	r.Get("/static-image", s.handleStaticImage)
	r.Post("/layers", s.handleLayer)
	if s.cfg.Archive != nil {
		r.Get("/images/{name}", s.handleImage)
	}
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	return r
}

// Run serves h on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))
		elapsed := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.ObserveHTTP(r.Method, route, ww.Status(), elapsed)
		}
		s.logger.DebugContext(ctx, "http request",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", elapsed,
		)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to 400 and everything else to status.
func writeError(w http.ResponseWriter, status int, err error) {
	if errors.Is(err, viewport.ErrDomain) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
