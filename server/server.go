// Package server exposes the dashboard pages and the analytics API over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/cesde-ntp/tablero/dashboard"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/session"
)

// SessionHeader carries the session ID on page requests.
const SessionHeader = "X-Session-ID"

// maxBody caps request bodies.
const maxBody = 1 << 20

// Config holds the HTTP settings.
type Config struct {
	CORSOrigins []string
	RateLimit   RateLimitConfig
}

// Server serves the dashboard and the analytics API.
type Server struct {
	cfg      Config
	dash     *dashboard.Dashboard
	sessions *session.Store
	products *engine.Table
	limiter  *rateLimiter
	logger   *slog.Logger
}

// New creates a server. products backs the analytics API.
func New(cfg Config, dash *dashboard.Dashboard, sessions *session.Store, products *engine.Table, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, dash: dash, sessions: sessions, products: products, logger: logger}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
		ExposedHeaders: []string{SessionHeader},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		r.Use(s.limiter.middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleWelcome)
		r.Get("/datos", s.handleRecords)
		r.Get("/estadisticas", s.handleStats)
		r.Post("/filtro", s.handleFilter)
		r.Get("/ingresos_por_categoria", s.handleRevenueByCategory)
	})

	r.Post("/sessions", s.handleCreateSession)
	r.Delete("/sessions/{id}", s.handleDeleteSession)
	r.Get("/pages", s.handlePages)
	r.Get("/pages/{page}", s.handleRender)
	r.Post("/pages/{page}/actions/{action}", s.handleAction)
	return r
}

// ListenAndServe serves on addr and reaps idle sessions until ctx ends,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		s.sessions.ReapIdle(ctx, time.Minute)
		return nil
	})
	if s.limiter != nil {
		g.Go(func() error {
			s.limiter.run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// ============================================================================
// RESPONSES
// ============================================================================

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
