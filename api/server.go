// Package api provides the HTTP server for the debit note form.
//
// It serves the embedded form, keeps one Policy Record per browser session,
// and exposes endpoints for field edits, the premium preview, submission and
// a WebSocket feed of form changes.
package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/utilitycover/debitnote/internal/config"
	"github.com/utilitycover/debitnote/internal/debitnote"
	"github.com/utilitycover/debitnote/internal/infra"
	"github.com/utilitycover/debitnote/pkg/utils"
	"github.com/utilitycover/debitnote/web"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	gen      debitnote.Generator
	sessions *infra.Cache[*session]
	ttl      time.Duration
	creates  *infra.RateLimiter // paces new sessions; nil means unpaced
	wsHub    *WSHub
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
	version  string
	serveUI  bool // when true, serve the embedded web UI at /
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and submission logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock sets the clock used for issue dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a configured API server with all routes and middleware.
// A nil gen means documents are requested from cfg.PDF.Endpoint.
func NewServer(cfg *config.Config, gen debitnote.Generator, opts ...Option) *Server {
	if gen == nil {
		gen = debitnote.NewClient(debitnote.ClientConfig{
			Endpoint:  cfg.PDF.Endpoint,
			MaxBytes:  cfg.PDF.MaxBytes,
			UserAgent: cfg.PDF.UserAgent,
			Limiter:   infra.OptionalRateLimiter(cfg.PDF.RateBurst, cfg.PDF.RateInterval),
		})
	}

	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	srv := &Server{
		cfg:      cfg,
		gen:      gen,
		sessions: infra.NewCache[*session](ttl),
		ttl:      ttl,
		creates:  infra.OptionalRateLimiter(cfg.Session.CreateBurst, cfg.Session.CreateInterval),
		wsHub:    NewWSHub(),
		loc:      utils.LoadLocation(cfg.Timezone),
		now:      time.Now,
		logger:   slog.Default(),
		version:  "dev",
		serveUI:  true, // serve embedded web UI by default
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.sessions.SetLimit(cfg.Session.MaxSessions)
	srv.sessions.OnEvict(func(id string, _ *session) {
		srv.logger.Debug("form session expired", "session", id)
	})
	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before Run.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully. The WebSocket hub and the session janitor run alongside the
// listener and stop with it.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.requestTimeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.wsHub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		interval := s.cfg.Session.CleanupInterval
		if interval <= 0 {
			interval = time.Minute
		}
		return s.sessions.RunJanitor(ctx, interval)
	})

	g.Go(func() error {
		s.logger.Info("debit note server listening", "addr", addr, "ui", s.serveUI)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// requestTimeout bounds every request; a submission must outlive the
// document request it waits on.
func (s *Server) requestTimeout() time.Duration {
	timeout := 120 * time.Second
	if t := s.cfg.PDF.Timeout + 15*time.Second; t > timeout {
		timeout = t
	}
	return timeout
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition", headerFilename},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Form session
		r.Get("/form", s.handleGetForm)
		r.Patch("/form/fields", s.handleSetField)
		r.Post("/form/reset", s.handleResetForm)
		r.Get("/form/preview", s.handleFormPreview)
		r.Post("/form/submit", s.handleSubmit)

		// Stateless preview
		r.Post("/preview", s.handlePreview)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/settings", s.handleGetSettings)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded web UI (SPA with fallback to index.html)
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// mountSPA serves the embedded form as a single-page app.
// Static assets are served directly; unknown paths fall back to index.html.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, r, distFS)
			return
		}
		f.Close()

		if rPath == "index.html" || strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html for SPA fallback.
func serveIndexHTML(w http.ResponseWriter, r *http.Request, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Response helpers
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success     bool        `json:"success"`
	Data        interface{} `json:"data,omitempty"`
	Error       string      `json:"error,omitempty"`
	ErrorDetail string      `json:"error_detail,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    s.version,
			"time":       utils.FormatDateTime(s.now().In(s.loc)),
			"sessions":   s.sessions.Len(),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeFailure reports a failed submission: the generic notice the form
// shows to the user, plus the cause for logs and tooling.
func writeFailure(w http.ResponseWriter, status int, cause error) {
	writeJSON(w, status, APIResponse{
		Success:     false,
		Error:       debitnote.FailureNotice,
		ErrorDetail: cause.Error(),
	})
}
