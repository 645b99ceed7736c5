// Package routesapi serves a compiled route table over HTTP.
//
//	GET  /healthz           liveness
//	GET  /routes            merged route tree
//	GET  /menu              navigation menu
//	GET  /match?path=/a/b   resolve a request path
//	POST /reload            recompile, keeping the old table on failure
//	GET  /metrics           Prometheus metrics
package routesapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/filerouter/pkg/menu"
	"github.com/vango-dev/filerouter/pkg/pipeline"
	"github.com/vango-dev/filerouter/pkg/router"
)

// ErrNotCompiled is returned by Reload when no compile function is set.
var ErrNotCompiled = errors.New("routesapi: no compile function")

// CompileFunc produces a fresh route table.
type CompileFunc func(ctx context.Context) (*pipeline.Result, error)

// Options configures a Server.
type Options struct {
	// Compile backs POST /reload. If nil, reloading is disabled.
	Compile CompileFunc

	// Gatherer backs /metrics. If nil, /metrics is not mounted.
	Gatherer prometheus.Gatherer

	// Logger receives request and reload logs. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Server holds the current route table and swaps it atomically on reload.
type Server struct {
	opts   Options
	logger *slog.Logger

	current atomic.Pointer[pipeline.Result]

	// reloadMu serializes reloads; readers never take it.
	reloadMu sync.Mutex

	router chi.Router
}

// New creates a Server with no table loaded. Requests other than /healthz
// and /metrics get 503 until Set or Reload succeeds.
func New(opts Options) *Server {
	s := &Server{opts: opts, logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.requireTable)
		r.Get("/routes", s.handleRoutes)
		r.Get("/menu", s.handleMenu)
		r.Get("/match", s.handleMatch)
	})
	r.Post("/reload", s.handleReload)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Current returns the table being served, or nil.
func (s *Server) Current() *pipeline.Result {
	return s.current.Load()
}

// Set replaces the table being served.
func (s *Server) Set(res *pipeline.Result) {
	s.current.Store(res)
}

// Reload compiles a new table and swaps it in. On failure the previous
// table stays in place.
func (s *Server) Reload(ctx context.Context) (*pipeline.Result, error) {
	if s.opts.Compile == nil {
		return nil, ErrNotCompiled
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	res, err := s.opts.Compile(ctx)
	if err != nil {
		s.logger.Warn("reload failed, keeping previous routes", "error", err)
		return nil, err
	}
	s.current.Store(res)
	return res, nil
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("routes API listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) requireTable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.current.Load() == nil {
			writeError(w, http.StatusServiceUnavailable, "routes not compiled yet")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.current.Load().RouteList())
}

func (s *Server) handleMenu(w http.ResponseWriter, _ *http.Request) {
	items := s.current.Load().Menu
	if items == nil {
		items = []menu.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// MatchResponse is the body of a successful /match.
type MatchResponse struct {
	Route string `json:"route"`
	Title string `json:"title,omitempty"`

	// Component is the page function when it was read from Go source.
	Component string `json:"component,omitempty"`

	Layouts []string          `json:"layouts"`
	Params  map[string]string `json:"params"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing path query parameter")
		return
	}

	res := s.current.Load()
	m, ok := res.Matcher.Match(path)
	if !ok {
		writeError(w, http.StatusNotFound, "no route matches "+path)
		return
	}

	resp := MatchResponse{
		Route:   "/" + m.Route.FullPath,
		Title:   m.Route.Title,
		Layouts: make([]string, 0, len(m.Layouts)),
		Params:  m.Params,
	}
	if m.Route.Module != nil {
		if ref, ok := m.Route.Module.Component.(router.ComponentRef); ok {
			resp.Component = ref.Package + "." + ref.Name
		}
	}
	for _, l := range m.Layouts {
		resp.Layouts = append(resp.Layouts, "/"+l.FullPath)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReloadResponse is the body of a successful /reload.
type ReloadResponse struct {
	Files      int       `json:"files"`
	Views      int       `json:"views"`
	MenuItems  int       `json:"menuItems"`
	LoadErrors int       `json:"loadErrors"`
	Dropped    int       `json:"dropped"`
	CompiledAt time.Time `json:"compiledAt"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, err := s.Reload(r.Context())
	switch {
	case errors.Is(err, ErrNotCompiled):
		writeError(w, http.StatusNotImplemented, "reload is disabled")
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		Files:      res.Files,
		Views:      len(res.Views()),
		MenuItems:  len(res.Menu),
		LoadErrors: len(res.LoadErrors),
		Dropped:    len(res.Report.Dropped),
		CompiledAt: res.CompiledAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
