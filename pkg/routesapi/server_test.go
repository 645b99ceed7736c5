package routesapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vango-dev/filerouter/pkg/menu"
	"github.com/vango-dev/filerouter/pkg/pipeline"
	"github.com/vango-dev/filerouter/pkg/router"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func page(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

func routesFS() fstest.MapFS {
	return fstest.MapFS{
		"$layout.go":     page("package routes\n\nfunc MainLayout() {}\n"),
		"about.go":       page("package routes\n\nvar Config = router.ViewConfig{Title: \"About\"}\n\nfunc AboutPage() {}\n"),
		"users/{id}.go":  page("package users\n\nfunc UserPage() {}\n"),
		"docs/{...p}.go": page("package docs\n\nfunc DocsPage() {}\n"),
	}
}

func compiler(fsys fstest.MapFS, views router.ServerViews, reg *prometheus.Registry) CompileFunc {
	var metrics *pipeline.Metrics
	if reg != nil {
		metrics = pipeline.NewMetrics(pipeline.WithRegistry(reg))
	}
	return func(ctx context.Context) (*pipeline.Result, error) {
		return pipeline.Compile(ctx, pipeline.Options{FS: fsys, Views: views, Metrics: metrics})
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func newLoadedServer(t *testing.T) *Server {
	t.Helper()
	views := router.ServerViews{"/users/:id": {Title: "User", Menu: &router.MenuConfig{Order: router.Order(1)}}}
	s := New(Options{Compile: compiler(routesFS(), views, nil)})
	_, err := s.Reload(context.Background())
	require.NoError(t, err)
	return s
}

func TestHealthz(t *testing.T) {
	s := New(Options{})
	rec := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNotCompiledYet(t *testing.T) {
	s := New(Options{})
	for _, target := range []string{"/routes", "/menu", "/match?path=/about"} {
		rec := get(t, s.Handler(), target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "not compiled", target)
	}
	assert.Nil(t, s.Current())
}

func TestRoutes(t *testing.T) {
	s := newLoadedServer(t)

	rec := get(t, s.Handler(), "/routes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var routes []struct {
		Path     string `json:"path"`
		Layout   bool   `json:"layout"`
		Children []struct {
			Path     string `json:"path"`
			FullPath string `json:"fullPath"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &routes))
	require.Len(t, routes, 1)
	assert.True(t, routes[0].Layout)

	var paths []string
	for _, c := range routes[0].Children {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"about", "docs", "users"}, paths)
}

func TestMenu(t *testing.T) {
	s := newLoadedServer(t)

	rec := get(t, s.Handler(), "/menu")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []menu.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	want := []menu.Item{
		{To: "users/:id", Title: "User", Order: router.Order(1)},
		{To: "about", Title: "About"},
		{To: "docs/*"},
	}
	assert.Equal(t, want, items)
}

func TestEmptyMenuIsArray(t *testing.T) {
	s := New(Options{})
	s.Set(&pipeline.Result{Routes: &router.ViewRoute{}})

	rec := get(t, s.Handler(), "/menu")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestMatch(t *testing.T) {
	s := newLoadedServer(t)

	tests := []struct {
		target    string
		status    int
		route     string
		component string
		params    map[string]string
	}{
		{"/match?path=/about", http.StatusOK, "/about", "routes.AboutPage", map[string]string{}},
		{"/match?path=/users/7", http.StatusOK, "/users/:id", "users.UserPage", map[string]string{"id": "7"}},
		{"/match?path=/docs/a/b", http.StatusOK, "/docs/*", "docs.DocsPage", map[string]string{"*": "a/b"}},
		{"/match?path=/nope", http.StatusNotFound, "", "", nil},
		{"/match", http.StatusBadRequest, "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"error"`)
				return
			}

			var resp MatchResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.route, resp.Route)
			assert.Equal(t, tt.component, resp.Component)
			assert.Equal(t, tt.params, resp.Params)
			assert.Equal(t, []string{"/"}, resp.Layouts)
		})
	}
}

func TestReload(t *testing.T) {
	fsys := routesFS()
	reg := prometheus.NewRegistry()
	s := New(Options{Compile: compiler(fsys, nil, reg), Gatherer: reg})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Files)
	assert.Equal(t, 3, resp.Views)
	assert.False(t, resp.CompiledAt.IsZero())

	first := s.Current()
	require.NotNil(t, first)

	// A conflicting file makes the next reload fail; the old table stays.
	fsys["users/{name}.go"] = page("package users\n\nfunc Other() {}\n")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "scan: ")
	assert.Same(t, first, s.Current())

	metrics := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `filerouter_compiles_total{status="success"} 1`)
	assert.Contains(t, metrics.Body.String(), `filerouter_compiles_total{status="error"} 1`)
}

func TestReloadDisabled(t *testing.T) {
	s := New(Options{})
	_, err := s.Reload(context.Background())
	assert.ErrorIs(t, err, ErrNotCompiled)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics").Code)
}

func TestConcurrentReadsDuringReload(t *testing.T) {
	s := newLoadedServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Reload(context.Background())
		}()
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match?path=/about", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d during reload", rec.Code)
			}
		}()
	}
	wg.Wait()
}

func TestListenAndServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := newLoadedServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr) }()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServeBadAddr(t *testing.T) {
	s := New(Options{})
	err := s.ListenAndServe(context.Background(), "256.0.0.1:bad")
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr), "error = %v", err)
}
