package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/icco/movies/lib/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "movies.db")

	app, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","db":"connected"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	require.NoError(t, app.Close())
	rec = serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMoviesRoutes(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/movies", strings.NewReader(`{"title":"Dune","year":2021,"genre":"Sci-Fi","rating":8.5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(app, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"title":"Dune","year":2021,"genre":"Sci-Fi","rating":8.5}`, rec.Body.String())

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/api/movies", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"title":"Dune","year":2021,"genre":"Sci-Fi","rating":8.5}]`, rec.Body.String())

	rec = serve(app, httptest.NewRequest(http.MethodDelete, "/api/movies/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORS(t *testing.T) {
	app := newTestApp(t)

	for _, origin := range []string{"http://localhost:5173", "http://127.0.0.1:5173"} {
		req := httptest.NewRequest(http.MethodOptions, "/api/movies/1", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		req.Header.Set("Access-Control-Request-Headers", "content-type,x-custom")
		rec := serve(app, req)

		assert.Less(t, rec.Code, 300, origin)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
		assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-custom")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := serve(app, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = serve(app, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	serve(app, httptest.NewRequest(http.MethodGet, "/api/movies", nil))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `movies_http_requests_total{method="GET",route="/api/movies",status="200"}`)
	assert.Contains(t, rec.Body.String(), "movies_db_query_duration_seconds")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "movies.db")
	cfg.Metrics.Enabled = false

	app, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS_EveryRegisteredMethod(t *testing.T) {
	app := newTestApp(t)

	methods := map[string]bool{}
	require.NoError(t, chi.Walk(app.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		methods[method] = true
		return nil
	}))
	require.NotEmpty(t, methods)

	for method := range methods {
		assert.Contains(t, corsMethods, method)

		req := httptest.NewRequest(http.MethodOptions, "/api/movies", nil)
		req.Header.Set("Origin", "http://127.0.0.1:5173")
		req.Header.Set("Access-Control-Request-Method", method)
		rec := serve(app, req)

		assert.Equal(t, "http://127.0.0.1:5173", rec.Header().Get("Access-Control-Allow-Origin"), method)
		assert.Equal(t, method, rec.Header().Get("Access-Control-Allow-Methods"), method)
	}
}
