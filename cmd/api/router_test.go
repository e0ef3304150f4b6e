package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/todoapi/modules/system"
	"github.com/dmitrymomot/todoapi/pkg/cors"
	"github.com/dmitrymomot/todoapi/pkg/file"
	"github.com/dmitrymomot/todoapi/pkg/jwt"
	"github.com/dmitrymomot/todoapi/pkg/logger"
	"github.com/dmitrymomot/todoapi/pkg/metrics"
	"github.com/dmitrymomot/todoapi/pkg/ratelimit"
	"github.com/dmitrymomot/todoapi/pkg/requestid"
)

func testRouter(t *testing.T, limit int64) (http.Handler, string) {
	t.Helper()

	tokens, err := jwt.New([]byte("router-test"))
	require.NoError(t, err)

	dir := t.TempDir()
	avatars, err := file.NewLocalStorage(dir, "/avatars/")
	require.NoError(t, err)

	rl, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: limit, Window: time.Minute})
	require.NoError(t, err)

	h := newRouter(routerDeps{
		log:     logger.Discard(),
		tokens:  tokens,
		avatars: avatars,
		limiter: rl,
		metrics: metrics.New(),
		cors:    cors.Config{AllowedOrigins: []string{"http://localhost:5173"}, MaxAge: time.Hour},
		checks: map[string]system.Check{
			"mongo": func(context.Context) error { return nil },
		},
		version:     "2.3.4",
		development: false,
	})
	return h, dir
}

func serve(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()
	h, _ := testRouter(t, 100)

	rec := serve(h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestid.Header))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))

	rec = serve(h, http.MethodGet, "/api/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"mongo":"ok"}}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"2.3.4"`)
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()
	h, _ := testRouter(t, 100)

	rec := serve(h, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])

	rec = serve(h, http.MethodDelete, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	t.Parallel()
	h, _ := testRouter(t, 100)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/abc"},
		{http.MethodPut, "/api/auth/profile"},
		{http.MethodGet, "/api/auth/me"},
	} {
		rec := serve(h, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)

		rec = serve(h, tc.method, tc.path, map[string]string{"Authorization": "Bearer garbage"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}

	rec := serve(h, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()
	h, _ := testRouter(t, 100)

	rec := serve(h, http.MethodOptions, "/api/auth/login", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = serve(h, http.MethodGet, "/api/health", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()
	h, _ := testRouter(t, 2)

	for range 2 {
		assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/health", nil).Code)
	}
	rec := serve(h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRouter_StaticAvatars(t *testing.T) {
	t.Parallel()
	h, dir := testRouter(t, 100)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644))

	rec := serve(h, http.MethodGet, "/avatars/a.png", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/avatars/", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/avatars/missing.png", nil).Code)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	h, _ := testRouter(t, 100)

	serve(h, http.MethodGet, "/api/health", nil)
	rec := serve(h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "todoapi_http_requests_total")
}

func TestAppConfig_IsDevelopment(t *testing.T) {
	t.Parallel()
	assert.True(t, appConfig{AppEnv: "development"}.isDevelopment())
	assert.True(t, appConfig{}.isDevelopment())
	assert.False(t, appConfig{AppEnv: "production"}.isDevelopment())
}

func TestGuard(t *testing.T) {
	t.Parallel()
	err := guard("worker", func() error { panic("boom") })()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker panicked: boom")
}
