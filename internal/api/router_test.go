package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentloop/talentloop-server/internal/bot"
	"github.com/talentloop/talentloop-server/internal/config"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

func newTestRouter(origins ...string) *Router {
	cfg := &config.Config{}
	cfg.Server.CORSAllowedOrigins = origins
	return &Router{
		config: cfg,
		logger: logger.NewNop(),
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWriteErrorBodyShape(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "interview not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"interview not found"}`, rec.Body.String())
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	router := newTestRouter("https://app.talentloop.io")

	handler := router.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "https://app.talentloop.io")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.talentloop.io", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	router := newTestRouter("https://app.talentloop.io")

	handler := router.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	router := newTestRouter("*")

	assert.True(t, router.originAllowed("https://anywhere.example.com"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	router := newTestRouter("*")

	called := false
	handler := router.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "https://app.talentloop.io")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", bearerToken(req))

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, bearerToken(req))

	req.Header.Del("Authorization")
	assert.Empty(t, bearerToken(req))
}

func TestUpstreamStatusMapsRunnerFailures(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, upstreamStatus(assert.AnError))

	ue := &bot.UpstreamError{Op: "start", Err: assert.AnError}
	require.Equal(t, http.StatusBadGateway, upstreamStatus(ue))
	require.Equal(t, http.StatusBadGateway, upstreamStatus(fmt.Errorf("starting: %w", ue)))
}
