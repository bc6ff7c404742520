package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gdrivehelper/internal/tokenstore"
)

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthChecker_Readiness(t *testing.T) {
	sc, err := NewServerContext(context.Background(), tokenstore.NewFileStore(filepath.Join(t.TempDir(), "token.json")))
	require.NoError(t, err)
	h := NewHealthChecker(sc)

	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	get := func(path string) (int, map[string]any) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return rec.Code, body
	}

	code, body := get("/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = get("/healthz/detailed")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["accounts"])

	h.SetReady(false)
	code, body = get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["checks"].(map[string]any)["ready"])

	h.SetReady(true)
	require.NoError(t, sc.Shutdown())
	code, body = get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "shutting down", body["checks"].(map[string]any)["shutdown"])

	code, body = get("/healthz/detailed")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "shutting down", body["status"])
}

type unreachableStore struct {
	*tokenstore.FileStore
}

func (unreachableStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthChecker_TokenStoreUnreachable(t *testing.T) {
	store := unreachableStore{tokenstore.NewFileStore(filepath.Join(t.TempDir(), "token.json"))}
	sc, err := NewServerContext(context.Background(), store)
	require.NoError(t, err)
	defer sc.Shutdown()

	h := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not ready", resp.Status)
	assert.Equal(t, "unreachable", resp.Checks["token_store"])
	assert.Equal(t, "ok", resp.Checks["ready"])

	rec = httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
