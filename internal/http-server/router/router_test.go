package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imageproxy/internal/clients/vectorizer"
	"imageproxy/internal/config"
	"imageproxy/internal/lib/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		CORS: config.CORS{AllowedOrigins: []string{"*"}},
		Upload: config.Upload{
			MaxSize:           1024,
			AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "bmp"},
		},
	}
}

func setup(t *testing.T) (http.Handler, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg/>"))
	}))
	t.Cleanup(upstream.Close)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { root.Close() })

	log := testutil.NewLogger(t)
	h := New(log, testConfig(), Deps{
		Vectorizer: vectorizer.New(log, upstream.URL, "id", "secret", time.Second),
		StaticRoot: root,
	})

	return h, &calls
}

func TestRoutes(t *testing.T) {
	h, calls := setup(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.ImageRequest(t, "/api/vectorize", "a.png", testutil.PNG))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<svg/>", rr.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.ImageRequest(t, "/api/remove-background", "a.png", testutil.PNG))
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.Equal(t, int32(1), calls.Load())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<html></html>", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestArchiveRouteDisabled(t *testing.T) {
	h, _ := setup(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/archive/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS(t *testing.T) {
	h, _ := setup(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/vectorize", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	req = testutil.ImageRequest(t, "/api/vectorize", "a.png", testutil.PNG)
	req.Header.Set("Origin", "http://localhost:3000")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
