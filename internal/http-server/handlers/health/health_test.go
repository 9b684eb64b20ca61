package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

	rr := httptest.NewRecorder()
	New(func() time.Time { return fixed }).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"status":    "ok",
		"timestamp": "2026-03-01T11:30:00Z",
		"services": map[string]any{
			"vectorizer":    "available",
			"clippingMagic": "pending",
		},
	}, body)
}
