package image

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"imageproxy/internal/lib/testutil"
	"imageproxy/internal/storage"
)

const knownID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

type fakeDownloader struct {
	objects map[string]string
	err     error
}

func (f fakeDownloader) DownloadImage(_ context.Context, name string) (io.ReadCloser, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	data, ok := f.objects[name]
	if !ok {
		return nil, "", storage.ErrImageNotFound
	}
	return io.NopCloser(strings.NewReader(data)), "image/svg+xml", nil
}

func serve(t *testing.T, d ImageDownloader, id string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Get("/api/archive/{id}", New(testutil.NewLogger(t), d))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/archive/"+id, nil))
	return rr
}

func TestImageFound(t *testing.T) {
	d := fakeDownloader{objects: map[string]string{"vectorized/" + knownID + ".svg": "<svg/>"}}

	rr := serve(t, d, knownID)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<svg/>", rr.Body.String())
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
}

func TestImageNotFound(t *testing.T) {
	rr := serve(t, fakeDownloader{}, knownID)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestImageInvalidID(t *testing.T) {
	rr := serve(t, fakeDownloader{}, "not-an-id")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestImageStorageFailure(t *testing.T) {
	rr := serve(t, fakeDownloader{err: errors.New("connection refused")}, knownID)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}
