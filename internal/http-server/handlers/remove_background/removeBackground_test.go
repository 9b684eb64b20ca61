package removeBackground

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resp "imageproxy/internal/lib/api/response"
	"imageproxy/internal/lib/testutil"
)

const target = "/api/remove-background"

var allowed = []string{"png", "jpg", "jpeg", "gif", "bmp"}

func serve(t *testing.T, req *http.Request) (int, resp.Response) {
	t.Helper()

	rr := httptest.NewRecorder()
	New(testutil.NewLogger(t), allowed).ServeHTTP(rr, req)

	var body resp.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return rr.Code, body
}

func TestRemoveBackgroundAlwaysNotImplemented(t *testing.T) {
	payloads := map[string][]byte{
		"a.png":  testutil.PNG,
		"b.JPG":  []byte{0xff, 0xd8, 0xff},
		"c.gif":  []byte("GIF89a"),
		"d.bmp":  []byte("BM"),
		"e.jpeg": []byte("not really a jpeg"),
	}

	for name, data := range payloads {
		code, body := serve(t, testutil.ImageRequest(t, target, name, data))

		assert.Equal(t, http.StatusNotImplemented, code, name)
		assert.Equal(t, errNotImplemented, body.Error)
		assert.Equal(t, detailsNotImplemented, body.Details)
	}
}

func TestRemoveBackgroundIgnoresSizeLimit(t *testing.T) {
	// larger than the 30 MiB vectorize limit plus multipart overhead
	code, _ := serve(t, testutil.ImageRequest(t, target, "huge.png", bytes.Repeat([]byte{1}, 32<<20)))

	assert.Equal(t, http.StatusNotImplemented, code)
}

func TestRemoveBackgroundValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *http.Request
		wantMsg string
	}{
		{
			name:    "missing field",
			req:     testutil.MultipartRequest(t, target, nil, nil),
			wantMsg: "No image file provided",
		},
		{
			name:    "empty filename",
			req:     testutil.MultipartRequest(t, target, &testutil.File{Field: "image"}, nil),
			wantMsg: "No file selected",
		},
		{
			name:    "disallowed extension",
			req:     testutil.ImageRequest(t, target, "doc.pdf", []byte("%PDF")),
			wantMsg: "Invalid file type. Only images are allowed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, tt.req)

			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, resp.Response{Error: tt.wantMsg}, body)
		})
	}
}
