// Package testutil holds helpers shared by handler and client tests.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

// PNG is the 8-byte signature of a PNG file; enough for content sniffing.
var PNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// File describes one file part of a multipart body.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// NewLogger returns a logger that discards everything.
func NewLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MultipartRequest builds a POST request with the given file part and form values.
// A nil file produces a multipart body without any file part.
func MultipartRequest(t *testing.T, target string, file *File, values map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		if file.ContentType != "" {
			h.Set("Content-Type", file.ContentType)
		}

		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

// ImageRequest is MultipartRequest with a single "image" file part.
func ImageRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()

	return MultipartRequest(t, target, &File{
		Field:       "image",
		Filename:    filename,
		ContentType: "image/png",
		Data:        data,
	}, nil)
}
