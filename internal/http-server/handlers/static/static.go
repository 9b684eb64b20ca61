package static

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	resp "imageproxy/internal/lib/api/response"
	"imageproxy/internal/lib/logger/sl"
)

const indexFile = "index.html"

// New serves files below root. Anything that is not a regular file inside
// root, including dot files, is reported as not found.
func New(log *slog.Logger, root *os.Root) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.static.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		name, ok := cleanName(chi.URLParam(r, "*"))
		if !ok {
			log.Warn("rejected path", slog.String("path", r.URL.Path))
			notFound(w, r)
			return
		}

		f, err := root.Open(name)
		if err != nil {
			log.Debug("file not served", slog.String("name", name), sl.Err(err))
			notFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || !info.Mode().IsRegular() {
			notFound(w, r)
			return
		}

		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			mt, err := mimetype.DetectReader(f)
			if err != nil {
				log.Error("failed to detect content type", sl.Err(err))
				notFound(w, r)
				return
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				log.Error("failed to rewind file", sl.Err(err))
				notFound(w, r)
				return
			}
			contentType = mt.String()
		}
		w.Header().Set("Content-Type", contentType)

		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

// cleanName turns a URL wildcard into a root-relative file name.
func cleanName(p string) (string, bool) {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") || strings.Contains(seg, `\`) {
			return "", false
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		return indexFile, true
	}

	return name, true
}

func notFound(w http.ResponseWriter, r *http.Request) {
	resp.Render(w, r, http.StatusNotFound, resp.Error("not found"))
}
