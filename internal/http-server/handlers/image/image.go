package image

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	resp "imageproxy/internal/lib/api/response"
	"imageproxy/internal/lib/logger/sl"
	"imageproxy/internal/storage"
	minioServer "imageproxy/internal/storage/minio"
)

type ImageDownloader interface {
	DownloadImage(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// New returns an archived vectorization result by the id sent in X-Archive-Id.
func New(log *slog.Logger, downloader ImageDownloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		name, err := minioServer.ObjectName(id)
		if err != nil {
			log.Warn("invalid image id", slog.String("id", id))
			resp.Render(w, r, http.StatusBadRequest, resp.Error("invalid image id"))
			return
		}

		file, contentType, err := downloader.DownloadImage(r.Context(), name)
		if errors.Is(err, storage.ErrImageNotFound) {
			log.Info("image with this id doesn't exist", slog.String("id", id))
			resp.Render(w, r, http.StatusNotFound, resp.Error("image with this id doesn't exist"))
			return
		}
		if err != nil {
			log.Error("failed to get image from archive", sl.Err(err))
			resp.Render(w, r, http.StatusInternalServerError, resp.Error("failed to get image from archive"))
			return
		}
		defer file.Close()

		if contentType == "" {
			contentType = "image/svg+xml"
		}
		w.Header().Set("Content-Type", contentType)
		if _, err := io.Copy(w, file); err != nil {
			log.Error("failed to send image", sl.Err(err))
			return
		}

		log.Info("image successfully sent")
	}
}
