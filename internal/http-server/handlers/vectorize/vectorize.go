package vectorize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"imageproxy/internal/clients/vectorizer"
	resp "imageproxy/internal/lib/api/response"
	"imageproxy/internal/lib/logger/sl"
	"imageproxy/internal/lib/upload"
	minioServer "imageproxy/internal/storage/minio"
	"imageproxy/internal/structs/models"
)

const (
	errInternal = "Internal server error during vectorization"

	ArchiveIDHeader = "X-Archive-Id"
)

// Request holds the optional upstream settings sent next to the image.
type Request struct {
	Mode      string `validate:"omitempty,oneof=test test_preview preview production"`
	MaxColors *int   `validate:"omitempty,min=0,max=256"`
}

type Settings struct {
	Rules              upload.Rules
	DefaultMode        string
	HideUpstreamErrors bool
}

type Vectorizer interface {
	Vectorize(ctx context.Context, img *models.Image, opts vectorizer.Options) (*models.Image, error)
}

// ResultArchiver may be nil, results are then not archived.
type ResultArchiver interface {
	UploadImage(ctx context.Context, image models.Image) error
}

func New(log *slog.Logger, settings Settings, v Vectorizer, archiver ResultArchiver) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.vectorize.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		log.Info("vectorization request received")

		img, err := upload.Extract(w, r, settings.Rules)
		if err != nil {
			if upload.IsClientError(err) {
				log.Warn("invalid upload", sl.Err(err))
				resp.Render(w, r, http.StatusBadRequest, resp.Error(upload.Message(err, settings.Rules.MaxSize)))
				return
			}
			log.Error("failed to read upload", sl.Err(err))
			resp.Render(w, r, http.StatusInternalServerError, resp.ErrorWithDetails(errInternal, "failed to read upload"))
			return
		}

		req, err := decodeRequest(r)
		if err != nil {
			log.Warn("invalid options", sl.Err(err))
			resp.Render(w, r, http.StatusBadRequest, resp.Error(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Warn("invalid options", sl.Err(err))
			resp.Render(w, r, http.StatusBadRequest, resp.ValidationError(validateErr))
			return
		}

		opts := vectorizer.Options{Mode: req.Mode, MaxColors: req.MaxColors}
		if opts.Mode == "" {
			opts.Mode = settings.DefaultMode
		}

		log.Info("processing file", slog.String("filename", img.Name), slog.Int64("size", img.Size))

		res, err := v.Vectorize(r.Context(), img, opts)
		if err != nil {
			var statusErr *vectorizer.StatusError
			switch {
			case errors.As(err, &statusErr):
				log.Warn("vectorizer rejected request",
					slog.Int("status", statusErr.StatusCode),
					slog.String("body", statusErr.Body),
				)
				details := statusErr.Body
				if settings.HideUpstreamErrors {
					details = "the vectorization service rejected the image"
				}
				resp.Render(w, r, statusErr.StatusCode, resp.ErrorWithDetails(
					fmt.Sprintf("Vectorizer.AI API error: %d - %s", statusErr.StatusCode, statusErr.Reason),
					details,
				))
			case errors.Is(err, vectorizer.ErrTimeout):
				log.Error("vectorizer timed out", sl.Err(err))
				resp.Render(w, r, http.StatusInternalServerError, resp.ErrorWithDetails(errInternal, "the vectorization service did not respond in time"))
			default:
				log.Error("vectorizer request failed", sl.Err(err))
				resp.Render(w, r, http.StatusInternalServerError, resp.ErrorWithDetails(errInternal, "the vectorization service is unreachable"))
			}
			return
		}

		log.Info("vectorization successful", slog.Int64("size", res.Size))

		if archiver != nil {
			if id, err := archive(r.Context(), archiver, *res); err != nil {
				log.Error("failed to archive result", sl.Err(err))
			} else {
				w.Header().Set(ArchiveIDHeader, id)
			}
		}

		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Name}))
		w.Header().Set("Content-Length", strconv.FormatInt(res.Size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(res.Payload); err != nil {
			log.Error("failed to write response", sl.Err(err))
		}
	}
}

func decodeRequest(r *http.Request) (Request, error) {
	req := Request{Mode: r.FormValue("mode")}

	if raw := r.FormValue("max_colors"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.New("field MaxColors is not valid")
		}
		req.MaxColors = &n
	}

	return req, nil
}

func archive(ctx context.Context, archiver ResultArchiver, res models.Image) (string, error) {
	id, err := minioServer.NewID()
	if err != nil {
		return "", err
	}

	name, err := minioServer.ObjectName(id)
	if err != nil {
		return "", err
	}

	res.Name = name
	if err := archiver.UploadImage(ctx, res); err != nil {
		return "", err
	}

	return id, nil
}
