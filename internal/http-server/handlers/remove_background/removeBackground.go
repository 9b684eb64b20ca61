package removeBackground

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	resp "imageproxy/internal/lib/api/response"
	"imageproxy/internal/lib/logger/sl"
	"imageproxy/internal/lib/upload"
)

const (
	errNotImplemented     = "Background removal not yet implemented - need correct Clipping Magic API endpoint"
	detailsNotImplemented = "The Clipping Magic API endpoint needs to be verified and implemented"
	errInternal           = "Internal server error during background removal"
)

// New validates the upload and always answers 501 until a provider is wired in.
// Only extensions are checked, the size limit of /api/vectorize does not apply here.
func New(log *slog.Logger, allowedExtensions []string) http.HandlerFunc {
	rules := upload.Rules{AllowedExtensions: allowedExtensions}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.removeBackground.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		log.Info("background removal request received")

		img, err := upload.Extract(w, r, rules)
		if err != nil {
			if upload.IsClientError(err) {
				log.Warn("invalid upload", sl.Err(err))
				resp.Render(w, r, http.StatusBadRequest, resp.Error(upload.Message(err, rules.MaxSize)))
				return
			}
			log.Error("failed to read upload", sl.Err(err))
			resp.Render(w, r, http.StatusInternalServerError, resp.ErrorWithDetails(errInternal, "failed to read upload"))
			return
		}

		log.Info("processing file", slog.String("filename", img.Name))

		resp.Render(w, r, http.StatusNotImplemented, resp.ErrorWithDetails(errNotImplemented, detailsNotImplemented))
	}
}
