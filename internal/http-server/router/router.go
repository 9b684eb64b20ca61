package router

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"imageproxy/internal/config"
	"imageproxy/internal/http-server/handlers/health"
	"imageproxy/internal/http-server/handlers/image"
	removeBackground "imageproxy/internal/http-server/handlers/remove_background"
	"imageproxy/internal/http-server/handlers/static"
	"imageproxy/internal/http-server/handlers/vectorize"
	"imageproxy/internal/http-server/middleware/recoverer"
	"imageproxy/internal/lib/upload"
)

// Archive is the optional result store. A nil Archive disables archiving
// and the /api/archive route.
type Archive interface {
	vectorize.ResultArchiver
	image.ImageDownloader
}

type Deps struct {
	Vectorizer vectorize.Vectorizer
	Archive    Archive
	StaticRoot *os.Root
}

func New(log *slog.Logger, cfg *config.Config, deps Deps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID) // request_id for every request, used in handler logs
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(recoverer.New(log))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", vectorize.ArchiveIDHeader},
		MaxAge:         300,
	}))

	var archiver vectorize.ResultArchiver
	if deps.Archive != nil {
		archiver = deps.Archive
	}

	settings := vectorize.Settings{
		Rules: upload.Rules{
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			MaxSize:           cfg.Upload.MaxSize,
		},
		DefaultMode:        cfg.Vectorizer.Mode,
		HideUpstreamErrors: cfg.Vectorizer.HideUpstreamErrors,
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/vectorize", vectorize.New(log, settings, deps.Vectorizer, archiver))
		r.Post("/remove-background", removeBackground.New(log, cfg.Upload.AllowedExtensions))
		r.Get("/health", health.New(time.Now))

		if deps.Archive != nil {
			r.Get("/archive/{id}", image.New(log, deps.Archive))
		}
	})

	if deps.StaticRoot != nil {
		staticHandler := static.New(log, deps.StaticRoot)
		router.Get("/", staticHandler)
		router.Get("/*", staticHandler)
	}

	return router
}
