package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"imageproxy/internal/clients/vectorizer"
	"imageproxy/internal/config"
	"imageproxy/internal/http-server/router"
	setupLogger "imageproxy/internal/lib/logger/setup_logger"
	"imageproxy/internal/lib/logger/sl"
	minioServer "imageproxy/internal/storage/minio"
)

func main() {
	cfg := config.MustLoad()

	log, logFile, err := setupLogger.New(cfg.LogLVL, cfg.LogPath)
	if err != nil {
		panic(err)
	}
	defer logFile.Close()

	deps := router.Deps{
		Vectorizer: vectorizer.New(log, cfg.Vectorizer.Endpoint, cfg.Vectorizer.APIID, cfg.Vectorizer.APISecret, cfg.Vectorizer.Timeout),
	}

	if cfg.Archive.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		archive, err := minioServer.New(ctx, cfg.Archive)
		cancel()
		if err != nil {
			log.Error("failed to init archive", sl.Err(err))
			os.Exit(1)
		}
		deps.Archive = archive
		log.Info("result archive enabled", slog.String("bucket", cfg.Archive.Bucket))
	}

	staticRoot, err := os.OpenRoot(cfg.Static.Root)
	if err != nil {
		log.Warn("static files disabled", slog.String("root", cfg.Static.Root), sl.Err(err))
	} else {
		defer staticRoot.Close()
		deps.StaticRoot = staticRoot
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router.New(log, cfg, deps),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting server",
		slog.String("address", cfg.HTTPServer.Address),
		slog.String("vectorizer", cfg.Vectorizer.Endpoint),
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			done <- syscall.SIGTERM
		}
	}()

	log.Info("server started")

	<-done
	log.Info("stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("failed to stop server", sl.Err(err))

		return
	}

	log.Info("server stopped")
}
