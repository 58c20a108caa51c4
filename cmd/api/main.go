package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/character-explorer/internal/app"
	"github.com/user/character-explorer/internal/delivery/http/handler"
	"github.com/user/character-explorer/internal/delivery/http/router"
	"github.com/user/character-explorer/pkg/config"
	"github.com/user/character-explorer/pkg/logger"
	"github.com/user/character-explorer/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	// --- Logger ---
	log := logger.Init(os.Stdout, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	log.Info("Logger initialized", zap.String("level", cfg.LogLevel))

	// --- Metrics ---
	metrics.Init()
	log.Info("Metrics initialized")

	// --- Adapters and use cases ---
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}

	if cfg.PrerenderOnStart {
		go func() {
			report, err := application.Prerender.Run(ctx)
			if err != nil {
				log.Warn("prerender aborted", zap.Error(err))
				return
			}
			log.Info("prerender finished",
				zap.Int("rendered", report.Rendered),
				zap.Int("failed", report.Failed),
				zap.Duration("duration", report.Duration),
			)
		}()
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(handler.Dependencies{
		Catalog:    application.Catalog,
		Pages:      application.Pages,
		PageCache:  application.PageCache,
		Renderer:   application.Renderer,
		Logger:     log.Named("http"),
		DebounceMS: cfg.SearchDebounceMS,
		Checks:     application.Checks,
	})
	httpRouter := router.New(apiHandler, log.Named("http"))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	application.Close()

	log.Info("server exiting")
}
