package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-intake/internal/app"
	"alfredoptarigan/resume-intake/internal/config"
	"alfredoptarigan/resume-intake/internal/handlers"
	"alfredoptarigan/resume-intake/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().Str("env", cfg.Server.Env).Msg("Config loaded successfully")

	ctx := context.Background()

	deps, err := app.Wire(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}

	// Start orphan-blob cleanup worker
	deps.Cleanup.Start(ctx)
	log.Info().Int("concurrency", cfg.Cleanup.Concurrency).Msg("Cleanup worker started")

	server := handlers.NewApp(handlers.AppConfig{
		AppName:         "Resume Intake API",
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		MaxFileSize:     cfg.Upload.MaxFileSize,
		RateLimitMax:    cfg.Server.RateLimitMax,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	}, handlers.Handlers{
		Upload:     handlers.NewUploadHandler(deps.Ingestion, cfg.Upload.MaxFileSize),
		Candidates: handlers.NewCandidateHandler(deps.Repo),
		Ask:        handlers.NewAskHandler(deps.Repo, deps.QA),
		Health:     handlers.NewHealthHandler(deps.Repo),
	})
	log.Info().Msg("Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Shutting down server...")
		if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("Server starting")

	if err := server.Listen(addr); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	// In-flight requests are done, so no new orphans can be queued.
	deps.Cleanup.Stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	deps.Close(closeCtx)
	log.Info().Msg("Server exited")
}
