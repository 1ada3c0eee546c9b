package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-intake/internal/app"
	"alfredoptarigan/resume-intake/internal/config"
	"alfredoptarigan/resume-intake/internal/logger"
	"alfredoptarigan/resume-intake/internal/models"
	"alfredoptarigan/resume-intake/internal/services"
)

func main() {
	dir := flag.String("dir", "./resumes", "directory containing .pdf and .docx resumes")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()
	deps, err := app.Wire(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}

	log.Info().Str("dir", *dir).Msg("Starting resume ingestion")
	successCount, failCount, err := run(ctx, deps.Ingestion, deps.Cleanup, *dir)
	deps.Close(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read resume directory")
	}

	log.Info().
		Int("succeeded", successCount).
		Int("failed", failCount).
		Msg("Ingestion complete")

	if failCount > 0 {
		os.Exit(1)
	}
}

// run ingests dir with the cleanup worker running. Stop waits for queued blob deletes,
// so a failed compensation is retried or logged as orphaned before the process exits.
func run(ctx context.Context, ingestion services.IngestionService, cleanup services.CleanupWorker, dir string) (int, int, error) {
	cleanup.Start(ctx)
	defer cleanup.Stop()

	return ingestDir(ctx, ingestion, dir)
}

// ingestDir runs every supported file in dir through the ingestion saga, in name order.
func ingestDir(ctx context.Context, ingestion services.IngestionService, dir string) (int, int, error) {
	files, err := resumeFiles(dir)
	if err != nil {
		return 0, 0, err
	}

	successCount := 0
	failCount := 0
	for _, path := range files {
		name := filepath.Base(path)

		content, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("Failed to read file")
			failCount++
			continue
		}

		candidate, err := ingestion.Ingest(ctx, services.UploadInput{
			Filename:    name,
			ContentType: services.ContentTypeFor(models.DocumentTypeFromFilename(name)),
			Content:     content,
		})
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("Failed to ingest resume")
			failCount++
			continue
		}

		log.Info().
			Str("file", name).
			Str("candidate_id", candidate.ID).
			Str("name", candidate.Fields.Name).
			Msg("Resume ingested")
		successCount++
	}

	return successCount, failCount, nil
}

func resumeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || models.DocumentTypeFromFilename(entry.Name()) == "" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
