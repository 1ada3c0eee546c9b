package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-intake/internal/config"
	"alfredoptarigan/resume-intake/internal/repositories"
	"alfredoptarigan/resume-intake/internal/services"
)

// Dependencies holds the wired services shared by the API server and the bulk ingest command.
type Dependencies struct {
	Repo      repositories.CandidateRepository
	Blobs     services.BlobStore
	Ingestion services.IngestionService
	QA        services.QAService
	Cleanup   services.CleanupWorker

	closers []func(context.Context) error
}

// Wire connects the configured stores and model provider. The cleanup worker is created but not started.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	repo, err := deps.initDocumentStore(ctx, cfg)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}
	deps.Repo = repo
	log.Info().Str("document_store", cfg.Server.DocumentStore).Msg("Document store initialized")

	blobs, err := initBlobStore(ctx, cfg)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}
	deps.Blobs = blobs
	log.Info().Str("blob_store", cfg.Blob.Backend).Msg("Blob store initialized")

	generator, err := initGenerator(ctx, cfg)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}
	extractionModel, qaModel := cfg.ModelNames()
	log.Info().
		Str("provider", cfg.Model.Provider).
		Str("extraction_model", extractionModel).
		Str("qa_model", qaModel).
		Msg("Model provider initialized")

	extraction, err := services.NewExtractionService(services.NewTextExtractor(), generator, extractionModel, cfg.Model.ExtractionMode)
	if err != nil {
		deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize extraction: %w", err)
	}

	deps.Cleanup = services.NewCleanupWorker(blobs, services.CleanupOptions{
		Concurrency: cfg.Cleanup.Concurrency,
		MaxAttempts: cfg.Cleanup.MaxAttempts,
		RetryDelay:  cfg.Cleanup.RetryDelay,
	})
	deps.Ingestion = services.NewIngestionService(extraction, blobs, repo, deps.Cleanup, services.IngestionOptions{
		MaxFileSize: cfg.Upload.MaxFileSize,
	})
	deps.QA = services.NewQAService(generator, qaModel)
	log.Info().Str("extraction_mode", cfg.Model.ExtractionMode).Msg("Services initialized")

	return deps, nil
}

// Close releases store connections in reverse order of creation.
func (d *Dependencies) Close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("failed to close dependency")
		}
	}
	d.closers = nil
}

func (d *Dependencies) initDocumentStore(ctx context.Context, cfg *config.Config) (repositories.CandidateRepository, error) {
	switch cfg.Server.DocumentStore {
	case config.DocumentStorePostgres:
		db, err := config.InitPostgres(cfg)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		return repositories.NewGormCandidateRepository(db), nil
	default:
		client, coll, err := config.InitMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, client.Disconnect)

		indexCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
		defer cancel()
		if err := repositories.EnsureCandidateIndexes(indexCtx, coll); err != nil {
			return nil, fmt.Errorf("failed to create candidate indexes: %w", err)
		}
		return repositories.NewMongoCandidateRepository(coll), nil
	}
}

func initBlobStore(ctx context.Context, cfg *config.Config) (services.BlobStore, error) {
	switch cfg.Blob.Backend {
	case config.BlobStoreS3:
		return services.NewS3Storage(cfg.S3)
	case config.BlobStoreLocal:
		return services.NewLocalStorage(cfg.Blob.UploadPath)
	default:
		storage := services.NewSupabaseStorage(cfg.Supabase, cfg.Blob.Timeout)
		bucketCtx, cancel := context.WithTimeout(ctx, cfg.Blob.Timeout)
		defer cancel()
		if err := storage.EnsureBucket(bucketCtx); err != nil {
			// The bucket may already exist under a key without admin rights.
			log.Warn().Err(err).Str("bucket", cfg.Supabase.Bucket).Msg("Could not verify storage bucket")
		}
		return storage, nil
	}
}

func initGenerator(ctx context.Context, cfg *config.Config) (services.TextGenerator, error) {
	switch cfg.Model.Provider {
	case config.ProviderGemini:
		generator, err := services.NewGeminiService(ctx, cfg.Gemini, cfg.Model.Timeout, cfg.Model.Retries)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
		}
		return generator, nil
	default:
		return services.NewHuggingFaceService(cfg.HuggingFace, cfg.Model.Timeout, cfg.Model.Retries), nil
	}
}
