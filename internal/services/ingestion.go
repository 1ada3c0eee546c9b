package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/logger"
	"alfredoptarigan/resume-intake/internal/models"
	"alfredoptarigan/resume-intake/internal/repositories"
)

const defaultCompensationTimeout = 15 * time.Second

// IngestionService runs the upload saga: validate, extract, store the blob, insert the record.
// A failed insert is compensated by deleting the blob, so no partial record is ever visible.
type IngestionService interface {
	Ingest(ctx context.Context, in UploadInput) (*models.Candidate, error)
}

// OrphanQueue receives blob keys whose compensating delete failed.
type OrphanQueue interface {
	Enqueue(key string)
}

type IngestionOptions struct {
	MaxFileSize         int64
	CompensationTimeout time.Duration
	Now                 func() time.Time
	NewID               func() string
}

type ingestionService struct {
	extraction ExtractionService
	blobs      BlobStore
	repo       repositories.CandidateRepository
	orphans    OrphanQueue
	opts       IngestionOptions
	log        zerolog.Logger
}

// NewIngestionService wires the saga. orphans may be nil, in which case failed compensations are only logged.
func NewIngestionService(
	extraction ExtractionService,
	blobs BlobStore,
	repo repositories.CandidateRepository,
	orphans OrphanQueue,
	opts IngestionOptions,
) IngestionService {
	if opts.CompensationTimeout <= 0 {
		opts.CompensationTimeout = defaultCompensationTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}

	return &ingestionService{
		extraction: extraction,
		blobs:      blobs,
		repo:       repo,
		orphans:    orphans,
		opts:       opts,
		log:        logger.Component("ingestion"),
	}
}

// Ingest implements IngestionService.
func (s *ingestionService) Ingest(ctx context.Context, in UploadInput) (*models.Candidate, error) {
	docType, err := ValidateUpload(in, s.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}

	extracted, err := s.extraction.Submit(ctx, in.Content, docType)
	if err != nil {
		s.log.Warn().Err(err).Str("filename", in.Filename).Msg("extraction failed")
		return nil, err
	}

	now := s.opts.Now().UTC().Truncate(time.Millisecond)
	id := s.opts.NewID()
	key := BlobKey(now, id, in.Filename)
	contentType := ContentTypeFor(docType)

	url, err := s.blobs.Store(ctx, key, in.Content, contentType)
	if err != nil {
		s.log.Error().Err(err).Str("blob_key", key).Msg("blob upload failed")
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		s.log.Error().Str("blob_key", key).Msg("blob store returned no URL, removing blob")
		s.compensate(key)
		return nil, apperror.BlobStoreUnavailable(errors.New("blob store returned an empty URL"))
	}

	fields := extracted.Fields
	fields.Normalize()

	candidate := &models.Candidate{
		ID:          id,
		CandidateID: id,
		Filename:    in.Filename,
		ContentType: contentType,
		Size:        int64(len(in.Content)),
		BlobKey:     key,
		BlobURL:     url,
		Fields:      fields,
		RawText:     extracted.RawText,
		CreatedAt:   now,
	}

	if err := s.repo.Insert(ctx, candidate); err != nil {
		s.log.Error().Err(err).Str("candidate_id", id).Str("blob_key", key).Msg("document insert failed, removing blob")
		s.compensate(key)
		return nil, err
	}

	s.log.Info().
		Str("candidate_id", id).
		Str("filename", in.Filename).
		Str("blob_key", key).
		Str("model", extracted.Model).
		Msg("candidate ingested")

	return candidate, nil
}

// compensate deletes the blob with its own deadline so a cancelled request still cleans up.
func (s *ingestionService) compensate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.CompensationTimeout)
	defer cancel()

	if err := s.blobs.Delete(ctx, key); err != nil {
		if s.orphans != nil {
			s.log.Warn().Err(err).Str("blob_key", key).Msg("blob delete failed, queued for cleanup")
			s.orphans.Enqueue(key)
			return
		}
		s.log.Error().Err(err).Str("blob_key", key).Msg("blob delete failed, blob orphaned")
	}
}
