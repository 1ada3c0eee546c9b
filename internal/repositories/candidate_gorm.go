package repositories

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/logger"
	"alfredoptarigan/resume-intake/internal/models"
)

type gormCandidateRepository struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewGormCandidateRepository(db *gorm.DB) CandidateRepository {
	return &gormCandidateRepository{
		db:  db,
		log: logger.Component("candidate_repository"),
	}
}

// Insert implements CandidateRepository.
func (r *gormCandidateRepository) Insert(ctx context.Context, candidate *models.Candidate) error {
	candidate.CandidateID = candidate.ID
	candidate.Fields.Normalize()

	record, err := models.NewCandidateRecord(candidate)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.DocumentConflict(candidate.ID, err)
		}
		r.log.Error().Err(err).Str("candidate_id", candidate.ID).Msg("insert failed")
		return apperror.DocumentStoreUnavailable(err)
	}
	return nil
}

// List implements CandidateRepository.
func (r *gormCandidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	var records []models.CandidateRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, apperror.DocumentStoreUnavailable(err)
	}

	candidates := make([]models.Candidate, 0, len(records))
	for i := range records {
		candidate, err := records[i].ToCandidate()
		if err != nil {
			return nil, apperror.DocumentStoreUnavailable(err)
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, nil
}

// FindByID implements CandidateRepository.
func (r *gormCandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	var record models.CandidateRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(id)
		}
		return nil, apperror.DocumentStoreUnavailable(err)
	}

	candidate, err := record.ToCandidate()
	if err != nil {
		return nil, apperror.DocumentStoreUnavailable(err)
	}
	return candidate, nil
}

func (r *gormCandidateRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperror.DocumentStoreUnavailable(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.DocumentStoreUnavailable(err)
	}
	return nil
}
