package repositories

import (
	"context"

	"alfredoptarigan/resume-intake/internal/models"
)

// CandidateRepository is the document store for candidate records. Records are insert-only.
type CandidateRepository interface {
	Insert(ctx context.Context, candidate *models.Candidate) error
	List(ctx context.Context) ([]models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	Ping(ctx context.Context) error
}
