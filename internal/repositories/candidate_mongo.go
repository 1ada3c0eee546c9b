package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/logger"
	"alfredoptarigan/resume-intake/internal/models"
)

type mongoCandidateRepository struct {
	coll *mongo.Collection
	log  zerolog.Logger
}

func NewMongoCandidateRepository(coll *mongo.Collection) CandidateRepository {
	return &mongoCandidateRepository{
		coll: coll,
		log:  logger.Component("candidate_repository"),
	}
}

// EnsureCandidateIndexes creates the unique candidate_id index and the listing index.
func EnsureCandidateIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("candidate_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("created_at_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create candidate indexes: %w", err)
	}
	return nil
}

// Insert implements CandidateRepository.
func (r *mongoCandidateRepository) Insert(ctx context.Context, candidate *models.Candidate) error {
	candidate.CandidateID = candidate.ID
	candidate.Fields.Normalize()

	if _, err := r.coll.InsertOne(ctx, candidate); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.DocumentConflict(candidate.ID, err)
		}
		r.log.Error().Err(err).Str("candidate_id", candidate.ID).Msg("insert failed")
		return apperror.DocumentStoreUnavailable(err)
	}
	return nil
}

// List implements CandidateRepository.
func (r *mongoCandidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, apperror.DocumentStoreUnavailable(err)
	}
	defer cursor.Close(ctx)

	candidates := []models.Candidate{}
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, apperror.DocumentStoreUnavailable(err)
	}
	for i := range candidates {
		candidates[i].Fields.Normalize()
		candidates[i].CreatedAt = candidates[i].CreatedAt.UTC()
	}
	return candidates, nil
}

// FindByID implements CandidateRepository.
func (r *mongoCandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&candidate)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound(id)
		}
		return nil, apperror.DocumentStoreUnavailable(err)
	}
	candidate.Fields.Normalize()
	candidate.CreatedAt = candidate.CreatedAt.UTC()
	return &candidate, nil
}

func (r *mongoCandidateRepository) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return apperror.DocumentStoreUnavailable(err)
	}
	return nil
}
