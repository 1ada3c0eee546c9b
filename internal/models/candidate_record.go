package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// CandidateRecord is the relational row for a Candidate when Postgres is the document store.
type CandidateRecord struct {
	ID          string         `gorm:"type:text;primaryKey"`
	Filename    string         `gorm:"type:text;not null"`
	ContentType string         `gorm:"type:text"`
	Size        int64          `gorm:"not null"`
	BlobKey     string         `gorm:"type:text;not null"`
	BlobURL     string         `gorm:"type:text;not null"`
	Fields      datatypes.JSON `gorm:"type:jsonb;not null"`
	RawText     string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"not null;index:idx_candidates_created_at"`
}

func (CandidateRecord) TableName() string {
	return "candidates"
}

func NewCandidateRecord(c *Candidate) (*CandidateRecord, error) {
	fields, err := json.Marshal(c.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode candidate fields: %w", err)
	}
	return &CandidateRecord{
		ID:          c.ID,
		Filename:    c.Filename,
		ContentType: c.ContentType,
		Size:        c.Size,
		BlobKey:     c.BlobKey,
		BlobURL:     c.BlobURL,
		Fields:      datatypes.JSON(fields),
		RawText:     c.RawText,
		CreatedAt:   c.CreatedAt,
	}, nil
}

func (r *CandidateRecord) ToCandidate() (*Candidate, error) {
	var fields CandidateFields
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode candidate fields: %w", err)
		}
	}
	fields.Normalize()
	return &Candidate{
		ID:          r.ID,
		CandidateID: r.ID,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Size:        r.Size,
		BlobKey:     r.BlobKey,
		BlobURL:     r.BlobURL,
		Fields:      fields,
		RawText:     r.RawText,
		CreatedAt:   r.CreatedAt.UTC(),
	}, nil
}
