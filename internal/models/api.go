package models

import "time"

const introductionPreviewLength = 200

type UploadResponse struct {
	Message     string          `json:"message"`
	CandidateID string          `json:"candidate_id"`
	Filename    string          `json:"filename"`
	BlobURL     string          `json:"blob_url"`
	Summary     CandidateFields `json:"summary"`
}

type CandidateSummary struct {
	CandidateID  string    `json:"candidate_id"`
	Filename     string    `json:"filename"`
	Name         string    `json:"name"`
	Skills       []string  `json:"skills"`
	Introduction string    `json:"introduction"`
	CreatedAt    time.Time `json:"created_at"`
}

type CandidateListResponse struct {
	Count      int                `json:"count"`
	Candidates []CandidateSummary `json:"candidates"`
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	CandidateID string `json:"candidate_id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Kind  string `json:"kind,omitempty"`
}

func NewCandidateSummary(c Candidate) CandidateSummary {
	skills := c.Fields.Skills
	if skills == nil {
		skills = []string{}
	}
	return CandidateSummary{
		CandidateID:  c.ID,
		Filename:     c.Filename,
		Name:         c.Fields.Name,
		Skills:       skills,
		Introduction: previewIntroduction(c.Fields.Introduction),
		CreatedAt:    c.CreatedAt,
	}
}

func previewIntroduction(intro string) string {
	runes := []rune(intro)
	if len(runes) <= introductionPreviewLength {
		return intro
	}
	return string(runes[:introductionPreviewLength]) + "..."
}
