package models

import (
	"strings"
	"time"
)

type DocumentType string

const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeDOCX DocumentType = "docx"
)

// DocumentTypeFromFilename returns the document type for a filename's extension, or "" when unsupported.
func DocumentTypeFromFilename(filename string) DocumentType {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	switch DocumentType(strings.ToLower(filename[idx+1:])) {
	case DocumentTypePDF:
		return DocumentTypePDF
	case DocumentTypeDOCX:
		return DocumentTypeDOCX
	}
	return ""
}

// Candidate is the persisted record of one uploaded resume. It is written once and never updated.
type Candidate struct {
	ID          string          `bson:"_id" json:"candidate_id"`
	CandidateID string          `bson:"candidate_id" json:"-"`
	Filename    string          `bson:"filename" json:"filename"`
	ContentType string          `bson:"content_type" json:"content_type"`
	Size        int64           `bson:"size" json:"size"`
	BlobKey     string          `bson:"blob_key" json:"blob_key"`
	BlobURL     string          `bson:"blob_url" json:"blob_url"`
	Fields      CandidateFields `bson:"fields" json:"fields"`
	RawText     string          `bson:"raw_text" json:"raw_text"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}

type CandidateFields struct {
	Name           string       `bson:"name" json:"name"`
	Email          string       `bson:"email" json:"email"`
	Phone          string       `bson:"phone" json:"phone"`
	Introduction   string       `bson:"introduction" json:"introduction"`
	Education      []Education  `bson:"education" json:"education"`
	Experience     []Experience `bson:"experience" json:"experience"`
	Skills         []string     `bson:"skills" json:"skills"`
	Certifications []string     `bson:"certifications" json:"certifications"`
	Projects       []string     `bson:"projects" json:"projects"`
	Hobbies        []string     `bson:"hobbies" json:"hobbies"`
}

type Education struct {
	Degree      string `bson:"degree" json:"degree"`
	Institution string `bson:"institution" json:"institution"`
	Year        string `bson:"year" json:"year"`
}

type Experience struct {
	Title       string `bson:"title" json:"title"`
	Company     string `bson:"company" json:"company"`
	Duration    string `bson:"duration" json:"duration"`
	Description string `bson:"description" json:"description"`
}

// Normalize replaces nil slices with empty ones so records always serialise with every field present.
func (f *CandidateFields) Normalize() {
	if f.Education == nil {
		f.Education = []Education{}
	}
	if f.Experience == nil {
		f.Experience = []Experience{}
	}
	if f.Skills == nil {
		f.Skills = []string{}
	}
	if f.Certifications == nil {
		f.Certifications = []string{}
	}
	if f.Projects == nil {
		f.Projects = []string{}
	}
	if f.Hobbies == nil {
		f.Hobbies = []string{}
	}
}

// IsEmpty reports whether extraction produced nothing usable.
func (f CandidateFields) IsEmpty() bool {
	return f.Name == "" && f.Email == "" && f.Phone == "" && f.Introduction == "" &&
		len(f.Education) == 0 && len(f.Experience) == 0 && len(f.Skills) == 0 &&
		len(f.Certifications) == 0 && len(f.Projects) == 0 && len(f.Hobbies) == 0
}

// ExtractionResult is what the extraction client hands back to ingestion.
type ExtractionResult struct {
	Fields  CandidateFields
	RawText string
	Model   string
}
