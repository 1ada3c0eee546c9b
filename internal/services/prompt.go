package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/resume-intake/internal/models"
)

const (
	maxExtractionInputChars = 6000
	maxQAContextRawChars    = 4000
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt asks the extraction model for a single JSON object describing the resume.
func (pb *PromptBuilder) BuildExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an assistant that extracts structured data from resumes.

Read the resume below and return ONLY a JSON object with exactly these keys:
{
  "name": "<full name or empty string>",
  "email": "<email address or empty string>",
  "phone": "<phone number or empty string>",
  "introduction": "<short professional summary, at most 500 characters>",
  "education": [{"degree": "", "institution": "", "year": ""}],
  "experience": [{"title": "", "company": "", "duration": "", "description": ""}],
  "skills": ["<skill>"],
  "certifications": ["<certification>"],
  "projects": ["<project>"],
  "hobbies": ["<hobby>"]
}

Use empty strings and empty arrays for anything the resume does not mention. Do not invent details.

RESUME:
%s

JSON:`, truncate(resumeText, maxExtractionInputChars))
}

// BuildQAPrompt frames a question about one candidate.
func (pb *PromptBuilder) BuildQAPrompt(context, question string) string {
	return fmt.Sprintf(`Based on the following candidate information, answer the question accurately and concisely.

Candidate Information:
%s

Question: %s

Answer:`, context, question)
}

// BuildCandidateContext flattens a stored record into the text handed to the Q&A model.
func (pb *PromptBuilder) BuildCandidateContext(c *models.Candidate) string {
	var parts []string
	f := c.Fields

	if f.Name != "" {
		parts = append(parts, "Name: "+f.Name)
	}
	if f.Email != "" {
		parts = append(parts, "Email: "+f.Email)
	}
	if f.Phone != "" {
		parts = append(parts, "Phone: "+f.Phone)
	}
	if f.Introduction != "" {
		parts = append(parts, "Introduction: "+f.Introduction)
	}
	if len(f.Education) > 0 {
		parts = append(parts, "Education: "+mustJSON(f.Education))
	}
	if len(f.Experience) > 0 {
		parts = append(parts, "Experience: "+mustJSON(f.Experience))
	}
	if len(f.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(f.Skills, ", "))
	}
	if len(f.Certifications) > 0 {
		parts = append(parts, "Certifications: "+strings.Join(f.Certifications, ", "))
	}
	if len(f.Projects) > 0 {
		parts = append(parts, "Projects: "+strings.Join(f.Projects, ", "))
	}
	if len(f.Hobbies) > 0 {
		parts = append(parts, "Hobbies: "+strings.Join(f.Hobbies, ", "))
	}
	if c.RawText != "" {
		parts = append(parts, "Resume Text:\n"+truncate(c.RawText, maxQAContextRawChars))
	}

	return strings.Join(parts, "\n")
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
