package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/config"
	"alfredoptarigan/resume-intake/internal/logger"
	"alfredoptarigan/resume-intake/internal/models"
)

const maxIntroductionChars = 500

// ExtractionService turns an uploaded document into structured candidate fields.
type ExtractionService interface {
	Submit(ctx context.Context, content []byte, docType models.DocumentType) (*models.ExtractionResult, error)
}

type extractionService struct {
	textExtractor TextExtractor
	generator     TextGenerator
	model         string
	mode          string
	prompts       *PromptBuilder
	schema        *jsonschema.Schema
	log           zerolog.Logger
}

var stringOrNull = map[string]any{"type": []string{"string", "null"}}

var listField = map[string]any{
	"type":  []string{"array", "string", "null"},
	"items": map[string]any{"type": []string{"string", "number", "object", "boolean", "null"}},
}

var recordListField = map[string]any{
	"type":  []string{"array", "object", "string", "null"},
	"items": map[string]any{"type": []string{"object", "string", "boolean", "null"}},
}

var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":           stringOrNull,
		"email":          stringOrNull,
		"phone":          map[string]any{"type": []string{"string", "number", "null"}},
		"introduction":   stringOrNull,
		"education":      recordListField,
		"experience":     recordListField,
		"skills":         listField,
		"certifications": listField,
		"projects":       listField,
		"hobbies":        listField,
	},
}

// NewExtractionService builds the extraction client. generator may be nil in rules mode.
func NewExtractionService(textExtractor TextExtractor, generator TextGenerator, model, mode string) (ExtractionService, error) {
	if mode == config.ExtractionModeModel && generator == nil {
		return nil, fmt.Errorf("extraction mode %q requires a text generator", mode)
	}

	schema, err := compileSchema("extraction.json", extractionSchema)
	if err != nil {
		return nil, err
	}

	return &extractionService{
		textExtractor: textExtractor,
		generator:     generator,
		model:         model,
		mode:          mode,
		prompts:       NewPromptBuilder(),
		schema:        schema,
		log:           logger.Component("extraction"),
	}, nil
}

// Submit implements ExtractionService.
func (e *extractionService) Submit(ctx context.Context, content []byte, docType models.DocumentType) (*models.ExtractionResult, error) {
	text, err := e.textExtractor.Extract(content, docType)
	if err != nil {
		return nil, err
	}

	if e.mode == config.ExtractionModeRules {
		fields := ExtractWithRules(text)
		return &models.ExtractionResult{Fields: fields, RawText: text, Model: "rules"}, nil
	}

	start := time.Now()
	output, err := e.generator.Generate(ctx, e.model, e.prompts.BuildExtractionPrompt(text), GenerateOptions{
		MaxNewTokens: 1024,
		Temperature:  0.1,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrMalformedUpstream) {
			return nil, apperror.ExtractionMalformed(err)
		}
		return nil, apperror.ExtractionUnavailable(err)
	}

	fields, err := e.parse(output)
	if err != nil {
		e.log.Error().
			Err(err).
			Str("model", e.model).
			Str("payload", truncate(output, 500)).
			Msg("extraction output rejected")
		return nil, apperror.ExtractionMalformed(err)
	}

	e.log.Info().
		Str("model", e.model).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("resume extracted")

	return &models.ExtractionResult{Fields: fields, RawText: text, Model: e.model}, nil
}

func (e *extractionService) parse(output string) (models.CandidateFields, error) {
	jsonStr := extractJSON(output)
	if !gjson.Valid(jsonStr) {
		return models.CandidateFields{}, fmt.Errorf("model output is not JSON")
	}

	var v any
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		return models.CandidateFields{}, fmt.Errorf("unmarshal model output: %w", err)
	}
	if err := e.schema.Validate(v); err != nil {
		return models.CandidateFields{}, fmt.Errorf("model output does not match schema: %w", err)
	}

	return DecodeCandidateFields(gjson.Parse(jsonStr)), nil
}

// DecodeCandidateFields reads an extraction object leniently. Every missing field defaults to empty.
func DecodeCandidateFields(root gjson.Result) models.CandidateFields {
	fields := models.CandidateFields{
		Name:           strings.TrimSpace(root.Get("name").String()),
		Email:          strings.TrimSpace(root.Get("email").String()),
		Phone:          strings.TrimSpace(root.Get("phone").String()),
		Introduction:   truncate(strings.TrimSpace(root.Get("introduction").String()), maxIntroductionChars),
		Education:      decodeEducation(root.Get("education")),
		Experience:     decodeExperience(root.Get("experience")),
		Skills:         dedupe(stringList(root.Get("skills"))),
		Certifications: stringList(root.Get("certifications")),
		Projects:       stringList(root.Get("projects")),
		Hobbies:        stringList(root.Get("hobbies")),
	}
	fields.Normalize()
	return fields
}

func stringList(v gjson.Result) []string {
	out := []string{}
	switch {
	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			if isFiller(item) {
				return true
			}
			var s string
			if item.IsObject() {
				s = firstString(item, "name", "title", "value")
			} else {
				s = item.String()
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			return true
		})
	case v.Type == gjson.String:
		for _, part := range strings.FieldsFunc(v.String(), func(r rune) bool { return r == ',' || r == '\n' || r == ';' }) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func records(v gjson.Result) []gjson.Result {
	switch {
	case v.IsArray():
		return v.Array()
	case v.IsObject(), v.Type == gjson.String:
		return []gjson.Result{v}
	}
	return nil
}

func decodeEducation(v gjson.Result) []models.Education {
	out := []models.Education{}
	for _, item := range records(v) {
		if isFiller(item) {
			continue
		}
		var edu models.Education
		if item.IsObject() {
			edu = models.Education{
				Degree:      firstString(item, "degree", "qualification", "title"),
				Institution: firstString(item, "institution", "school", "university"),
				Year:        firstString(item, "year", "graduation_year", "end_date"),
			}
		} else {
			edu.Degree = strings.TrimSpace(item.String())
		}
		if edu != (models.Education{}) {
			out = append(out, edu)
		}
	}
	return out
}

func decodeExperience(v gjson.Result) []models.Experience {
	out := []models.Experience{}
	for _, item := range records(v) {
		if isFiller(item) {
			continue
		}
		var exp models.Experience
		if item.IsObject() {
			exp = models.Experience{
				Title:       firstString(item, "title", "role", "position"),
				Company:     firstString(item, "company", "employer", "organization"),
				Duration:    firstString(item, "duration", "dates", "period"),
				Description: firstString(item, "description", "summary", "responsibilities"),
			}
		} else {
			exp.Title = strings.TrimSpace(item.String())
		}
		if exp != (models.Experience{}) {
			out = append(out, exp)
		}
	}
	return out
}

// isFiller reports list items that carry no value, like null or a stray boolean.
func isFiller(item gjson.Result) bool {
	return item.Type == gjson.Null || item.Type == gjson.True || item.Type == gjson.False
}

func firstString(obj gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := obj.Get(key); v.Exists() && v.Type != gjson.Null {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// extractJSON pulls the JSON object out of model text that may be wrapped in markdown.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
