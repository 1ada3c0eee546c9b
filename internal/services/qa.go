package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/logger"
	"alfredoptarigan/resume-intake/internal/models"
)

const maxQuestionChars = 1000

// QAService answers free-text questions about one stored candidate. It keeps no state between calls.
type QAService interface {
	Answer(ctx context.Context, candidate *models.Candidate, question string) (string, error)
}

type qaService struct {
	generator TextGenerator
	model     string
	prompts   *PromptBuilder
	log       zerolog.Logger
}

func NewQAService(generator TextGenerator, model string) QAService {
	return &qaService{
		generator: generator,
		model:     model,
		prompts:   NewPromptBuilder(),
		log:       logger.Component("qa"),
	}
}

// ValidateQuestion trims the question and enforces its length bounds.
func ValidateQuestion(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperror.Validation("question is required")
	}
	if utf8.RuneCountInString(question) > maxQuestionChars {
		return "", apperror.Validationf("question must be at most %d characters", maxQuestionChars)
	}
	return question, nil
}

// Answer implements QAService.
func (q *qaService) Answer(ctx context.Context, candidate *models.Candidate, question string) (string, error) {
	question, err := ValidateQuestion(question)
	if err != nil {
		return "", err
	}

	start := time.Now()
	prompt := q.prompts.BuildQAPrompt(q.prompts.BuildCandidateContext(candidate), question)

	answer, err := q.generator.Generate(ctx, q.model, prompt, GenerateOptions{
		MaxNewTokens: 200,
		Temperature:  0.7,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrMalformedUpstream) {
			return "", apperror.QAMalformed(err)
		}
		return "", apperror.QAUnavailable(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		q.log.Error().Str("model", q.model).Str("candidate_id", candidate.ID).Msg("empty answer from model")
		return "", apperror.QAMalformed(errors.New("model returned an empty answer"))
	}

	q.log.Info().
		Str("candidate_id", candidate.ID).
		Str("model", q.model).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("question answered")

	return answer, nil
}
