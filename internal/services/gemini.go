package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/config"
	"alfredoptarigan/resume-intake/internal/logger"
)

const geminiRetryDelay = time.Second

type generateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type geminiService struct {
	generate   generateContentFunc
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	log        zerolog.Logger
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration, retries int) (TextGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models.GenerateContent, timeout, retries, geminiRetryDelay), nil
}

func newGeminiService(generate generateContentFunc, timeout time.Duration, retries int, retryDelay time.Duration) *geminiService {
	return &geminiService{
		generate:   generate,
		timeout:    timeout,
		maxRetries: retries + 1,
		retryDelay: retryDelay,
		log:        logger.Component("gemini"),
	}
}

// Generate implements TextGenerator.
func (g *geminiService) Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		result, err := g.generateOnce(ctx, model, prompt, opts)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", apperror.New("", "model request cancelled", apperror.ErrUpstreamUnavailable, ctx.Err())
		}
		if attempt == g.maxRetries {
			break
		}

		g.log.Warn().Err(err).Int("attempt", attempt).Str("model", model).Msg("generation failed, retrying")

		timer := time.NewTimer(g.retryDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", apperror.New("", "model request cancelled", apperror.ErrUpstreamUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	return "", apperror.New("", "model request failed", apperror.ErrUpstreamUnavailable,
		fmt.Errorf("failed after %d attempts: %w", g.maxRetries, lastErr))
}

func (g *geminiService) generateOnce(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := opts.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(opts.MaxNewTokens),
	}

	resp, err := g.generate(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	return strings.TrimSpace(resp.Text()), nil
}
