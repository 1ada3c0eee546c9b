package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/config"
	"alfredoptarigan/resume-intake/internal/logger"
)

// errModelLoading is returned for the inference API's 503 while a cold model spins up.
var errModelLoading = errors.New("model is loading")

type huggingFaceService struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewHuggingFaceService calls the Hugging Face Inference API. Transport errors and 502/503/504 are
// retried at most retries times.
func NewHuggingFaceService(cfg config.HuggingFaceConfig, timeout time.Duration, retries int) TextGenerator {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			switch r.StatusCode() {
			case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				return true
			}
			return false
		})

	return &huggingFaceService{
		client: client,
		log:    logger.Component("huggingface"),
	}
}

// Generate implements TextGenerator.
func (h *huggingFaceService) Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	start := time.Now()

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"inputs": prompt,
			"parameters": map[string]interface{}{
				"max_new_tokens":   opts.MaxNewTokens,
				"temperature":      opts.Temperature,
				"return_full_text": false,
			},
		}).
		Post("/" + model)
	if err != nil {
		h.log.Warn().Err(err).Str("model", model).Msg("inference request failed")
		return "", apperror.New("", "model request failed", apperror.ErrUpstreamUnavailable, err)
	}

	h.log.Debug().
		Str("model", model).
		Int("status", resp.StatusCode()).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("inference response")

	if resp.StatusCode() == http.StatusServiceUnavailable {
		return "", apperror.New("", "model is loading", apperror.ErrUpstreamUnavailable,
			fmt.Errorf("%w: %s", errModelLoading, truncate(resp.String(), 300)))
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", apperror.New("", "model request failed", apperror.ErrUpstreamUnavailable,
			fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 300)))
	}

	text, ok := generatedText(resp.Body())
	if !ok {
		h.log.Error().Str("model", model).Str("payload", truncate(resp.String(), 500)).Msg("unrecognised inference response")
		return "", apperror.New("", "model returned an unrecognised response", apperror.ErrMalformedUpstream,
			fmt.Errorf("unrecognised response shape: %s", truncate(resp.String(), 200)))
	}
	return text, nil
}

// generatedText reads the known response shapes of text-generation endpoints.
func generatedText(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	root := gjson.ParseBytes(body)

	for _, path := range []string{"0.generated_text", "0.text", "generated_text"} {
		if v := root.Get(path); v.Exists() && v.Type == gjson.String {
			return strings.TrimSpace(v.String()), true
		}
	}
	if root.Type == gjson.String {
		return strings.TrimSpace(root.String()), true
	}
	return "", false
}
