package services

import "context"

type GenerateOptions struct {
	MaxNewTokens int
	Temperature  float32
}

// TextGenerator calls a hosted text-generation model.
// Errors are apperror classes: ErrUpstreamUnavailable for transport and non-2xx failures,
// ErrMalformedUpstream when a 2xx response carries no usable text.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error)
}
