package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ErrService marks a completion-oracle failure: refused, blocked, errored or
// not configured. Handlers map it to 503.
var ErrService = errors.New("AI service error")

// Generator is the completion oracle: a prompt in, generated text out.
// jsonMode asks the model for a strict-JSON response.
type Generator interface {
	Complete(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

// GeminiClient backs Generator with Google's Gemini models. Construct once at
// startup and share; the underlying client is safe for concurrent use.
type GeminiClient struct {
	llm llms.Model
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing gemini client: %w", err)
	}
	return &GeminiClient{llm: llm}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(0.7)}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}
	return llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, opts...)
}
