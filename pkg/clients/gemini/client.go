package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Client generates text with a Gemini model through langchaingo.
type Client struct {
	llm     llms.Model
	timeout time.Duration
}

// NewClient creates a Gemini-backed text generator.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newClient(llm, timeout), nil
}

func newClient(llm llms.Model, timeout time.Duration) *Client {
	return &Client{llm: llm, timeout: timeout}
}

// Generate sends a single-prompt completion request.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return text, nil
}
