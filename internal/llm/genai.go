package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
)

// sdkClient talks to Gemini through the official Go SDK
type sdkClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewSDKClient creates a Gemini client backed by generative-ai-go
func NewSDKClient(ctx context.Context, cfg config.GeminiConfig) (TextGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}
	return &sdkClient{client: client, model: client.GenerativeModel(model)}, nil
}

// GenerateContent sends a prompt to the model and returns the generated text.
// An empty answer is returned as "" so the caller decides how to treat it.
func (c *sdkClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("generated content is not text")
	}
	return string(text), nil
}

// Close closes the underlying Gemini client
func (c *sdkClient) Close() error {
	return c.client.Close()
}
