// Package llm calls the Gemini text API directly. It backs the recipe
// pipeline when no workflow engine is configured.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
)

// TextGenerator turns a prompt into unstructured text
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// APIError is a non-2xx answer from the model endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error: status=%d body=%s", e.StatusCode, e.Body)
}

// New returns the generator selected by cfg.Transport, or nil when no API key
// is configured.
func New(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client, logger *slog.Logger) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Transport {
	case "sdk":
		logger.Info("using gemini sdk transport", "model", cfg.Model)
		return NewSDKClient(ctx, cfg)
	default:
		logger.Info("using gemini rest transport", "model", cfg.Model)
		return NewRESTClient(cfg, httpClient), nil
	}
}
