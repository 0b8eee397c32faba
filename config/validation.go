package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig rejects malformed values. Missing engine or LLM settings are
// not errors: the features that need them degrade instead.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.Kestra.Configured() {
		u, err := url.Parse(cfg.Kestra.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{Field: "KESTRA_URL", Message: "must be an absolute URL"})
		}
	}
	if cfg.Kestra.PollInterval <= 0 {
		errs = append(errs, ValidationError{Field: "KESTRA_POLL_INTERVAL", Message: "must be positive"})
	}
	if cfg.Kestra.PollMaxAttempts <= 0 {
		errs = append(errs, ValidationError{Field: "KESTRA_POLL_MAX_ATTEMPTS", Message: "must be positive"})
	}
	if cfg.Kestra.HTTPTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "KESTRA_HTTP_TIMEOUT", Message: "must be positive"})
	}

	switch cfg.Gemini.Transport {
	case "rest", "sdk":
	default:
		errs = append(errs, ValidationError{Field: "GEMINI_TRANSPORT", Message: "must be rest or sdk"})
	}

	if cfg.PipelineRateLimit < 0 {
		errs = append(errs, ValidationError{Field: "PIPELINE_RATE_LIMIT", Message: "must not be negative"})
	}

	if GetEnvironment() == Production && cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "is required in production"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
