package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for its environment.
// All problems are reported at once.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "is required"})
	}
	if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "") {
		errs = append(errs, ValidationError{Field: "DB_HOST", Message: "DB_HOST, DB_NAME and DB_USER are required when DATABASE_URL is not set"})
	}
	if cfg.LLMMaxTokens <= 0 {
		errs = append(errs, ValidationError{Field: "LLM_MAX_TOKENS", Message: "must be positive"})
	}
	if cfg.WineInfoMaxTokens <= 0 {
		errs = append(errs, ValidationError{Field: "LLM_WINE_INFO_MAX_TOKENS", Message: "must be positive"})
	}
	if cfg.LLMStreamTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "LLM_STREAM_TIMEOUT", Message: "must be positive"})
	}
	if cfg.RateLimitRequests < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_REQUESTS", Message: "must not be negative"})
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive when rate limiting is enabled"})
	}

	if cfg.Environment == Production || cfg.Environment == CI {
		if cfg.DatabaseURL == "" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{Field: "DB_PASSWORD", Message: "db_password secret is required"})
		}
	}
	if cfg.Environment == Production && cfg.OpenAIAPIKey == "" {
		errs = append(errs, ValidationError{Field: "OPENAI_API_KEY", Message: "openai_api_key secret is required"})
	}

	return errors.Join(errs...)
}
