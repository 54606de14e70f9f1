package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/bartoszbak/mcqs-helper/internal/limiter"
)

// Config holds all configuration for the relay
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Third-party credentials
	ResendAPIKey     string `json:"-"` // Don't expose in JSON
	GeminiAPIKey     string `json:"-"` // Don't expose in JSON
	PerplexityAPIKey string `json:"-"` // Don't expose in JSON

	// Gemini settings
	GeminiModel string `json:"gemini_model"`

	// Email settings
	DefaultFromEmail   string `json:"default_from_email"`
	DefaultSubjectLine string `json:"default_subject_line"`

	// Rate limiting, as quota strings like "25 per day"
	SendEmailRateLimit string `json:"send_email_rate_limit"`
	ExplainRateLimit   string `json:"explain_rate_limit"`

	// Parsed quotas, populated by validate
	FeedbackQuota limiter.Quota `json:"-"`
	ExplainQuota  limiter.Quota `json:"-"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:               getEnvOrDefault("PORT", "7480"),
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		ResendAPIKey:       getEnvOrDefault("RESEND_API_KEY", ""),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		PerplexityAPIKey:   getEnvOrDefault("PERPLEXITY_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL_NAME", "gemini-2.0-flash"),
		DefaultFromEmail:   getEnvOrDefault("DEFAULT_FROM_EMAIL", "MCQS Feedback <code@voting.bartoszbak.org>"),
		DefaultSubjectLine: getEnvOrDefault("DEFAULT_SUBJECT_LINE", "MCQS Feedback"),
		SendEmailRateLimit: getEnvOrDefault("SEND_EMAIL_RATE_LIMIT", "25 per day"),
		ExplainRateLimit:   getEnvOrDefault("EXPLAIN_RATE_LIMIT", "75 per day"),
	}

	return config, config.validate()
}

// validate parses the rate-limit quota strings. Credentials are not
// required at startup: a missing key degrades the matching endpoint at
// request time instead of blocking the whole process.
func (c *Config) validate() error {
	quota, err := limiter.ParseQuota(c.SendEmailRateLimit)
	if err != nil {
		return &ConfigError{Field: "SEND_EMAIL_RATE_LIMIT", Message: err.Error()}
	}
	c.FeedbackQuota = quota

	quota, err = limiter.ParseQuota(c.ExplainRateLimit)
	if err != nil {
		return &ConfigError{Field: "EXPLAIN_RATE_LIMIT", Message: err.Error()}
	}
	c.ExplainQuota = quota

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
