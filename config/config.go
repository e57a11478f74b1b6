package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// Database configuration
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis configuration
	RedisURL      string
	RedisPassword string

	// Language model configuration
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	LLMMaxTokens      int
	WineInfoMaxTokens int
	LLMStreamTimeout  time.Duration

	// Rate limiting for the AI endpoints
	RateLimitRequests int
	RateLimitWindow   time.Duration

	LogLevel  string
	LogFormat string
}

// LoadConfig creates a new Config instance with values from the environment, an optional
// .env file and Docker secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env.LoadsDotEnv() {
		// A missing .env file is fine; real environment variables always win.
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Environment:       env,
		ServerPort:        v.GetString("SERVER_PORT"),
		ServerHost:        v.GetString("SERVER_HOST"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
		AllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBName:            v.GetString("DB_NAME"),
		DBSSLMode:         v.GetString("DB_SSL_MODE"),
		RedisURL:          v.GetString("REDIS_URL"),
		OpenAIBaseURL:     v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:       v.GetString("OPENAI_MODEL"),
		LLMMaxTokens:      v.GetInt("LLM_MAX_TOKENS"),
		WineInfoMaxTokens: v.GetInt("LLM_WINE_INFO_MAX_TOKENS"),
		LLMStreamTimeout:  v.GetDuration("LLM_STREAM_TIMEOUT"),
		RateLimitRequests: v.GetInt("RATE_LIMIT_REQUESTS"),
		RateLimitWindow:   v.GetDuration("RATE_LIMIT_WINDOW"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
	}

	cfg.DBPassword = lookupSecret(v, env, "DB_PASSWORD", "db_password")
	cfg.RedisPassword = lookupSecret(v, env, "REDIS_PASSWORD", "redis_password")
	cfg.OpenAIAPIKey = lookupSecret(v, env, "OPENAI_API_KEY", "openai_api_key")

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "wine")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_MAX_TOKENS", 256)
	v.SetDefault("LLM_WINE_INFO_MAX_TOKENS", 300)
	v.SetDefault("LLM_STREAM_TIMEOUT", 60*time.Second)
	v.SetDefault("RATE_LIMIT_REQUESTS", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// DSN returns the Postgres connection string, preferring DATABASE_URL when set
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// lookupSecret resolves a sensitive value. Production reads Docker secrets first and falls
// back to the environment; every other environment does the reverse.
func lookupSecret(v *viper.Viper, env Environment, key, secret string) string {
	if env == Production {
		if value := readSecret(secret); value != "" {
			return value
		}
		return v.GetString(key)
	}
	if value := v.GetString(key); value != "" {
		return value
	}
	return readSecret(secret)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
