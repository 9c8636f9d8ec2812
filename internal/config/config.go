// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"pulsecrm/internal/ai"
)

// Development defaults for secrets. Production refuses to start with them.
const (
	defaultDBPassword     = "changeme"
	defaultJWTSecret      = "dev-jwt-secret-change-me"
	defaultSettingsSecret = "dev-settings-secret-change-me"
)

// Storage backends selectable with STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// StoreDriver selects persistence: "postgres" or "memory".
	StoreDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache) holding published stylesheets
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// AI provider settings
	AIProvider string // active provider: "openai", "gemini", "claude", "mistral"

	OpenAIKey           string
	OpenAIModel         string
	OpenAIFallbackModel string
	OpenAIBaseURL       string

	GeminiKey           string
	GeminiModel         string
	GeminiFallbackModel string
	GeminiBaseURL       string

	ClaudeKey           string
	ClaudeModel         string
	ClaudeFallbackModel string
	ClaudeBaseURL       string

	MistralKey           string
	MistralModel         string
	MistralFallbackModel string
	MistralBaseURL       string

	// Security
	JWTSecret      string // HS256 key for bearer tokens
	SettingsSecret string // seals users' provider keys at rest

	// HTTP
	CORSOrigins        []string
	RateLimitPerMinute int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreDriver: envOrDefault("STORE_DRIVER", StorePostgres),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "pulsecrm"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "pulsecrm"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider: envOrDefault("AI_PROVIDER", "openai"),

		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIFallbackModel: os.Getenv("OPENAI_FALLBACK_MODEL"),
		OpenAIBaseURL:       envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		GeminiKey:           os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiFallbackModel: os.Getenv("GEMINI_FALLBACK_MODEL"),
		GeminiBaseURL:       envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		ClaudeKey:           os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:         envOrDefault("CLAUDE_MODEL", "claude-sonnet-4-6"),
		ClaudeFallbackModel: os.Getenv("CLAUDE_FALLBACK_MODEL"),
		ClaudeBaseURL:       envOrDefault("CLAUDE_BASE_URL", "https://api.anthropic.com"),

		MistralKey:           os.Getenv("MISTRAL_API_KEY"),
		MistralModel:         envOrDefault("MISTRAL_MODEL", "mistral-small-latest"),
		MistralFallbackModel: os.Getenv("MISTRAL_FALLBACK_MODEL"),
		MistralBaseURL:       envOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai"),

		JWTSecret:      envOrDefault("JWT_SECRET", defaultJWTSecret),
		SettingsSecret: envOrDefault("SETTINGS_SECRET", defaultSettingsSecret),

		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.ValkeyDB, err = envInt("VALKEY_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = envInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimitPerMinute)
	}

	switch cfg.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.StoreDriver)
	}

	if cfg.Env == "production" {
		if cfg.StoreDriver == StorePostgres && cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		if cfg.SettingsSecret == defaultSettingsSecret {
			return nil, fmt.Errorf("SETTINGS_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Providers returns the AI provider settings keyed by provider name, as
// expected by ai.NewRegistry.
func (c *Config) Providers() map[string]ai.ProviderConfig {
	return map[string]ai.ProviderConfig{
		"openai": {
			APIKey: c.OpenAIKey, Model: c.OpenAIModel,
			FallbackModel: c.OpenAIFallbackModel, BaseURL: c.OpenAIBaseURL,
		},
		"gemini": {
			APIKey: c.GeminiKey, Model: c.GeminiModel,
			FallbackModel: c.GeminiFallbackModel, BaseURL: c.GeminiBaseURL,
		},
		"claude": {
			APIKey: c.ClaudeKey, Model: c.ClaudeModel,
			FallbackModel: c.ClaudeFallbackModel, BaseURL: c.ClaudeBaseURL,
		},
		"mistral": {
			APIKey: c.MistralKey, Model: c.MistralModel,
			FallbackModel: c.MistralFallbackModel, BaseURL: c.MistralBaseURL,
		},
	}
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer environment variable.
func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
