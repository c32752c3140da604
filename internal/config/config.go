package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// ShutdownTimeout is the grace period given to in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// DatabaseConfig selects and configures the store backend.
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,oneof=postgres badger"`
	URL            string `mapstructure:"url" validate:"required_if=Driver postgres"`
	BadgerPath     string `mapstructure:"badger_path"`
	BadgerInMemory bool   `mapstructure:"badger_in_memory"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// TokenLifetime is the validity period of issued access tokens.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// LLMConfig contains the generative service settings.
// Chat replies use Groq when GroqAPIKey is set and Gemini otherwise.
type LLMConfig struct {
	GeminiAPIKey        string  `mapstructure:"gemini_api_key" validate:"required"`
	GeminiModel         string  `mapstructure:"gemini_model" validate:"required"`
	GeminiBaseURL       string  `mapstructure:"gemini_base_url" validate:"omitempty,url"`
	Temperature         float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxRetries          int     `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RetryDelaySeconds   int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	GroqAPIKey          string  `mapstructure:"groq_api_key"`
	GroqBaseURL         string  `mapstructure:"groq_base_url" validate:"omitempty,url"`
	GroqModel           string  `mapstructure:"groq_model"`
	ChatContextMessages int     `mapstructure:"chat_context_messages" validate:"gte=1,lte=100"`
}

// RetryDelay is the base delay of the exponential backoff.
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// TaskConfig sizes the background task runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}

// RateLimitConfig bounds per-user calls to the generative routes.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gt=0"`
	Burst             int `mapstructure:"burst" validate:"gt=0"`
}
