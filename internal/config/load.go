package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. DECKMIND_SERVER_PORT.
const EnvPrefix = "DECKMIND"

var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.shutdown_timeout_seconds": 10,
	"database.driver":                 DriverPostgres,
	"database.badger_path":            "./data/badger",
	"database.badger_in_memory":       false,
	"database.auto_migrate":           true,
	"auth.token_lifetime_minutes":     60,
	"llm.gemini_model":                "gemini-2.0-flash",
	"llm.temperature":                 0.7,
	"llm.max_retries":                 2,
	"llm.retry_delay_seconds":         1,
	"llm.groq_base_url":               "https://api.groq.com/openai/v1",
	"llm.groq_model":                  "llama-3.3-70b-versatile",
	"llm.chat_context_messages":       10,
	"task.worker_count":               2,
	"task.queue_size":                 100,
	"rate_limit.requests_per_minute":  30,
	"rate_limit.burst":                10,
}

// keys without a default still need an explicit env binding for Unmarshal to see them.
var requiredKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"llm.gemini_api_key",
	"llm.gemini_base_url",
	"llm.groq_api_key",
}

// Load configuration from environment variables and optionally config files.
// Values come, in increasing precedence, from defaults, ./config.yaml, a .env
// file and DECKMIND_* environment variables. Returns a populated Config or an
// error if loading or validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the rules that span fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Database.Driver == DriverBadger && !c.Database.BadgerInMemory && c.Database.BadgerPath == "" {
		return errors.New("config validation failed: database.badger_path is required unless badger_in_memory is set")
	}
	return nil
}
