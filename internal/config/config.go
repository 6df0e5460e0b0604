// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port       string `env:"PORT" env-default:"8080"`
	Env        string `env:"ENV" env-default:"development"`
	GinMode    string `env:"GIN_MODE"`
	CORSOrigin string `env:"CORS_ORIGIN" env-default:"http://localhost:3000"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"INFO"`
	LogDir    string `env:"LOG_DIR"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	StoreDriver string `env:"STORE_DRIVER" env-default:"postgres"`
	Database    DatabaseConfig

	JWTSecret string `env:"JWT_SECRET"`

	Summarizer SummarizerConfig

	ListMaxLimit int `env:"LIST_MAX_LIMIT" env-default:"100"`

	SummarizeRatePerSecond float64 `env:"SUMMARIZE_RATE_PER_SECOND" env-default:"1"`
	SummarizeBurst         int     `env:"SUMMARIZE_BURST" env-default:"3"`
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD" env-default:"password"`
	Name     string `env:"DB_NAME" env-default:"senior_care_incidents"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

type SummarizerConfig struct {
	Provider       string  `env:"SUMMARIZER_PROVIDER" env-default:"openai"`
	BaseURL        string  `env:"SUMMARIZER_BASE_URL"`
	Model          string  `env:"SUMMARIZER_MODEL"`
	APIKey         string  `env:"OPENAI_API_KEY"`
	TimeoutSeconds int     `env:"SUMMARIZER_TIMEOUT_SECONDS" env-default:"30"`
	MaxTokens      int     `env:"SUMMARIZER_MAX_TOKENS" env-default:"200"`
	Temperature    float64 `env:"SUMMARIZER_TEMPERATURE" env-default:"0.3"`
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, dotenv, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, err
	}
	return &cfg, dotenv, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	switch c.Summarizer.Provider {
	case "openai", "ollama", "none":
	default:
		return fmt.Errorf("SUMMARIZER_PROVIDER must be openai, ollama or none, got %q", c.Summarizer.Provider)
	}
	if c.Summarizer.TimeoutSeconds <= 0 {
		return fmt.Errorf("SUMMARIZER_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the
// DB_* variables.
func (c *Config) DSN() string {
	d := c.Database
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func (c *Config) SummarizeTimeout() time.Duration {
	return time.Duration(c.Summarizer.TimeoutSeconds) * time.Second
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// IsDevelopment reports whether ENV names a local development deployment.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "development", "dev", "local":
		return true
	}
	return false
}
