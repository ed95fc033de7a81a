// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/cloudx-io/openbidding/auction"
	"github.com/cloudx-io/openbidding/provider"
)

// Settings are the environment-level defaults of the openbid CLI.
// Command-line flags override them.
type Settings struct {
	MaxRounds       int           `env:"OPENBID_MAX_ROUNDS" envDefault:"10"`
	DecisionTimeout time.Duration `env:"OPENBID_DECISION_TIMEOUT" envDefault:"30s"`
	ParallelFetch   bool          `env:"OPENBID_PARALLEL_FETCH" envDefault:"false"`
	LogLevel        string        `env:"OPENBID_LOG_LEVEL" envDefault:"info"`
	SigningKeyPath  string        `env:"OPENBID_SIGNING_KEY_PATH"`

	LLM LLMSettings
}

// LLMSettings configure the completer behind "llm" strategy parties.
type LLMSettings struct {
	ResponsesURL string `env:"OPENBID_LLM_URL" envDefault:"https://api.openai.com/v1/responses"`
	Model        string `env:"OPENBID_LLM_MODEL" envDefault:"gpt-4o-mini"`
	APIKey       string `env:"OPENBID_LLM_API_KEY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return Settings{}, fmt.Errorf("parse env: OPENBID_LOG_LEVEL: %w", err)
	}
	return s, nil
}

// Level returns the configured log level, falling back to info.
func (s Settings) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || s.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// AuctionConfig maps the settings onto a controller configuration.
func (s Settings) AuctionConfig(logger *zerolog.Logger) auction.Config {
	return auction.Config{
		MaxRounds:       s.MaxRounds,
		DecisionTimeout: s.DecisionTimeout,
		ParallelFetch:   s.ParallelFetch,
		Logger:          logger,
	}
}

// Completer builds the HTTP completer for "llm" parties.
func (s LLMSettings) Completer() *provider.HTTPCompleter {
	return provider.NewHTTPCompleter(provider.HTTPCompleterConfig{
		ResponsesURL: s.ResponsesURL,
		Model:        s.Model,
		APIKey:       s.APIKey,
	})
}
