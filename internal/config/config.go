package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Model providers. The primary key is required; secondary providers
	// are optional and skipped by the gateway when unconfigured.
	OpenRouterKey     string `env:"OPENROUTER_API_KEY,required"`
	OpenRouterURL     string `env:"OPENROUTER_API_URL" envDefault:"https://openrouter.ai/api/v1"`
	GroqKey           string `env:"GROQ_API_KEY"`
	GroqURL           string `env:"GROQ_API_URL" envDefault:"https://api.groq.com/openai/v1"`
	DeepInfraKey      string `env:"DEEPINFRA_API_KEY"`
	DeepInfraURL      string `env:"DEEPINFRA_API_URL" envDefault:"https://api.deepinfra.com/v1/openai"`

	// Server
	Port int `env:"PORT" envDefault:"3000"`

	// Assistant behavior
	DefaultModel string `env:"DEFAULT_MODEL" envDefault:"openai/gpt-4o-mini"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
