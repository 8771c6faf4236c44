package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	ListenAddr        string
	LogLevel          string
	Provider          string
	UpstreamBaseURL   string
	UpstreamAPIKey    string
	GeminiAPIKey      string
	GeminiBaseURL     string
	Model             string
	RequestTimeout    time.Duration
	GenerationTimeout time.Duration
	ContextLimit      int
	GenerationSeed    *int64
	BreakerFailures   uint32
	BreakerCooldown   time.Duration
	HistoryDBPath     string
	APIToken          string
}

type envConfig struct {
	ListenAddr               string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel                 string `env:"LOG_LEVEL" envDefault:"info"`
	Provider                 string `env:"GENERATOR_PROVIDER" envDefault:"openai"`
	UpstreamBaseURL          string `env:"UPSTREAM_BASE_URL" envDefault:"http://localhost:8000/v1"`
	UpstreamAPIKey           string `env:"UPSTREAM_API_KEY"`
	GeminiAPIKey             string `env:"GEMINI_API_KEY"`
	GeminiBaseURL            string `env:"GEMINI_BASE_URL"`
	Model                    string `env:"MODEL" envDefault:"Qwen/Qwen3-0.6B"`
	RequestTimeoutSeconds    int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"90"`
	GenerationTimeoutSeconds int    `env:"GENERATION_TIMEOUT_SECONDS" envDefault:"60"`
	ContextLimit             int    `env:"CONTEXT_LIMIT" envDefault:"200"`
	GenerationSeed           *int64 `env:"GENERATION_SEED"`
	BreakerFailures          uint32 `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldownSeconds   int    `env:"BREAKER_COOLDOWN_SECONDS" envDefault:"30"`
	HistoryDBPath            string `env:"HISTORY_DB_PATH"`
	APIToken                 string `env:"API_TOKEN"`
}

func Load() (Config, error) {
	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:        strings.TrimSpace(raw.ListenAddr),
		LogLevel:          strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		Provider:          strings.ToLower(strings.TrimSpace(raw.Provider)),
		UpstreamBaseURL:   strings.TrimRight(strings.TrimSpace(raw.UpstreamBaseURL), "/"),
		UpstreamAPIKey:    strings.TrimSpace(raw.UpstreamAPIKey),
		GeminiAPIKey:      strings.TrimSpace(raw.GeminiAPIKey),
		GeminiBaseURL:     strings.TrimRight(strings.TrimSpace(raw.GeminiBaseURL), "/"),
		Model:             strings.TrimSpace(raw.Model),
		RequestTimeout:    time.Duration(raw.RequestTimeoutSeconds) * time.Second,
		GenerationTimeout: time.Duration(raw.GenerationTimeoutSeconds) * time.Second,
		ContextLimit:      raw.ContextLimit,
		GenerationSeed:    raw.GenerationSeed,
		BreakerFailures:   raw.BreakerFailures,
		BreakerCooldown:   time.Duration(raw.BreakerCooldownSeconds) * time.Second,
		HistoryDBPath:     strings.TrimSpace(raw.HistoryDBPath),
		APIToken:          strings.TrimSpace(raw.APIToken),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	switch c.Provider {
	case ProviderOpenAI:
		if c.UpstreamBaseURL == "" {
			return errors.New("UPSTREAM_BASE_URL must not be empty")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY must be set when GENERATOR_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("GENERATOR_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Provider)
	}
	if c.Model == "" {
		return errors.New("MODEL must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if c.GenerationTimeout <= 0 {
		return errors.New("GENERATION_TIMEOUT_SECONDS must be > 0")
	}
	if c.ContextLimit <= 0 {
		return errors.New("CONTEXT_LIMIT must be > 0")
	}
	if c.BreakerCooldown <= 0 {
		return errors.New("BREAKER_COOLDOWN_SECONDS must be > 0")
	}
	return nil
}
