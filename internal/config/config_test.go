package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.Provider != ProviderOpenAI || cfg.Model != "Qwen/Qwen3-0.6B" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ContextLimit != 200 || cfg.GenerationTimeout != 60*time.Second || cfg.BreakerFailures != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.GenerationSeed != nil || cfg.HistoryDBPath != "" {
		t.Fatalf("optional settings should be unset: %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GENERATOR_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GEMINI_BASE_URL", "http://gemini-proxy:8080/")
	t.Setenv("MODEL", "gemini-2.0-flash")
	t.Setenv("UPSTREAM_BASE_URL", "http://localhost:9000/v1/")
	t.Setenv("GENERATION_SEED", "1234")
	t.Setenv("CONTEXT_LIMIT", "50")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiBaseURL != "http://gemini-proxy:8080" {
		t.Fatalf("unexpected gemini base url: %q", cfg.GeminiBaseURL)
	}
	if cfg.Provider != ProviderGemini || cfg.GeminiAPIKey != "g-key" || cfg.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.UpstreamBaseURL != "http://localhost:9000/v1" {
		t.Fatalf("unexpected base url: %q", cfg.UpstreamBaseURL)
	}
	if cfg.GenerationSeed == nil || *cfg.GenerationSeed != 1234 {
		t.Fatalf("unexpected seed: %v", cfg.GenerationSeed)
	}
	if cfg.ContextLimit != 50 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		ListenAddr:        ":8080",
		Provider:          ProviderOpenAI,
		UpstreamBaseURL:   "http://localhost:8000/v1",
		Model:             "m",
		RequestTimeout:    time.Second,
		GenerationTimeout: time.Second,
		ContextLimit:      200,
		BreakerCooldown:   time.Second,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cases := map[string]func(*Config){
		"LISTEN_ADDR":                func(c *Config) { c.ListenAddr = "" },
		"GENERATOR_PROVIDER":         func(c *Config) { c.Provider = "llama" },
		"UPSTREAM_BASE_URL":          func(c *Config) { c.UpstreamBaseURL = "" },
		"GEMINI_API_KEY":             func(c *Config) { c.Provider = ProviderGemini },
		"MODEL":                      func(c *Config) { c.Model = "" },
		"GENERATION_TIMEOUT_SECONDS": func(c *Config) { c.GenerationTimeout = 0 },
		"CONTEXT_LIMIT":              func(c *Config) { c.ContextLimit = 0 },
		"BREAKER_COOLDOWN_SECONDS":   func(c *Config) { c.BreakerCooldown = 0 },
	}
	for want, mutate := range cases {
		c := valid
		mutate(&c)
		err := c.Validate()
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error mentioning %s, got %v", want, err)
		}
	}
}
