// Package backend assembles the configured text generator: provider client,
// circuit breaker, and lazy model initialization.
package backend

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"hanzify/internal/config"
	"hanzify/internal/generator"
	"hanzify/internal/upstream/gemini"
	"hanzify/internal/upstream/openai"
)

type Hooks struct {
	Upstream func(endpoint string, status int, duration time.Duration)
	Breaker  func(name string, from, to gobreaker.State)
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// New returns a lazily initialized generator for cfg. Nothing touches the
// network until Init or the first Generate.
func New(cfg config.Config, httpClient *http.Client, hooks Hooks) *generator.Lazy {
	return generator.NewLazy(func(ctx context.Context) (generator.Generator, error) {
		gen, err := connect(ctx, cfg, httpClient, hooks)
		if err != nil {
			return nil, err
		}
		return generator.NewBreaker(gen, generator.BreakerSettings{
			Name:                cfg.Provider,
			ConsecutiveFailures: cfg.BreakerFailures,
			Cooldown:            cfg.BreakerCooldown,
			OnStateChange:       hooks.Breaker,
		}), nil
	})
}

func connect(ctx context.Context, cfg config.Config, httpClient *http.Client, hooks Hooks) (generator.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		var opts []openai.Option
		if hooks.Upstream != nil {
			opts = append(opts, openai.WithObserver(hooks.Upstream))
		}
		client := openai.New(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.Model, httpClient, opts...)
		if err := client.CheckModels(ctx); err != nil {
			return nil, fmt.Errorf("load model %q: %w", cfg.Model, err)
		}
		return client, nil
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
			Observer:   hooks.Upstream,
		})
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}

// GenerationConfig returns the fixed sampling configuration for cfg.
func GenerationConfig(cfg config.Config) generator.Config {
	genCfg := generator.DefaultConfig()
	if cfg.GenerationSeed != nil {
		genCfg = genCfg.WithSeed(*cfg.GenerationSeed)
	}
	return genCfg
}
