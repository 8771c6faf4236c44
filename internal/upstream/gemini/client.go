package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"hanzify/internal/generator"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Observer   ObserverFunc
}

type Client struct {
	api      *genai.Client
	model    string
	observer ObserverFunc
}

func New(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	api, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, model: strings.TrimSpace(opts.Model), observer: opts.Observer}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, cfg generator.Config) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("generate_content", statusCode, time.Since(started)) }()

	resp, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(prompt), contentConfig(cfg))
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			statusCode = apiErr.Code
		}
		return "", generator.Fail("generate_content", err)
	}
	statusCode = http.StatusOK

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", generator.Fail("generate_content", errors.New("empty candidate text"))
	}
	return prompt + text, nil
}

func contentConfig(cfg generator.Config) *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(cfg.Temperature)),
		TopP:            genai.Ptr(float32(cfg.TopP)),
		MaxOutputTokens: int32(cfg.MaxNewTokens),
	}
	if cfg.RepetitionPenalty > 1 {
		out.FrequencyPenalty = genai.Ptr(float32(cfg.RepetitionPenalty - 1))
	}
	if cfg.Seed != nil {
		out.Seed = genai.Ptr(int32(*cfg.Seed))
	}
	return out
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}
