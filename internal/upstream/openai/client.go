package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"hanzify/internal/generator"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	api      *goopenai.Client
	model    string
	observer ObserverFunc
}

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream request failed with status %d", e.StatusCode)
}

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// New builds a client for any OpenAI-compatible chat endpoint. model may be
// a hosted model name or the weights path a local server was started with.
func New(baseURL, apiKey, model string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg := goopenai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpClient

	c := &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		model: strings.TrimSpace(model),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) Generate(ctx context.Context, prompt string, cfg generator.Config) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("chat_completions", statusCode, time.Since(started)) }()

	resp, err := c.api.CreateChatCompletion(ctx, chatRequest(c.model, prompt, cfg))
	if err != nil {
		upstreamErr := toError(err)
		statusCode = statusOf(upstreamErr)
		return "", generator.Fail("chat_completions", upstreamErr)
	}
	statusCode = http.StatusOK

	if len(resp.Choices) == 0 {
		return "", generator.Fail("chat_completions", errors.New("missing choices"))
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", generator.Fail("chat_completions", errors.New("missing choices[0].message.content"))
	}
	// Chat endpoints return only the continuation.
	return prompt + content, nil
}

// CheckModels verifies the endpoint is reachable and, when the server lists
// models, that the configured one is among them.
func (c *Client) CheckModels(ctx context.Context) error {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("models", statusCode, time.Since(started)) }()

	list, err := c.api.ListModels(ctx)
	if err != nil {
		upstreamErr := toError(err)
		statusCode = statusOf(upstreamErr)
		return upstreamErr
	}
	statusCode = http.StatusOK

	if c.model == "" || len(list.Models) == 0 {
		return nil
	}
	for _, m := range list.Models {
		if m.ID == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q not served by upstream", c.model)
}

func chatRequest(model, prompt string, cfg generator.Config) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   cfg.MaxNewTokens,
		Temperature: float32(cfg.Temperature),
		TopP:        float32(cfg.TopP),
	}
	// The API has no multiplicative repetition penalty; 1.0 means "off" in
	// both scales, so the excess maps onto frequency_penalty.
	if cfg.RepetitionPenalty > 1 {
		req.FrequencyPenalty = float32(cfg.RepetitionPenalty - 1)
	}
	if cfg.Seed != nil {
		seed := int(*cfg.Seed)
		req.Seed = &seed
	}
	return req
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

func toError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &Error{StatusCode: apiErr.HTTPStatusCode, Body: truncateBody(apiErr.Message)}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &Error{StatusCode: reqErr.HTTPStatusCode, Body: truncateBody(body)}
	}
	return err
}

func statusOf(err error) int {
	var upstreamErr *Error
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode
	}
	return 0
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}
