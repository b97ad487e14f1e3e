package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultBackoffBase = 200 * time.Millisecond
	maxBackoff         = 5 * time.Second
)

// Config configures the OpenAI-compatible completion client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	// BackoffBase is the first retry delay; it doubles per attempt up to 5s.
	BackoffBase time.Duration
}

// Client sends prompts to a chat model and returns the plain answer text.
type Client struct {
	model       llms.Model
	name        string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	maxRetries  uint64
	backoffBase time.Duration
}

// NewClient connects to an OpenAI-compatible endpoint such as Groq.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: missing API key")
	}
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return NewClientWithModel(model, cfg), nil
}

// NewClientWithModel wraps an existing langchaingo model.
func NewClientWithModel(model llms.Model, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := cfg.BackoffBase
	if base <= 0 {
		base = defaultBackoffBase
	}
	retries := max(cfg.MaxRetries, 0)
	return &Client{
		model:       model,
		name:        cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		maxRetries:  uint64(retries),
		backoffBase: base,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.name }

// Complete sends prompt as a single user message. Each attempt is bounded by
// the configured timeout; failed attempts are retried with exponential
// backoff unless ctx itself is done.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	backoff := retry.WithMaxRetries(c.maxRetries,
		retry.WithCappedDuration(maxBackoff, retry.NewExponential(c.backoffBase)))
	var answer string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		text, err := llms.GenerateFromSinglePrompt(callCtx, c.model, prompt, c.callOptions()...)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		answer = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}
	return answer, nil
}

func (c *Client) callOptions() []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}
	return opts
}
