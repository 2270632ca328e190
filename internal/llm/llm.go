// Package llm talks to an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
	"github.com/sungit/sungit/internal/config"
)

var errMissingAPIKey = errors.New("API key not set, please set it first: sungit config set apikey YOUR_API_KEY")

// ErrUnavailable reports that the completion endpoint could not be reached
// or did not answer in time. Callers treat it as "generate by hand instead".
var ErrUnavailable = errors.New("text generation unavailable")

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	retryBaseDelay    = 500 * time.Millisecond
)

// chatCompleter is the slice of the OpenAI client we use, extracted so tests
// can substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options configures a Client. Zero-valued fields fall back to the loaded
// configuration.
type Options struct {
	APIKey  string
	APIBase string
	Model   string
	Timeout time.Duration
}

// Client sends chat completion requests with bounded retries on transient
// failures.
type Client struct {
	opts Options
	api  chatCompleter
}

func NewClient(opts Options) *Client {
	if cfg, err := config.GetConfig(); err == nil {
		if opts.APIKey == "" {
			opts.APIKey = cfg.APIKey
		}
		if opts.APIBase == "" {
			opts.APIBase = cfg.APIBase
		}
		if opts.Model == "" {
			opts.Model = cfg.Model
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	client := &Client{opts: opts}
	if opts.APIKey != "" {
		clientConfig := openai.DefaultConfig(opts.APIKey)
		if opts.APIBase != "" {
			clientConfig.BaseURL = opts.APIBase
		}
		client.api = openai.NewClientWithConfig(clientConfig)
	}
	return client
}

// Complete sends a system+user prompt pair and returns the trimmed response
// text. Transient failures are retried with exponential backoff; a final
// failure is reported as ErrUnavailable.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	if c.opts.APIKey == "" {
		return "", errMissingAPIKey
	}
	if model == "" {
		model = c.opts.Model
	}

	request := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	var content string
	backoff := retry.WithMaxRetries(defaultMaxRetries, retry.NewExponential(retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(callCtx, request)
		if err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty response from completion endpoint")
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return content, nil
}

// TestConnection verifies the endpoint answers a minimal request.
func (c *Client) TestConnection(model string) error {
	if c.opts.APIKey == "" {
		return errMissingAPIKey
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
	defer cancel()

	_, err := c.Complete(ctx, "You are a connectivity probe.", "Reply with OK.", model)
	return err
}

// isRetryable classifies rate limits, server-side failures, and network
// timeouts as transient.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
