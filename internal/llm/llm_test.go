package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCompleter is a hand-written fake for the chat completion call.
type mockCompleter struct {
	calls    int
	response string
	errs     []error
}

func (m *mockCompleter) CreateChatCompletion(
	_ context.Context,
	_ openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return openai.ChatCompletionResponse{}, err
		}
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: m.response}},
		},
	}, nil
}

func newTestClient(mock *mockCompleter) *Client {
	return &Client{
		opts: Options{APIKey: "test-key", Model: "gpt-4o-mini", Timeout: time.Second},
		api:  mock,
	}
}

func TestNewClient_OptionDefaults(t *testing.T) {
	viper.Reset()
	viper.Set("api_key", "cfg-key")
	viper.Set("api_base", "https://example.test/v1")
	viper.Set("model", "cfg-model")
	defer viper.Reset()

	client := NewClient(Options{})
	assert.Equal(t, "cfg-key", client.opts.APIKey)
	assert.Equal(t, "https://example.test/v1", client.opts.APIBase)
	assert.Equal(t, "cfg-model", client.opts.Model)
	assert.Equal(t, defaultTimeout, client.opts.Timeout)
	assert.NotNil(t, client.api)
}

func TestComplete_MissingAPIKey(t *testing.T) {
	viper.Reset()
	viper.Set("api_key", "")
	defer viper.Reset()

	client := NewClient(Options{})
	_, err := client.Complete(context.Background(), "system", "user", "")
	assert.ErrorIs(t, err, errMissingAPIKey)
}

func TestComplete_Success(t *testing.T) {
	mock := &mockCompleter{response: "  feat: add login flow  "}
	client := newTestClient(mock)

	got, err := client.Complete(context.Background(), "system", "user", "")
	require.NoError(t, err)
	assert.Equal(t, "feat: add login flow", got)
	assert.Equal(t, 1, mock.calls)
}

func TestComplete_RetriesTransientFailure(t *testing.T) {
	mock := &mockCompleter{
		response: "fix: retry once",
		errs:     []error{&openai.APIError{HTTPStatusCode: 503}},
	}
	client := newTestClient(mock)

	got, err := client.Complete(context.Background(), "system", "user", "")
	require.NoError(t, err)
	assert.Equal(t, "fix: retry once", got)
	assert.Equal(t, 2, mock.calls)
}

func TestComplete_PermanentFailureNotRetried(t *testing.T) {
	mock := &mockCompleter{errs: []error{&openai.APIError{HTTPStatusCode: 401}, nil}}
	client := newTestClient(mock)

	_, err := client.Complete(context.Background(), "system", "user", "")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, mock.calls)
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rate limited", err: &openai.APIError{HTTPStatusCode: 429}, want: true},
		{name: "server error", err: &openai.APIError{HTTPStatusCode: 502}, want: true},
		{name: "bad request", err: &openai.APIError{HTTPStatusCode: 400}, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryable(tc.err))
		})
	}
}
