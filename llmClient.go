package penpal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Define a custom type for context keys
type ContextKey string

const (
	DefaultBaseURL    = "https://api.openai.com/v1/"
	DefaultModel      = "gpt-4o"
	DefaultMaxRetries = 2
)

type LLMConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	MaxRetries int    `toml:"max_retries"`
}

// Client talks to an OpenAI compatible chat-completion endpoint. Plain
// requests go through the openai client; streaming requests hand the raw body
// back so it can be consumed chunk by chunk.
type Client struct {
	config LLMConfig
	client openai.Client
	http   *http.Client
	logger *slog.Logger
}

var _ LLM = &Client{}

func (config *LLMConfig) NewLLMClient() *Client {
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Client{
		config: cfg,
		client: openai.NewClient(
			option.WithBaseURL(cfg.BaseURL),
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(cfg.MaxRetries),
		),
		// no client timeout: a stream lives as long as its context
		http:   &http.Client{},
		logger: slog.Default(),
	}
}

func (c *Client) Model() string {
	return c.config.Model
}

func injectIdentifiers(ctx context.Context, opts []option.RequestOption) []option.RequestOption {
	if sessionID, ok := ctx.Value(ContextKey("sessionID")).(string); ok {
		opts = append(opts, option.WithJSONSet("custom_identifier", sessionID))
	}
	return opts
}

func (c *Client) Complete(ctx context.Context, messages *MessageList) (*Completion, error) {
	if c.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	opts := []option.RequestOption{}
	opts = injectIdentifiers(ctx, opts)
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages.toParams(),
		Model:    openai.ChatModel(c.config.Model),
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	return &Completion{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
		Usage: Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
		},
	}, nil
}

type streamRequest struct {
	Model            string    `json:"model"`
	Stream           bool      `json:"stream"`
	Messages         []Message `json:"messages"`
	CustomIdentifier string    `json:"custom_identifier,omitempty"`
}

func (c *Client) Stream(ctx context.Context, messages *MessageList) (io.ReadCloser, error) {
	if c.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	reqBody := streamRequest{
		Model:    c.config.Model,
		Stream:   true,
		Messages: messages.All(),
	}
	if sessionID, ok := ctx.Value(ContextKey("sessionID")).(string); ok {
		reqBody.CustomIdentifier = sessionID
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	c.logger.Debug("Completion stream opened", "model", c.config.Model, "messages", messages.Len())
	return resp.Body, nil
}
