// Package openrouter provides an assistant provider backed by the OpenRouter
// chat completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/onejourney/onejourney/internal/assistant"
	"github.com/onejourney/onejourney/internal/provider/resilience"
)

const (
	// ProviderName identifies this chat provider.
	ProviderName = "openrouter"

	// DefaultBaseURL is the OpenRouter API base URL.
	DefaultBaseURL = "https://openrouter.ai"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "mistralai/mistral-7b-instruct"

	// DefaultReferer is sent as HTTP-Referer to identify the calling app.
	DefaultReferer = "http://localhost:8080"

	// AppTitle is sent as X-Title.
	AppTitle = "OneJourney Smart Mobility"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	completionsPath = "/api/v1/chat/completions"

	// maxErrorBody caps how much of an error response is logged.
	maxErrorBody = 512
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouter client.
type ClientConfig struct {
	// APIKey is the OpenRouter API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// Model is the chat model (optional, defaults to DefaultModel).
	Model string

	// Referer is sent as the HTTP-Referer header (optional).
	Referer string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenRouter chat completions client.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	referer    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenRouter client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	referer := cfg.Referer
	if referer == "" {
		referer = DefaultReferer
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		clientCfg.CircuitBreaker.OnStateChange = resilience.LogStateChange(cfg.Logger)
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		referer:    referer,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Reply sends the system prompt and the user message and returns the first
// choice's content verbatim.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: assistant.SystemPrompt},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", c.referer)
	httpReq.Header.Set("X-Title", AppTitle)

	c.logger.Debug().
		Str("model", c.model).
		Int("message_length", len(message)).
		Msg("requesting chat completion")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", ProviderName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(respBody), maxErrorBody)).
			Msg("chat completion failed")
		return "", fmt.Errorf("status %d: %w", resp.StatusCode, assistant.ErrUpstreamStatus)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", assistant.ErrEmptyReply
	}

	return chatResp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ assistant.Provider = (*Client)(nil)
