// Package model implements the ModelClient boundary: an OpenAI
// chat-completions adapter plus a retry decorator that encodes the
// pipeline's retry policy per error kind.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/safuente/web-brochure-creator/core"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// OpenAIConfig holds configuration for the OpenAI model client. The API
// key is injected here by the caller; pipeline logic never reads the
// process environment.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the completion model to use (default: gpt-4o-mini).
	Model string

	// Temperature controls randomness (0 = provider default).
	Temperature float64

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// OpenAI calls the OpenAI chat completions API.
type OpenAI struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAI creates an OpenAI model client.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &OpenAI{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends one prompt and returns the completion text. Failures
// are reported as core.ModelError so callers can apply the retry policy.
func (c *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMsg{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if kindErr := classifyStatus(resp.StatusCode); kindErr != nil {
		// Try to surface the provider's error message alongside the kind.
		var parsed chatCompletionResponse
		if json.NewDecoder(resp.Body).Decode(&parsed) == nil && parsed.Error != nil {
			kindErr.Message = parsed.Error.Message
		}
		return "", kindErr
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &core.ModelError{Kind: core.ModelInvalidResponse, Message: "malformed response body", Err: err}
	}
	if parsed.Error != nil {
		return "", &core.ModelError{Kind: core.ModelInvalidResponse, Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &core.ModelError{Kind: core.ModelInvalidResponse, Message: "empty completion"}
	}

	return parsed.Choices[0].Message.Content, nil
}

// classifyStatus maps a non-2xx HTTP status to a ModelError, or nil for
// success statuses.
func classifyStatus(status int) *core.ModelError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return &core.ModelError{Kind: core.ModelRateLimited}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &core.ModelError{Kind: core.ModelAuthFailure}
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return &core.ModelError{Kind: core.ModelTimeout}
	default:
		return &core.ModelError{Kind: core.ModelInvalidResponse, Message: fmt.Sprintf("status %d", status)}
	}
}

// classifyTransportError maps a transport failure to the taxonomy.
// Caller cancellation wins over everything else.
func classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %v", core.ErrCancelled, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &core.ModelError{Kind: core.ModelTimeout, Err: err}
	}
	return &core.ModelError{Kind: core.ModelInvalidResponse, Message: "transport failure", Err: err}
}
