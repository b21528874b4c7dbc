package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/unknownking07/voice-mirror/internal/httpc"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
	providerAnthropic   = "anthropic"
)

// Client is the Anthropic messages API client with model fallback.
type Client struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewClient creates a new inference client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	return &Client{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "inference.client"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Chat generates a completion, walking the model fallback list when a
// model reports overload (529) or unavailability (503). Any other
// failure is terminal for the whole call.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	var lastErr error
	for i, model := range c.config.Models {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.FallbackDelay):
			}
			c.logger.Info("falling back to next model", "model", model, "attempt", i+1)
		}

		resp, err := c.chatOnce(ctx, req, model)
		if err == nil {
			resp.LatencyMs = time.Since(start).Milliseconds()
			return resp, nil
		}

		apiErr, ok := err.(*APIError)
		if ok && apiErr.IsOverloaded() {
			c.logger.Warn("model overloaded, trying next",
				"model", model,
				"status", apiErr.StatusCode,
			)
			lastErr = err
			continue
		}
		return nil, err
	}

	if lastErr == nil {
		lastErr = ErrAllModelsFailed
	}
	return nil, WrapError(providerAnthropic, fmt.Errorf("%w: %v", ErrAllModelsFailed, lastErr))
}

// chatOnce performs a single messages call against one model.
func (c *Client) chatOnce(ctx context.Context, req *ChatRequest, model string) (*ChatResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	payload := map[string]interface{}{
		"model":      model,
		"max_tokens": maxTokens,
		"messages":   req.Messages,
	}
	if req.System != "" {
		payload["system"] = req.System
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("marshal payload: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("x-api-key", c.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp, model)
	}

	var result messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("decode response: %w", err))
	}

	text := ""
	for _, block := range result.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerAnthropic, ErrEmptyCompletion)
	}

	return &ChatResponse{
		Text:       text,
		Model:      result.Model,
		StopReason: result.StopReason,
		Usage:      result.Usage,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
func (c *Client) parseError(resp *http.Response, model string) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	message := string(body)
	errType := ""
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		errType = errResp.Error.Type
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Type:       errType,
		Model:      model,
	}
}

// messagesResponse is the Anthropic messages API response shape.
type messagesResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      Usage  `json:"usage"`
}

// Verify Client implements Provider at compile time.
var _ Provider = (*Client)(nil)
