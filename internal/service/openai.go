package service

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

	"homesearch/internal/config"
	"homesearch/internal/logging"
)

// OpenAIClient talks to an OpenAI-compatible Responses API
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg *config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	logger = logging.Component(logger, "openai")
	if IsOpenAIProvider(cfg.APIBase) {
		logger.Debug("using OpenAI API provider", "model", cfg.Model)
	} else {
		logger.Info("using OpenAI-compatible provider", "base", cfg.APIBase, "model", cfg.Model)
	}

	return &OpenAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger,
	}
}

// IsOpenAIProvider checks if the base URL is the official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// CreateResponse performs a Responses API request
func (c *OpenAIClient) CreateResponse(ctx context.Context, req ResponseRequest) (*Response, error) {
	if !c.config.Enabled {
		return nil, ErrModelDisabled
	}

	// Use configured model if not specified
	if req.Model == "" {
		req.Model = c.config.Model
	}
	if req.MaxOutputTokens == 0 && c.config.MaxOutputTokens > 0 {
		req.MaxOutputTokens = c.config.MaxOutputTokens
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	logger := logging.FromContext(ctx, c.logger)
	logger.Debug("model request", "model", req.Model, "items", len(req.Input), "tools", len(req.Tools))

	url := fmt.Sprintf("%s/responses", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("response %s failed: %s: %s", result.ID, result.Error.Code, result.Error.Message)
	}

	attrs := []any{"id", result.ID, "status", result.Status, "output_items", len(result.Output), "took", time.Since(start)}
	if result.Usage != nil {
		attrs = append(attrs, "input_tokens", result.Usage.InputTokens, "output_tokens", result.Usage.OutputTokens)
	}
	logger.Debug("model response", attrs...)

	return &result, nil
}
