package service

import (
	"context"
	"errors"
	"fmt"

	"homesearch/internal/model"
	"homesearch/internal/tools"
)

// Conversation phases
const (
	PhaseTool   = "tool"
	PhaseAnswer = "answer"
)

// ErrModelDisabled is returned when no model API key is configured
var ErrModelDisabled = errors.New("model API is not enabled (missing API key)")

// ModelClient is the language model boundary used by the conversation driver
type ModelClient interface {
	// CreateResponse sends one request and returns the model's output items
	CreateResponse(ctx context.Context, req ResponseRequest) (*Response, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// ResponseRequest is a Responses API request body
type ResponseRequest struct {
	Model             string                 `json:"model"`
	Instructions      string                 `json:"instructions,omitempty"`
	Input             model.History          `json:"input"`
	Tools             []tools.ToolDescriptor `json:"tools,omitempty"`
	ParallelToolCalls *bool                  `json:"parallel_tool_calls,omitempty"`
	MaxOutputTokens   int                    `json:"max_output_tokens,omitempty"`
}

// Response is a Responses API response body
type Response struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Model  string         `json:"model"`
	Output []model.Item   `json:"output"`
	Error  *ResponseError `json:"error"`
	Usage  *Usage         `json:"usage"`
}

// ResponseError is the error object of a failed response
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Usage reports token consumption
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// StatusError is a non-200 reply from the model API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// ModelError wraps a model call failure with the phase it happened in.
// It aborts the whole conversation request.
type ModelError struct {
	Phase string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed in %s phase: %v", e.Phase, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Ensure OpenAIClient implements ModelClient
var _ ModelClient = (*OpenAIClient)(nil)
