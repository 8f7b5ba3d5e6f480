package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"homesearch/internal/logging"
	"homesearch/internal/metrics"
	"homesearch/internal/model"
	"homesearch/internal/tools"
)

const toolInstructionsTemplate = `You are a helpful real estate assistant.

Use the available tools to find real estate listings
based on user criteria.

Follow these rules:
- Call at most %d tool per request
- Do not ask clarifying questions, if the user request is ambiguous, make your best guess`

const defaultAnswerInstructions = `You are a helpful real estate assistant.

Follow these rules:
- Respond only with the final answer to the user's request
- Respond only with listings that were retrieved using the tool`

// DriverConfig selects the conversation shape
type DriverConfig struct {
	Model              string
	ToolCallLimit      int
	AnswerPhase        bool
	ToolInstructions   string // may contain one %d for the call limit
	AnswerInstructions string
}

// ConversationDriver runs the tool phase and the optional answer phase of
// one request
type ConversationDriver struct {
	client   ModelClient
	executor *ToolExecutor
	tools    []tools.ToolDescriptor
	config   DriverConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewConversationDriver creates a driver. The descriptor is shared, never
// modified.
func NewConversationDriver(
	client ModelClient,
	executor *ToolExecutor,
	descriptor tools.ToolDescriptor,
	cfg DriverConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ConversationDriver {
	if cfg.ToolCallLimit <= 0 {
		cfg.ToolCallLimit = 1
	}
	if cfg.ToolInstructions == "" {
		cfg.ToolInstructions = toolInstructionsTemplate
	}
	if cfg.AnswerInstructions == "" {
		cfg.AnswerInstructions = defaultAnswerInstructions
	}

	return &ConversationDriver{
		client:   client,
		executor: executor,
		tools:    []tools.ToolDescriptor{descriptor},
		config:   cfg,
		metrics:  m,
		logger:   logging.Component(logger, "driver"),
	}
}

// Tools returns the descriptors advertised to the model
func (d *ConversationDriver) Tools() []tools.ToolDescriptor {
	return d.tools
}

// Ask starts a conversation from a single user prompt
func (d *ConversationDriver) Ask(ctx context.Context, prompt string) (model.History, error) {
	return d.Chat(ctx, model.History{model.UserMessage(prompt)})
}

// Chat runs one request over history and returns the extended history. The
// input slice is not modified. A model failure in either phase is returned
// as a *ModelError together with the history built so far.
func (d *ConversationDriver) Chat(ctx context.Context, history model.History) (model.History, error) {
	logger := logging.FromContext(ctx, d.logger)
	h := append(model.History(nil), history...)

	resp, err := d.call(ctx, PhaseTool, ResponseRequest{
		Model:             d.config.Model,
		Instructions:      d.toolInstructions(),
		Input:             h,
		Tools:             d.tools,
		ParallelToolCalls: d.parallelToolCalls(),
	})
	if err != nil {
		return h, err
	}
	h = append(h, resp.Output...)

	calls := model.History(resp.Output).ToolCalls()
	if len(calls) == 0 {
		logger.Info("model answered without tool calls")
		return h, nil
	}

	results := d.executor.Execute(ctx, calls, d.config.ToolCallLimit)
	appended := 0
	for _, call := range calls {
		res, ok := results[call.CallID]
		if !ok {
			continue
		}
		h = append(h, model.FunctionCallOutput(call.CallID, res))
		appended++
	}
	logger.Info("tool phase complete", "requested", len(calls), "outputs", appended)

	// With no outputs the tool phase reply is the answer
	if !d.config.AnswerPhase || appended == 0 {
		return h, nil
	}

	resp, err = d.call(ctx, PhaseAnswer, ResponseRequest{
		Model:        d.config.Model,
		Instructions: d.config.AnswerInstructions,
		Input:        h,
	})
	if err != nil {
		return h, err
	}
	return append(h, resp.Output...), nil
}

func (d *ConversationDriver) call(ctx context.Context, phase string, req ResponseRequest) (*Response, error) {
	resp, err := d.client.CreateResponse(ctx, req)
	d.metrics.ModelRequest(phase, err)
	if err != nil {
		logging.FromContext(ctx, d.logger).Error("model call failed", "phase", phase, "error", err)
		return nil, &ModelError{Phase: phase, Err: err}
	}
	return resp, nil
}

func (d *ConversationDriver) toolInstructions() string {
	if !strings.Contains(d.config.ToolInstructions, "%d") {
		return d.config.ToolInstructions
	}
	return fmt.Sprintf(d.config.ToolInstructions, d.config.ToolCallLimit)
}

// parallelToolCalls disables parallel calls when only one would be honored
func (d *ConversationDriver) parallelToolCalls() *bool {
	if d.config.ToolCallLimit > 1 {
		return nil
	}
	off := false
	return &off
}
