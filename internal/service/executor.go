package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"homesearch/internal/config"
	"homesearch/internal/logging"
	"homesearch/internal/metrics"
	"homesearch/internal/model"
	"homesearch/internal/tools"
	"homesearch/internal/utils"
)

const errLimitExceeded = "tool call limit exceeded"

// Audit outcomes
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
)

// ListingsFetcher runs one listings search
type ListingsFetcher interface {
	FetchListings(ctx context.Context, f model.SearchFilter) model.ToolResult
}

// CallRecorder stores an audit entry per executed tool call
type CallRecorder interface {
	RecordToolCall(ctx context.Context, entry model.ToolCallLog) error
}

// ToolExecutor dispatches the model's get_listings calls to the gateway
type ToolExecutor struct {
	fetcher  ListingsFetcher
	policy   string
	recorder CallRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger

	pending sync.WaitGroup
}

// ExecutorOption customizes a ToolExecutor
type ExecutorOption func(*ToolExecutor)

// WithDroppedCallPolicy sets what calls beyond the limit receive:
// nothing (config.DropOmit) or a limit error (config.DropReject)
func WithDroppedCallPolicy(policy string) ExecutorOption {
	return func(e *ToolExecutor) { e.policy = policy }
}

// WithCallRecorder audits every executed call
func WithCallRecorder(r CallRecorder) ExecutorOption {
	return func(e *ToolExecutor) { e.recorder = r }
}

// WithExecutorMetrics records call dispositions
func WithExecutorMetrics(m *metrics.Metrics) ExecutorOption {
	return func(e *ToolExecutor) { e.metrics = m }
}

// WithExecutorLogger sets the logger
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *ToolExecutor) { e.logger = logging.Component(l, "executor") }
}

// NewToolExecutor creates an executor backed by fetcher
func NewToolExecutor(fetcher ListingsFetcher, opts ...ExecutorOption) *ToolExecutor {
	e := &ToolExecutor{
		fetcher: fetcher,
		policy:  config.DropOmit,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SelectCalls keeps the get_listings calls and splits them, in arrival
// order, into the first limit to execute and the rest. ignored counts calls
// naming any other tool.
func SelectCalls(calls []model.ToolCallRequest, limit int) (selected, dropped []model.ToolCallRequest, ignored int) {
	for _, call := range calls {
		if call.Name != tools.ListingsToolName {
			ignored++
			continue
		}
		if len(selected) < limit {
			selected = append(selected, call)
		} else {
			dropped = append(dropped, call)
		}
	}
	return selected, dropped, ignored
}

// Execute runs up to limit get_listings calls concurrently and returns their
// results keyed by call id. Calls beyond the limit are only present under the
// reject policy. Once dispatched, a call runs to completion even if ctx is
// cancelled.
func (e *ToolExecutor) Execute(ctx context.Context, calls []model.ToolCallRequest, limit int) map[string]model.ToolResult {
	logger := logging.FromContext(ctx, e.logger)
	selected, dropped, ignored := SelectCalls(calls, limit)

	e.metrics.ToolCalls(metrics.CallIgnored, ignored)
	e.metrics.ToolCalls(metrics.CallDropped, len(dropped))
	if ignored > 0 {
		logger.Warn("ignoring calls to unknown tools", "count", ignored)
	}
	if len(dropped) > 0 {
		logger.Warn("tool call limit reached", "limit", limit, "dropped", len(dropped), "policy", e.policy)
	}

	out := make(map[string]model.ToolResult, len(selected)+len(dropped))
	if len(selected) > 0 {
		runCtx := context.WithoutCancel(ctx)
		results := make([]model.ToolResult, len(selected))

		var g errgroup.Group
		g.SetLimit(len(selected))
		for i, call := range selected {
			i, call := i, call
			g.Go(func() error {
				results[i] = e.run(runCtx, call)
				return nil
			})
		}
		_ = g.Wait()

		for i, call := range selected {
			out[call.CallID] = results[i]
		}
	}

	if e.policy == config.DropReject {
		for _, call := range dropped {
			out[call.CallID] = model.Failure(errLimitExceeded)
		}
	}

	return out
}

// Flush waits for pending audit writes
func (e *ToolExecutor) Flush() {
	e.pending.Wait()
}

func (e *ToolExecutor) run(ctx context.Context, call model.ToolCallRequest) (result model.ToolResult) {
	logger := logging.FromContext(ctx, e.logger).With("call_id", call.CallID)
	start := time.Now()
	outcome := OutcomeOK

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool call panicked", "panic", r)
			result = model.Failure(fmt.Sprintf("tool execution panicked: %v", r))
			outcome = OutcomeError
		}
		e.record(ctx, call, result, outcome, time.Since(start))
	}()

	filter, err := ParseFilter(call.Arguments)
	if err != nil {
		e.metrics.ToolCalls(metrics.CallInvalid, 1)
		logger.Warn("invalid tool arguments", "arguments", call.Arguments, "error", err)
		outcome = OutcomeInvalid
		return model.Failure("invalid arguments: " + err.Error())
	}

	e.metrics.ToolCalls(metrics.CallExecuted, 1)
	logger.Debug("executing get_listings", "arguments", utils.CompactJSON(call.Arguments))
	result = e.fetcher.FetchListings(ctx, filter)
	if result.IsError() {
		outcome = OutcomeError
	}
	return result
}

func (e *ToolExecutor) record(ctx context.Context, call model.ToolCallRequest, result model.ToolResult, outcome string, took time.Duration) {
	if e.recorder == nil {
		return
	}

	entry := model.ToolCallLog{
		RequestID:   logging.RequestID(ctx),
		CallID:      call.CallID,
		Arguments:   []byte(utils.CompactJSON(call.Arguments)),
		Outcome:     outcome,
		ResultCount: len(result.Data),
		DurationMs:  took.Milliseconds(),
		CreatedAt:   time.Now(),
	}
	if result.IsError() {
		msg := result.Error
		entry.Error = &msg
	}

	// Log asynchronously (non-blocking)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		if err := e.recorder.RecordToolCall(context.Background(), entry); err != nil {
			e.logger.Warn("failed to record tool call", "call_id", entry.CallID, "error", err)
		}
	}()
}

// ParseFilter decodes and validates get_listings arguments. Loose property
// type phrasings are mapped onto the canonical enumeration first.
func ParseFilter(arguments string) (model.SearchFilter, error) {
	var f model.SearchFilter
	if err := utils.ParseToolArguments(arguments, &f); err != nil {
		return model.SearchFilter{}, err
	}

	if f.ZipCode != nil {
		zip := strings.TrimSpace(*f.ZipCode)
		if zip == "" {
			f.ZipCode = nil
		} else {
			f.ZipCode = &zip
		}
	}
	if f.PropertyType != nil {
		if strings.TrimSpace(*f.PropertyType) == "" {
			f.PropertyType = nil
		} else if canonical, ok := utils.CanonicalOption(*f.PropertyType, model.PropertyTypes); ok {
			f.PropertyType = &canonical
		}
	}

	if err := f.Validate(); err != nil {
		return model.SearchFilter{}, err
	}
	return f, nil
}
