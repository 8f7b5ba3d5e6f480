// Package app wires configuration into the running components shared by the
// HTTP server and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"homesearch/internal/config"
	"homesearch/internal/logging"
	"homesearch/internal/metrics"
	"homesearch/internal/rentcast"
	"homesearch/internal/repository"
	"homesearch/internal/service"
	"homesearch/internal/tools"
)

// App holds the assembled components
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Descriptor tools.ToolDescriptor
	Gateway    *rentcast.Client
	Executor   *service.ToolExecutor
	Model      *service.OpenAIClient
	Driver     *service.ConversationDriver

	// Repo is nil unless a component needs PostgreSQL
	Repo *repository.PostgresRepository

	redis *repository.RedisCache
}

// New builds every component from cfg. Close must be called on success.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	if cfg.UsesPostgres() {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.Repo = repo
		if err := repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to prepare database schema: %w", err)
		}
		logger.Info("connected to PostgreSQL", "log_tool_calls", cfg.PostgreSQL.LogToolCalls)
	}

	cache, err := a.listingCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	gatewayOpts := []rentcast.Option{
		rentcast.WithMetrics(a.Metrics),
		rentcast.WithLogger(logger),
	}
	if cache != nil {
		gatewayOpts = append(gatewayOpts, rentcast.WithCache(cache))
	}
	a.Gateway = rentcast.NewClient(&cfg.RentCast, gatewayOpts...)

	executorOpts := []service.ExecutorOption{
		service.WithDroppedCallPolicy(cfg.Agent.DroppedCallPolicy),
		service.WithExecutorMetrics(a.Metrics),
		service.WithExecutorLogger(logger),
	}
	if a.Repo != nil && cfg.PostgreSQL.LogToolCalls {
		executorOpts = append(executorOpts, service.WithCallRecorder(a.Repo))
	}
	a.Executor = service.NewToolExecutor(a.Gateway, executorOpts...)

	a.Descriptor = tools.BuildToolDescriptor(tools.FieldSet(cfg.Agent.Fields), cfg.Agent.StrictSchema)
	a.Model = service.NewOpenAIClient(&cfg.OpenAI, logger)
	a.Driver = service.NewConversationDriver(a.Model, a.Executor, a.Descriptor, service.DriverConfig{
		Model:              cfg.OpenAI.Model,
		ToolCallLimit:      cfg.Agent.ToolCallLimit,
		AnswerPhase:        cfg.Agent.AnswerPhase,
		ToolInstructions:   cfg.Agent.ToolInstructions,
		AnswerInstructions: cfg.Agent.AnswerInstructions,
	}, a.Metrics, logger)

	if !a.Model.IsEnabled() {
		logger.Warn("model API is disabled, set OPENAI_API_KEY to enable conversations")
	}
	logger.Info("components initialized",
		"model", cfg.OpenAI.Model,
		"tool_call_limit", cfg.Agent.ToolCallLimit,
		"strict_schema", cfg.Agent.StrictSchema,
		"answer_phase", cfg.Agent.AnswerPhase,
		"cache", cfg.Cache.Backend,
	)

	return a, nil
}

func (a *App) listingCache(ctx context.Context) (rentcast.ListingCache, error) {
	cfg := a.Config.Cache
	switch cfg.Backend {
	case config.CacheMemory:
		c, err := repository.NewMemoryCache(cfg.MaxEntries, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheRedis:
		c, err := repository.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = c
		return c, nil
	case config.CachePostgres:
		return a.Repo.ListingCache(cfg.TTL), nil
	default:
		return nil, nil
	}
}

// Close waits for pending audit writes and releases connections
func (a *App) Close() error {
	if a.Executor != nil {
		a.Executor.Flush()
	}

	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.Repo != nil {
		errs = append(errs, a.Repo.Close())
	}
	return errors.Join(errs...)
}
