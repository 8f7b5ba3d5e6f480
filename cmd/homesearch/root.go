package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"homesearch/internal/app"
	"homesearch/internal/config"
	"homesearch/internal/logging"
)

var (
	verbosityFlag int
	logFileFlag   string
	limitFlag     int
	modelFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "homesearch",
	Short: "Search active real estate listings through a language model",
	Long: `homesearch asks a language model to turn a natural language request into
a RentCast listings search, runs the search, and has the model answer from
the retrieved listings.

Configuration comes from the environment (or a .env file) and the optional
agent profile named by AGENT_PROFILE_FILE.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&verbosityFlag, "verbosity", "v", -1, "Log verbosity 0-3 (error..debug), overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also append logs to this file")
	rootCmd.PersistentFlags().IntVar(&limitFlag, "tool-call-limit", 0, "Maximum tool calls per request, overrides TOOL_CALL_LIMIT")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model name, overrides OPENAI_MODEL")

	rootCmd.AddCommand(askCmd, listingsCmd, schemaCmd)
}

// loadConfig applies command line overrides on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbosityFlag >= 0 {
		cfg.Logging.Verbosity = verbosityFlag
	}
	if logFileFlag != "" {
		cfg.Logging.File = logFileFlag
	}
	if limitFlag > 0 {
		cfg.Agent.ToolCallLimit = limitFlag
	}
	if modelFlag != "" {
		cfg.OpenAI.Model = modelFlag
	}
	return cfg, cfg.Validate()
}

// setup loads configuration and builds the components. Logs go to stderr so
// stdout carries only command output.
func setup(ctx context.Context) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, logCloser, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logCloser.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to release resources", "error", err)
		}
		logCloser.Close()
	}
	return a, cleanup, nil
}

func newLogger(cfg *config.Config, out io.Writer) (*slog.Logger, io.Closer, error) {
	return logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Verbosity: cfg.Logging.Verbosity,
		Format:    cfg.Logging.Format,
		File:      cfg.Logging.File,
		Output:    out,
	})
}
