package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"homesearch/internal/logging"
	"homesearch/internal/model"
)

var (
	promptFileFlag   string
	noTranscriptFlag bool
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Run one conversation and print the answer",
	Long: `Run one conversation: the model may call get_listings, then answers from
the results. The full history is written as JSON to TRANSCRIPT_DIR.

Examples:
  homesearch ask "3 bedroom condos in 94103 under 1.5M"
  homesearch ask --prompt-file prompt.txt -v 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&promptFileFlag, "prompt-file", "f", "", "Read the prompt from this file")
	askCmd.Flags().BoolVar(&noTranscriptFlag, "no-transcript", false, "Do not write the transcript file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(args, promptFileFlag)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	ctx := logging.WithRequestID(cmd.Context(), id)

	a, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	history, err := a.Driver.Ask(ctx, prompt)

	if !noTranscriptFlag && len(history) > 0 {
		path, werr := writeTranscript(a.Config.Transcript.Dir, id, prompt, history)
		if werr != nil {
			a.Logger.Warn("failed to write transcript", "error", werr)
		} else {
			a.Logger.Info("transcript written", "path", path)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), history.FinalAnswer())
	return nil
}

func readPrompt(args []string, file string) (string, error) {
	var prompt string
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("give the prompt as an argument or with --prompt-file, not both")
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		prompt = string(b)
	case len(args) > 0:
		prompt = args[0]
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	return prompt, nil
}

type transcript struct {
	RequestID string        `json:"request_id"`
	Prompt    string        `json:"prompt"`
	CreatedAt time.Time     `json:"created_at"`
	History   model.History `json:"history"`
}

func writeTranscript(dir, id, prompt string, history model.History) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(transcript{
		RequestID: id,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
		History:   history,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, id+".json")
	return path, os.WriteFile(path, b, 0o644)
}
