package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"forrealscan/api/internal/config"
	"forrealscan/api/internal/wiring"
)

var analyzeFlags struct {
	llm     string
	mode    string
	mime    string
	timeout time.Duration
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Scan a local image with the configured engine and print the verdict",
	Long:  "Reads engine keys and defaults from the same environment as llm-proxy\n(OPENAI_API_KEY, GEMINI_API_KEY, DEFAULT_LLM, PROMPT_MODE, ...).",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.llm, "llm", "", "Engine: gpt, gemini or stub (default: DEFAULT_LLM)")
	f.StringVar(&analyzeFlags.mode, "mode", "", "Prompt profile (default: PROMPT_MODE)")
	f.StringVar(&analyzeFlags.mime, "mime", "", "Image MIME type (default: sniffed)")
	f.DurationVar(&analyzeFlags.timeout, "timeout", 3*time.Minute, "Overall deadline")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	svc, err := wiring.Service(cfg, logger)
	if err != nil {
		return err
	}

	img, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeFlags.timeout)
	defer cancel()
	res, err := svc.AnalyzeImage(ctx, img, analyzeFlags.mime, analyzeFlags.llm, analyzeFlags.mode)
	if err != nil {
		return err
	}
	if res.Failure != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "fallback: %s: %s\n", res.Failure.Kind(), res.Failure.Reason())
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "engine: %s (%s), mode: %s\n", res.Engine, res.Model, res.Mode)
	return printRecord(cmd.OutOrStdout(), res.Record)
}
