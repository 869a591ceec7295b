package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"forrealscan/api/internal/config"
	"forrealscan/api/internal/handle"
	"forrealscan/api/internal/httpserver"
	"forrealscan/api/internal/wiring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	svc, err := wiring.Service(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handle.New(svc, logger).Routes(mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, httpserver.New(":"+cfg.Port, mux), logger)
	})

	logger.Info("llm-proxy started",
		"port", cfg.Port, "default_llm", cfg.DefaultLLM, "mode", cfg.PromptMode,
		"openai_model", cfg.OpenAIModel, "gemini_model", cfg.GeminiModel)
	if err := g.Wait(); err != nil {
		logger.Error("llm-proxy stopped", "err", err)
		os.Exit(1)
	}
}
