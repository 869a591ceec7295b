// Package wiring builds the engines and the scan service from configuration.
package wiring

import (
	"fmt"
	"log/slog"

	"forrealscan/api/internal/config"
	"forrealscan/api/internal/engine"
	"forrealscan/api/internal/engine/gemini"
	"forrealscan/api/internal/engine/gpt"
	"forrealscan/api/internal/engine/stub"
	"forrealscan/api/internal/prompt"
	"forrealscan/api/internal/scan"
)

func ResilienceConfig(cfg *config.Config, log *slog.Logger) engine.ResilienceConfig {
	rc := engine.DefaultResilienceConfig()
	rc.Logger = log
	if cfg.UpstreamAttempts > 0 {
		rc.MaxAttempts = cfg.UpstreamAttempts
	}
	if cfg.UpstreamTimeout > 0 {
		rc.Timeout = cfg.UpstreamTimeout
	}
	return rc
}

// Engines wraps every network engine in retry + timeout. The stub stays bare.
func Engines(cfg *config.Config, log *slog.Logger) *engine.Engines {
	rc := ResilienceConfig(cfg, log)
	return &engine.Engines{
		Default: cfg.DefaultLLM,
		OpenAI:  engine.NewResilient(gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel).WithBaseURL(cfg.OpenAIBaseURL), rc),
		Gemini:  engine.NewResilient(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel), rc),
		Stub:    stub.New(),
	}
}

func Prompts(cfg *config.Config) (*prompt.Set, error) {
	set, err := prompt.Load(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}
	if cfg.PromptMode == "" {
		return set, nil
	}
	set, err = set.WithDefault(cfg.PromptMode)
	if err != nil {
		return nil, fmt.Errorf("PROMPT_MODE: %w", err)
	}
	return set, nil
}

// Service builds the scan service and checks that DEFAULT_LLM resolves.
func Service(cfg *config.Config, log *slog.Logger) (*scan.Service, error) {
	engs := Engines(cfg, log)
	if _, err := engs.GetEngine(""); err != nil {
		return nil, fmt.Errorf("DEFAULT_LLM: %w", err)
	}
	prompts, err := Prompts(cfg)
	if err != nil {
		return nil, err
	}
	return scan.New(engs, prompts, cfg.MaxImageBytes, log), nil
}
