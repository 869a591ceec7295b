package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"forrealscan/api/internal/config"
	"forrealscan/api/internal/handle"
	"forrealscan/api/internal/httpserver"
	"forrealscan/api/internal/telegram"
	"forrealscan/api/internal/wiring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("bot stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is empty")
	}
	svc, err := wiring.Service(cfg, logger)
	if err != nil {
		return err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	bot.Debug = false

	r := &telegram.Router{
		Bot:     bot,
		Svc:     svc,
		Log:     logger,
		Timeout: cfg.UpstreamTimeout * 3,
	}

	// Тот же mux отдаёт healthz и, в режиме вебхука, принимает апдейты
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handle.New(svc, logger).Healthz)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		path := telegram.WebhookPath(bot.Token)
		wh, err := tgbotapi.NewWebhook(strings.TrimRight(webhookURL, "/") + path)
		if err != nil {
			return err
		}
		wh.DropPendingUpdates = true
		if _, err := bot.Request(wh); err != nil {
			return err
		}
		updates := make(chan tgbotapi.Update, bot.Buffer)
		mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
			upd, err := bot.HandleUpdate(req)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			select {
			case updates <- *upd:
			case <-req.Context().Done():
			}
		})
		logger.Info("webhook mode", "path", path)
		g.Go(func() error { return r.Consume(ctx, updates) })
	} else {
		// вебхук мог остаться от прошлого запуска: getUpdates с ним не работает
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logger.Warn("delete webhook failed", "err", err)
		}
		logger.Info("polling mode")
		g.Go(func() error { return r.RunPolling(ctx, bot) })
	}

	g.Go(func() error {
		return httpserver.Run(ctx, httpserver.New(":"+cfg.Port, mux), logger)
	})
	logger.Info("bot started", "user", bot.Self.UserName, "default_llm", cfg.DefaultLLM, "mode", cfg.PromptMode)
	return g.Wait()
}
