package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"forrealscan/api/internal/scan"
)

const (
	defaultTimeout = 180 * time.Second
	// Telegram отдаёт файлы ботам до 20 МБ
	maxDownload = 20 << 20
)

func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	// последний размер самый большой
	ph := msg.Photo[len(msg.Photo)-1]
	r.analyzeFile(ctx, msg.Chat.ID, ph.FileID, "")
}

func (r *Router) acceptDocument(ctx context.Context, msg *tgbotapi.Message) {
	r.analyzeFile(ctx, msg.Chat.ID, msg.Document.FileID, msg.Document.MimeType)
}

func (r *Router) analyzeFile(ctx context.Context, chatID int64, fileID, mime string) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	img, err := download(ctx, url)
	if err != nil {
		r.SendError(chatID, fmt.Errorf("download: %w", err))
		return
	}

	r.send(chatID, "🔎 Analyzing…")

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := r.prefsFor(chatID)
	res, err := r.Svc.AnalyzeImage(ctx, img, mime, p.LLMName, p.Mode)
	if err != nil {
		if !errors.Is(err, scan.ErrInvalidRequest) {
			r.logger().Error("telegram analyze failed", "chat_id", chatID, "err", err)
		}
		r.SendError(chatID, err)
		return
	}
	r.logger().Info("telegram analyze",
		"chat_id", chatID, "engine", res.Engine, "model", res.Model,
		"score", res.Record.Score, "fallback", res.Failure != nil)
	r.send(chatID, FormatResult(res))
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownload))
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
