package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"forrealscan/api/internal/scan"
	"forrealscan/api/internal/util"
)

// Telegram caps a message at 4096 characters; keep headroom for the cut marker.
const maxMessageBytes = 3900

// Bot is the part of *tgbotapi.BotAPI the router needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Analyzer interface {
	AnalyzeImage(ctx context.Context, img []byte, mime, llmName, mode string) (scan.Result, error)
}

type Router struct {
	Bot Bot
	Svc Analyzer
	Log *slog.Logger

	// Defaults for chats that did not pick their own engine/mode.
	LLMName string
	Mode    string
	// Timeout bounds one analysis.
	Timeout time.Duration

	prefs sync.Map // chatID -> chatPrefs
}

type chatPrefs struct {
	LLMName string
	Mode    string
}

func (r *Router) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Log
}

func (r *Router) prefsFor(chatID int64) chatPrefs {
	p := chatPrefs{LLMName: r.LLMName, Mode: r.Mode}
	if v, ok := r.prefs.Load(chatID); ok {
		cp := v.(chatPrefs)
		if cp.LLMName != "" {
			p.LLMName = cp.LLMName
		}
		if cp.Mode != "" {
			p.Mode = cp.Mode
		}
	}
	return p
}

func (r *Router) setPrefs(chatID int64, update func(*chatPrefs)) {
	var p chatPrefs
	if v, ok := r.prefs.Load(chatID); ok {
		p = v.(chatPrefs)
	}
	update(&p)
	r.prefs.Store(chatID, p)
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(ctx, msg)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptDocument(ctx, msg)
	case msg.Text != "":
		r.send(msg.Chat.ID, "Send me a photo and I will estimate whether it was generated by AI.")
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		r.send(cid, "Send a photo (or an image file) and I will estimate how likely it is AI-generated.\n"+
			"Commands: /health, /engine [gpt|gemini|stub], /mode [quick|standard|forensic]")
	case "health":
		r.send(cid, "✅ OK")
	case "engine":
		if len(args) == 0 {
			r.send(cid, "Current engine: "+orDefault(r.prefsFor(cid).LLMName, "default")+
				"\nUsage: /engine gpt | /engine gemini | /engine stub")
			return
		}
		name := strings.ToLower(args[0])
		switch name {
		case "gpt", "openai", "gemini", "stub":
			r.setPrefs(cid, func(p *chatPrefs) { p.LLMName = name })
			r.send(cid, "✅ Engine: "+name)
		default:
			r.send(cid, "Unknown engine. Available: gpt | gemini | stub")
		}
	case "mode":
		if len(args) == 0 {
			r.send(cid, "Current mode: "+orDefault(r.prefsFor(cid).Mode, "default")+
				"\nUsage: /mode quick | /mode standard | /mode forensic")
			return
		}
		mode := strings.ToLower(args[0])
		r.setPrefs(cid, func(p *chatPrefs) { p.Mode = mode })
		r.send(cid, "✅ Mode: "+mode)
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) send(chatID int64, text string) {
	text = util.Truncate(text, maxMessageBytes)
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().Warn("telegram send failed", "chat_id", chatID, "err", err)
	}
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, fmt.Sprintf("❌ Could not analyze the image: %v", err))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
