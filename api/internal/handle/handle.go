package handle

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"forrealscan/api/internal/scan"
	"forrealscan/api/internal/verdict"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderFallback  = "X-Verdict-Fallback"

	defaultDeadline = 180 * time.Second
)

type Handle struct {
	svc *scan.Service
	log *slog.Logger
}

func New(svc *scan.Service, log *slog.Logger) *Handle {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handle{svc: svc, log: log}
}

// Routes registers every endpoint on mux.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/api/analyze", h.Analyze)
	mux.HandleFunc("/v1/llm/analyze", h.Analyze)
	mux.HandleFunc("/v1/llm/normalize", h.Normalize)
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestID reuses the caller's id when present, otherwise mints one.
func requestID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, id)
	return id
}

func setFallback(w http.ResponseWriter, f verdict.Failure) {
	if f != nil {
		w.Header().Set(HeaderFallback, string(f.Kind()))
	}
}

// deadline читает таймаут из X-Request-Timeout или ?timeoutSec (секунды).
func deadline(r *http.Request) time.Duration {
	d := defaultDeadline
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			d = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			d = time.Duration(v) * time.Second
		}
	}
	return d
}

func withDeadline(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), deadline(r))
}
