package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"forrealscan/api/internal/scan"
)

type AnalyzeRequest struct {
	ImageBase64 string `json:"imageBase64"`
	// ImageB64 is the snake_case alias used by older clients.
	ImageB64 string `json:"image_b64"`
	MIME     string `json:"mime"`
	LLMName  string `json:"llm_name"`
	Mode     string `json:"mode"`
}

func (h *Handle) Analyze(w http.ResponseWriter, r *http.Request) {
	id := requestID(w, r)
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit(h.svc.MaxImageBytes()))
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	b64 := req.ImageBase64
	if b64 == "" {
		b64 = req.ImageB64
	}

	ctx, cancel := withDeadline(r)
	defer cancel()

	res, err := h.svc.Analyze(ctx, scan.Request{
		ImageBase64: b64,
		MIME:        req.MIME,
		LLMName:     req.LLMName,
		Mode:        req.Mode,
	})
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			h.log.Error("analyze failed", "request_id", id, "err", err)
		}
		writeError(w, code, err.Error())
		return
	}

	setFallback(w, res.Failure)
	h.log.Info("analyze",
		"request_id", id, "engine", res.Engine, "model", res.Model, "mode", res.Mode,
		"score", res.Record.Score, "label", res.Record.Label, "fallback", res.Failure != nil)
	writeJSON(w, http.StatusOK, res.Record)
}

// statusFor maps caller errors to 4xx; anything else is our fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scan.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, scan.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, scan.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// bodyLimit leaves room for base64 expansion and the JSON envelope.
func bodyLimit(maxImage int64) int64 {
	return maxImage/3*4 + 4 + 64<<10
}
