package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"forrealscan/api/internal/verdict"
)

type NormalizeRequest struct {
	Text string `json:"text"`
}

// Normalize runs only the pipeline over a raw completion. Debug surface.
func (h *Handle) Normalize(w http.ResponseWriter, r *http.Request) {
	requestID(w, r)
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit(h.svc.MaxImageBytes()))
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	rec, failure := verdict.Run(verdict.Completion{Text: req.Text})
	setFallback(w, failure)
	writeJSON(w, http.StatusOK, rec)
}
