package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"investiq/pkg/investiq"
)

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]string{"status": "ok"})
}

// chat runs one conversational turn. Pipeline failures are conversational,
// not HTTP failures: the reply text carries the user-facing message, the
// error code rides alongside, and the status stays 200.
func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorResponse(w, investiq.NewError(investiq.ErrCodeInvalidInput, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		writeErrorResponse(w, investiq.NewError(investiq.ErrCodeInvalidInput, "message is required"))
		return
	}

	reply, err := h.core.Ask(r.Context(), payload.SessionID, payload.Message)
	resp := chatResponse{ChatReply: reply}
	if err != nil {
		resp.ErrorCode = string(investiq.CodeOf(err))
	}
	writeSuccess(w, resp)
}

// getStock returns the raw fundamentals snapshot without analysis.
func (h *handler) getStock(w http.ResponseWriter, r *http.Request) {
	ticker, err := h.resolveParam(r)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	rec, err := h.core.Fetch(r.Context(), ticker)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeSuccess(w, rec)
}

// analyzeStock returns the full overview including AI insights.
func (h *handler) analyzeStock(w http.ResponseWriter, r *http.Request) {
	ticker, err := h.resolveParam(r)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	overview, err := h.core.Analyze(r.Context(), ticker)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeSuccess(w, overview)
}

func (h *handler) getSuggestions(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, suggestionsResponse{Symbols: investiq.StockSuggestions()})
}

func (h *handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.core.DeleteSession(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeSuccess(w, map[string]string{"session_id": id})
}

// resolveParam maps the {symbol} URL parameter to an exchange-qualified
// ticker using the same resolution rules as chat input.
func (h *handler) resolveParam(r *http.Request) (string, error) {
	symbol := strings.TrimSpace(chi.URLParam(r, "symbol"))
	if symbol == "" {
		return "", investiq.NewError(investiq.ErrCodeInvalidInput, "symbol is required")
	}
	resolution, err := h.core.Resolve(symbol)
	if err != nil {
		return "", err
	}
	return resolution.Ticker, nil
}
