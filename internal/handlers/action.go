package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chimera-director/chimera/internal/engine"
)

// ActionRequest carries one player action.
type ActionRequest struct {
	Action string `json:"action"`
}

func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Action == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Action text is required")
		return
	}

	if err := eng.SubmitAction(r.Context(), req.Action); err != nil {
		h.logger.Warn("Turn failed", "session_id", eng.SessionID(), "error", err)
		writeEngineError(w, h.logger, err)
		return
	}
	h.handleRead(w, r, eng)
}

// SuggestResponse carries next-action suggestions.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (h *SessionHandler) handleSuggest(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	suggestions, err := eng.Suggest(r.Context())
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

func (h *SessionHandler) handlePortrait(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	if err := eng.RegeneratePortrait(r.Context()); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	h.handleRead(w, r, eng)
}
