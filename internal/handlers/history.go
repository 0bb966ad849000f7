package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/internal/engine"
)

func (h *SessionHandler) handleUndo(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	ok, err := eng.Undo(r.Context())
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	if !ok {
		writeError(w, h.logger, http.StatusConflict, "Nothing to undo.")
		return
	}
	h.handleRead(w, r, eng)
}

func (h *SessionHandler) handleRedo(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	ok, err := eng.Redo(r.Context())
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	if !ok {
		writeError(w, h.logger, http.StatusConflict, "Nothing to redo.")
		return
	}
	h.handleRead(w, r, eng)
}

// EditEntryRequest replaces a log entry's content.
type EditEntryRequest struct {
	Content string `json:"content"`
}

// ImageEditRequest regenerates an image entry with a new prompt.
type ImageEditRequest struct {
	Prompt string `json:"prompt"`
}

func (h *SessionHandler) handleEntries(w http.ResponseWriter, r *http.Request, eng *engine.Engine, rest []string) {
	if len(rest) == 0 {
		writeError(w, h.logger, http.StatusBadRequest, "Log entry ID is required")
		return
	}

	entryID, err := uuid.Parse(rest[0])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid log entry ID format")
		return
	}

	if len(rest) == 1 {
		if r.Method != http.MethodPatch {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only PATCH is supported.")
			return
		}
		var req EditEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := eng.EditEntry(r.Context(), entryID, req.Content); err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		h.handleRead(w, r, eng)
		return
	}

	switch rest[1] {
	case "regenerate":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		if err := eng.RegenerateFrom(r.Context(), entryID); err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		h.handleRead(w, r, eng)

	case "image":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		var req ImageEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Prompt == "" {
			writeError(w, h.logger, http.StatusBadRequest, "Image prompt is required")
			return
		}
		if err := eng.EditImage(r.Context(), entryID, req.Prompt); err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		h.handleRead(w, r, eng)

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown entry resource")
	}
}
