package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chimera-director/chimera/internal/engine"
	"github.com/chimera-director/chimera/pkg/game"
)

func (h *SessionHandler) handleSave(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	switch r.Method {
	case http.MethodGet:
		doc, err := eng.ExportSave(r.Context())
		if err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, doc)

	case http.MethodPost:
		var doc game.SaveDocument
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid save document")
			return
		}
		if err := eng.ImportSave(r.Context(), &doc); err != nil {
			h.logger.Warn("Save import rejected", "session_id", eng.SessionID(), "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Save file is invalid or corrupted.")
			return
		}
		h.handleRead(w, r, eng)

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
	}
}

// TranscriptResponse is the read surface for the export collaborator.
type TranscriptResponse struct {
	Transcript []game.StoryLogEntry     `json:"transcript"`
	Images     []game.ImagePromptRecord `json:"images"`
}

func (h *SessionHandler) handleTranscript(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	state, err := eng.State()
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, TranscriptResponse{
		Transcript: state.Transcript(),
		Images:     state.ImagePromptManifest(),
	})
}
