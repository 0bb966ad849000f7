package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/internal/engine"
	"github.com/chimera-director/chimera/pkg/game"
)

// SessionHandler serves the session API. All sub-resources of a session are
// dispatched from here.
//
// Routes:
//
//	POST   /v1/sessions                                  - create session
//	GET    /v1/sessions                                  - list session IDs
//	GET    /v1/sessions/{id}                             - read session state
//	DELETE /v1/sessions/{id}                             - delete session
//	POST   /v1/sessions/{id}/start                       - start the game
//	POST   /v1/sessions/{id}/restart                     - restart the game
//	PUT    /v1/sessions/{id}/settings                    - replace settings
//	POST   /v1/sessions/{id}/action                      - submit a player action
//	POST   /v1/sessions/{id}/suggest                     - request action suggestions
//	POST   /v1/sessions/{id}/portrait                    - regenerate the portrait
//	POST   /v1/sessions/{id}/undo                        - undo
//	POST   /v1/sessions/{id}/redo                        - redo
//	PATCH  /v1/sessions/{id}/entries/{entryID}           - edit a log entry
//	POST   /v1/sessions/{id}/entries/{entryID}/regenerate - regenerate from a player entry
//	POST   /v1/sessions/{id}/entries/{entryID}/image     - regenerate an image entry
//	GET    /v1/sessions/{id}/snapshots                   - list snapshots
//	POST   /v1/sessions/{id}/snapshots                   - create snapshot
//	DELETE /v1/sessions/{id}/snapshots/{snapID}          - delete snapshot
//	POST   /v1/sessions/{id}/snapshots/{snapID}/load     - load snapshot
//	GET    /v1/sessions/{id}/save                        - export save document
//	POST   /v1/sessions/{id}/save                        - import save document
//	GET    /v1/sessions/{id}/transcript                  - read transcript and image manifest
//	GET    /v1/sessions/{id}/credits                     - read credit balance
//	GET    /v1/sessions/{id}/notifications               - drain notifications
type SessionHandler struct {
	registry *engine.Registry
	logger   *slog.Logger
}

// NewSessionHandler creates the session API handler.
func NewSessionHandler(registry *engine.Registry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
		}
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	eng, err := h.registry.Get(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, eng)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
		return
	}

	switch parts[1] {
	case "start":
		h.handleStart(w, r, eng)
	case "restart":
		h.handleRestart(w, r, eng)
	case "settings":
		h.handleSettings(w, r, eng)
	case "action":
		h.handleAction(w, r, eng)
	case "suggest":
		h.handleSuggest(w, r, eng)
	case "portrait":
		h.handlePortrait(w, r, eng)
	case "undo":
		h.handleUndo(w, r, eng)
	case "redo":
		h.handleRedo(w, r, eng)
	case "entries":
		h.handleEntries(w, r, eng, parts[2:])
	case "snapshots":
		h.handleSnapshots(w, r, eng, parts[2:])
	case "save":
		h.handleSave(w, r, eng)
	case "transcript":
		h.handleTranscript(w, r, eng)
	case "credits":
		h.handleCredits(w, r, eng)
	case "notifications":
		h.handleNotifications(w, r, eng)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session resource")
	}
}

// SessionResponse is the session state payload.
type SessionResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	State     *game.Aggregate `json:"state"`
	Credits   CreditsResponse `json:"credits"`
	CanUndo   bool            `json:"can_undo"`
	CanRedo   bool            `json:"can_redo"`
}

func (h *SessionHandler) sessionResponse(eng *engine.Engine) (*SessionResponse, error) {
	state, err := eng.State()
	if err != nil {
		return nil, err
	}
	balance, max := eng.Credits()
	return &SessionResponse{
		SessionID: eng.SessionID(),
		State:     state,
		Credits:   CreditsResponse{Balance: balance, Max: max},
		CanUndo:   eng.CanUndo(),
		CanRedo:   eng.CanRedo(),
	}, nil
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	eng, err := h.registry.Create(r.Context())
	if err != nil {
		h.logger.Error("Failed to create session", "error", err)
		writeEngineError(w, h.logger, err)
		return
	}

	resp, err := h.sessionResponse(eng)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *SessionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sessions", "error", err)
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{"sessions": ids})
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	resp, err := h.sessionResponse(eng)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	if err := h.registry.Delete(r.Context(), sessionID); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartGameRequest seeds the character at game start.
type StartGameRequest struct {
	Name      string `json:"name"`
	Backstory string `json:"backstory"`
}

func (h *SessionHandler) handleStart(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := eng.StartGame(r.Context(), req.Name, req.Backstory); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	h.handleRead(w, r, eng)
}

func (h *SessionHandler) handleRestart(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	if err := eng.RestartGame(r.Context()); err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	h.handleRead(w, r, eng)
}

func (h *SessionHandler) handleSettings(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.logger, http.StatusOK, eng.Settings())
	case http.MethodPut:
		var settings game.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := eng.UpdateSettings(r.Context(), settings); err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, eng.Settings())
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, PUT")
	}
}
