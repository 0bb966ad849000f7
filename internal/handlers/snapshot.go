package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/internal/engine"
)

// CreateSnapshotRequest names a new branch point.
type CreateSnapshotRequest struct {
	Name string `json:"name"`
}

func (h *SessionHandler) handleSnapshots(w http.ResponseWriter, r *http.Request, eng *engine.Engine, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			snaps, err := eng.ListSnapshots(r.Context())
			if err != nil {
				writeEngineError(w, h.logger, err)
				return
			}
			writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{"snapshots": snaps})

		case http.MethodPost:
			var req CreateSnapshotRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
				return
			}
			if req.Name == "" {
				writeError(w, h.logger, http.StatusBadRequest, "Snapshot name is required")
				return
			}
			snap, err := eng.CreateSnapshot(r.Context(), req.Name)
			if err != nil {
				writeEngineError(w, h.logger, err)
				return
			}
			writeJSON(w, h.logger, http.StatusCreated, snap)

		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
		}
		return
	}

	snapshotID, err := uuid.Parse(rest[0])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid snapshot ID format")
		return
	}

	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only DELETE is supported.")
			return
		}
		if err := eng.DeleteSnapshot(r.Context(), snapshotID); err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if rest[1] == "load" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		if err := eng.LoadSnapshot(r.Context(), snapshotID); err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		h.handleRead(w, r, eng)
		return
	}

	writeError(w, h.logger, http.StatusNotFound, "Unknown snapshot resource")
}
