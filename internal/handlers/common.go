package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chimera-director/chimera/internal/engine"
	"github.com/chimera-director/chimera/pkg/credit"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}

// writeEngineError maps engine errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, engine.ErrTurnInFlight):
		writeError(w, logger, http.StatusConflict, "A turn is already in flight.")
	case errors.Is(err, credit.ErrInsufficient):
		writeError(w, logger, http.StatusPaymentRequired, "Insufficient credits.")
	case errors.Is(err, engine.ErrSessionNotFound):
		writeError(w, logger, http.StatusNotFound, "Session not found.")
	case errors.Is(err, engine.ErrSnapshotNotFound):
		writeError(w, logger, http.StatusNotFound, "Snapshot not found.")
	case errors.Is(err, engine.ErrEntryNotFound):
		writeError(w, logger, http.StatusNotFound, "Log entry not found.")
	case errors.Is(err, engine.ErrEntryNotEditable):
		writeError(w, logger, http.StatusBadRequest, "Entry cannot be edited.")
	default:
		writeError(w, logger, http.StatusInternalServerError, "Internal server error.")
	}
}
