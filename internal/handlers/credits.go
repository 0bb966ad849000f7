package handlers

import (
	"net/http"

	"github.com/chimera-director/chimera/internal/engine"
)

// CreditsResponse reports the ledger balance.
type CreditsResponse struct {
	Balance int `json:"balance"`
	Max     int `json:"max"`
}

func (h *SessionHandler) handleCredits(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	balance, max := eng.Credits()
	writeJSON(w, h.logger, http.StatusOK, CreditsResponse{Balance: balance, Max: max})
}

// NotificationsResponse carries drained transient notifications.
type NotificationsResponse struct {
	Notifications []string `json:"notifications"`
}

func (h *SessionHandler) handleNotifications(w http.ResponseWriter, r *http.Request, eng *engine.Engine) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	notes := eng.DrainNotifications()
	if notes == nil {
		notes = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, NotificationsResponse{Notifications: notes})
}
