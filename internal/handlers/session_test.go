package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimera-director/chimera/internal/engine"
	"github.com/chimera-director/chimera/internal/services"
	"github.com/chimera-director/chimera/internal/storage"
	"github.com/chimera-director/chimera/pkg/credit"
	"github.com/chimera-director/chimera/pkg/game"
)

func newTestHandler(t *testing.T, maxCredits int) (*SessionHandler, *services.MockTextService, *services.MockImageService) {
	t.Helper()

	text := services.NewMockTextService()
	image := services.NewMockImageService()
	providers := engine.Providers{
		CloudText:  text,
		LocalText:  text,
		CloudImage: image,
		LocalImage: image,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	registry := engine.NewRegistry(providers, storage.NewMockStorage(), nil, maxCredits, credit.DefaultCosts(), false, logger)
	return NewSessionHandler(registry, logger), text, image
}

func createSession(t *testing.T, h *SessionHandler) SessionResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestSessionHandler_CreateAndRead(t *testing.T) {
	h, _, _ := newTestHandler(t, 100)

	created := createSession(t, h)
	assert.Equal(t, 100, created.Credits.Balance)
	assert.Equal(t, game.PhaseOnboarding, created.State.GameState.Phase)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.SessionID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var read SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&read))
	assert.Equal(t, created.SessionID, read.SessionID)
}

func TestSessionHandler_UnknownSession(t *testing.T) {
	h, _, _ := newTestHandler(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/9b1e7b2c-38e5-4f57-9f8e-000000000000", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_InvalidSessionID(t *testing.T) {
	h, _, _ := newTestHandler(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Action(t *testing.T) {
	h, text, _ := newTestHandler(t, 100)
	text.SetResponse("You open the chest and find a key.<char_inventory_add>Key</char_inventory_add>")

	created := createSession(t, h)

	body, _ := json.Marshal(ActionRequest{Action: "open the chest"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.SessionID.String()+"/action", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"Key"}, resp.State.Character.Inventory)
	require.Len(t, resp.State.GameState.StoryLog, 2)
	assert.True(t, resp.CanUndo)
}

func TestSessionHandler_ActionInsufficientCredits(t *testing.T) {
	h, text, _ := newTestHandler(t, 0)

	created := createSession(t, h)

	body, _ := json.Marshal(ActionRequest{Action: "open the chest"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.SessionID.String()+"/action", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Empty(t, text.Calls())
}

func TestSessionHandler_ActionProviderFailure(t *testing.T) {
	h, text, _ := newTestHandler(t, 100)
	text.SetGenerateError(fmt.Errorf("connection refused"))

	created := createSession(t, h)

	body, _ := json.Marshal(ActionRequest{Action: "open the chest"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.SessionID.String()+"/action", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSessionHandler_UndoRedoFlow(t *testing.T) {
	h, text, _ := newTestHandler(t, 100)
	text.SetResponse("A reply.")

	created := createSession(t, h)
	base := "/v1/sessions/" + created.SessionID.String()

	// Undo with empty history conflicts.
	req := httptest.NewRequest(http.MethodPost, base+"/undo", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	body, _ := json.Marshal(ActionRequest{Action: "wave"})
	req = httptest.NewRequest(http.MethodPost, base+"/action", bytes.NewReader(body))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, base+"/undo", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Empty(t, resp.State.GameState.StoryLog)
	assert.True(t, resp.CanRedo)

	req = httptest.NewRequest(http.MethodPost, base+"/redo", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.State.GameState.StoryLog, 2)
}

func TestSessionHandler_SnapshotFlow(t *testing.T) {
	h, text, _ := newTestHandler(t, 100)
	text.SetResponse("A reply.")

	created := createSession(t, h)
	base := "/v1/sessions/" + created.SessionID.String()

	body, _ := json.Marshal(CreateSnapshotRequest{Name: "checkpoint"})
	req := httptest.NewRequest(http.MethodPost, base+"/snapshots", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var snap game.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	assert.Equal(t, "checkpoint", snap.Name)

	actionBody, _ := json.Marshal(ActionRequest{Action: "wave"})
	req = httptest.NewRequest(http.MethodPost, base+"/action", bytes.NewReader(actionBody))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, base+"/snapshots/"+snap.ID.String()+"/load", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Empty(t, resp.State.GameState.StoryLog)
	assert.False(t, resp.CanUndo)
}

func TestSessionHandler_CreditsAndNotifications(t *testing.T) {
	h, _, _ := newTestHandler(t, 0)

	created := createSession(t, h)
	base := "/v1/sessions/" + created.SessionID.String()

	// Trigger a refusal notification.
	body, _ := json.Marshal(ActionRequest{Action: "wave"})
	req := httptest.NewRequest(http.MethodPost, base+"/action", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	req = httptest.NewRequest(http.MethodGet, base+"/credits", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var credits CreditsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&credits))
	assert.Equal(t, 0, credits.Balance)

	req = httptest.NewRequest(http.MethodGet, base+"/notifications", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var notes NotificationsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&notes))
	assert.Len(t, notes.Notifications, 1)

	// Drained on read.
	req = httptest.NewRequest(http.MethodGet, base+"/notifications", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&notes))
	assert.Empty(t, notes.Notifications)
}

func TestSessionHandler_SaveRoundTrip(t *testing.T) {
	h, text, _ := newTestHandler(t, 100)
	text.SetResponse("You find a key.<char_inventory_add>Key</char_inventory_add>")

	created := createSession(t, h)
	base := "/v1/sessions/" + created.SessionID.String()

	body, _ := json.Marshal(ActionRequest{Action: "open the chest"})
	req := httptest.NewRequest(http.MethodPost, base+"/action", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, base+"/save", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	// Import into a fresh session.
	other := createSession(t, h)
	req = httptest.NewRequest(http.MethodPost, "/v1/sessions/"+other.SessionID.String()+"/save", bytes.NewReader(exported))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"Key"}, resp.State.Character.Inventory)
}

func TestSessionHandler_ImportRejectsInvalidSave(t *testing.T) {
	h, _, _ := newTestHandler(t, 100)

	created := createSession(t, h)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.SessionID.String()+"/save", bytes.NewReader([]byte(`{"version":"2.0.0"}`)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
