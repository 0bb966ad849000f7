package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/pkg/game"
)

// SessionResponse matches the API session payload.
type SessionResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	State     *game.Aggregate `json:"state"`
	Credits   CreditsInfo     `json:"credits"`
	CanUndo   bool            `json:"can_undo"`
	CanRedo   bool            `json:"can_redo"`
}

type CreditsInfo struct {
	Balance int `json:"balance"`
	Max     int `json:"max"`
}

type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

type NotificationsResponse struct {
	Notifications []string `json:"notifications"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// doJSON sends a request and decodes the response into out. A nil body sends
// no payload; a nil out discards the response body.
func doJSON(client *http.Client, method, url string, body interface{}, out interface{}, wantStatus int) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func createSession(client *http.Client, baseURL string) (*SessionResponse, error) {
	var resp SessionResponse
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/sessions", nil, &resp, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &resp, nil
}

func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*SessionResponse, error) {
	var resp SessionResponse
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID)
	if err := doJSON(client, http.MethodGet, url, nil, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &resp, nil
}

func startGame(client *http.Client, baseURL string, sessionID uuid.UUID, name, backstory string) (*SessionResponse, error) {
	var resp SessionResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/start", baseURL, sessionID)
	body := map[string]string{"name": name, "backstory": backstory}
	if err := doJSON(client, http.MethodPost, url, body, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	return &resp, nil
}

func sendAction(client *http.Client, baseURL string, sessionID uuid.UUID, action string) (*SessionResponse, error) {
	var resp SessionResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/action", baseURL, sessionID)
	body := map[string]string{"action": action}
	if err := doJSON(client, http.MethodPost, url, body, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func requestSuggestions(client *http.Client, baseURL string, sessionID uuid.UUID) ([]string, error) {
	var resp SuggestResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/suggest", baseURL, sessionID)
	if err := doJSON(client, http.MethodPost, url, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

func undoTurn(client *http.Client, baseURL string, sessionID uuid.UUID) (*SessionResponse, error) {
	var resp SessionResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/undo", baseURL, sessionID)
	if err := doJSON(client, http.MethodPost, url, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func redoTurn(client *http.Client, baseURL string, sessionID uuid.UUID) (*SessionResponse, error) {
	var resp SessionResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/redo", baseURL, sessionID)
	if err := doJSON(client, http.MethodPost, url, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func createSnapshot(client *http.Client, baseURL string, sessionID uuid.UUID, name string) (*game.Snapshot, error) {
	var resp game.Snapshot
	url := fmt.Sprintf("%s/v1/sessions/%s/snapshots", baseURL, sessionID)
	body := map[string]string{"name": name}
	if err := doJSON(client, http.MethodPost, url, body, &resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &resp, nil
}

func listSnapshots(client *http.Client, baseURL string, sessionID uuid.UUID) ([]game.Snapshot, error) {
	var resp struct {
		Snapshots []game.Snapshot `json:"snapshots"`
	}
	url := fmt.Sprintf("%s/v1/sessions/%s/snapshots", baseURL, sessionID)
	if err := doJSON(client, http.MethodGet, url, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Snapshots, nil
}

func loadSnapshot(client *http.Client, baseURL string, sessionID, snapshotID uuid.UUID) (*SessionResponse, error) {
	var resp SessionResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/snapshots/%s/load", baseURL, sessionID, snapshotID)
	if err := doJSON(client, http.MethodPost, url, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// exportSave returns the raw save document JSON, suitable for the clipboard.
func exportSave(client *http.Client, baseURL string, sessionID uuid.UUID) (string, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s/save", baseURL, sessionID)
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

func fetchNotifications(client *http.Client, baseURL string, sessionID uuid.UUID) ([]string, error) {
	var resp NotificationsResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/notifications", baseURL, sessionID)
	if err := doJSON(client, http.MethodGet, url, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}
