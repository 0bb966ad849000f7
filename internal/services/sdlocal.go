package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SDLocalService implements ImageService for a local Stable Diffusion
// instance exposing the AUTOMATIC1111-compatible txt2img endpoint.
type SDLocalService struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSDLocalService creates a new local image service instance
func NewSDLocalService(baseURL string, logger *slog.Logger) *SDLocalService {
	return &SDLocalService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
		logger: logger,
	}
}

// Generate requests a single image and returns it as a data URL
func (s *SDLocalService) Generate(ctx context.Context, model string, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"prompt": prompt,
		"steps":  4,
		"override_settings": map[string]string{
			"sd_model_checkpoint": model,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := s.baseURL + "/sdapi/v1/txt2img"
	s.logger.Debug("Making local txt2img request", "url", url, "model", model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Local image API returned error",
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return "", fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var txt2imgResp struct {
		Images []string `json:"images"`
	}
	if err := json.Unmarshal(body, &txt2imgResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(txt2imgResp.Images) == 0 {
		return "", fmt.Errorf("no image returned by model %s", model)
	}

	return "data:image/png;base64," + txt2imgResp.Images[0], nil
}
