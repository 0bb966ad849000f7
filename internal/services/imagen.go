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

// ImagenService implements ImageService for the Imagen models on the
// Google Generative Language API.
type ImagenService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type imagenPredictRequest struct {
	Instances []struct {
		Prompt string `json:"prompt"`
	} `json:"instances"`
	Parameters struct {
		SampleCount int `json:"sampleCount"`
	} `json:"parameters"`
}

type imagenPredictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewImagenService creates a new Imagen image service
func NewImagenService(apiKey string, baseURL string, logger *slog.Logger) *ImagenService {
	return &ImagenService{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
		logger: logger,
	}
}

// Generate requests a single image and returns it as a data URL
func (s *ImagenService) Generate(ctx context.Context, model string, prompt string) (string, error) {
	var predictReq imagenPredictRequest
	predictReq.Instances = append(predictReq.Instances, struct {
		Prompt string `json:"prompt"`
	}{Prompt: prompt})
	predictReq.Parameters.SampleCount = 1

	reqBody, err := json.Marshal(predictReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict?key=%s", s.baseURL, model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Imagen API returned error",
			"status_code", resp.StatusCode,
			"model", model)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var predictResp imagenPredictResponse
	if err := json.Unmarshal(body, &predictResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if predictResp.Error != nil {
		return "", fmt.Errorf("API error: %s", predictResp.Error.Message)
	}
	if len(predictResp.Predictions) == 0 {
		return "", fmt.Errorf("no image returned by model %s", model)
	}

	pred := predictResp.Predictions[0]
	mime := pred.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, pred.BytesBase64Encoded), nil
}
