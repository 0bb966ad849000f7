package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagenService_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "imagen-4.0-generate-001:predict")

		var req imagenPredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Instances, 1)
		assert.Equal(t, "a sunken well", req.Instances[0].Prompt)
		assert.Equal(t, 1, req.Parameters.SampleCount)

		_, _ = w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"aW1n","mimeType":"image/jpeg"}]}`))
	}))
	defer server.Close()

	svc := NewImagenService("test-key", server.URL, testLogger())
	url, err := svc.Generate(context.Background(), "imagen-4.0-generate-001", "a sunken well")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,aW1n", url)
}

func TestImagenService_DefaultsMimeType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"aW1n"}]}`))
	}))
	defer server.Close()

	svc := NewImagenService("test-key", server.URL, testLogger())
	url, err := svc.Generate(context.Background(), "imagen-4.0-generate-001", "a sunken well")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aW1n", url)
}

func TestImagenService_NoPredictions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[]}`))
	}))
	defer server.Close()

	svc := NewImagenService("test-key", server.URL, testLogger())
	_, err := svc.Generate(context.Background(), "imagen-4.0-generate-001", "a sunken well")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image returned")
}
