package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGeminiService_Generate(t *testing.T) {
	var captured geminiChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := geminiChatResponse{}
		resp.Candidates = []struct {
			Content      geminiContent `json:"content"`
			FinishReason string        `json:"finishReason"`
		}{
			{Content: geminiContent{Parts: []geminiPart{{Text: "You see "}, {Text: "a well."}}}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL, testLogger())
	out, err := svc.Generate(context.Background(), "gemini-2.5-flash", "You are the director.", "look around")
	require.NoError(t, err)
	assert.Equal(t, "You see a well.", out)

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "You are the director.", captured.SystemInstruction.Parts[0].Text)
	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "look around", captured.Contents[0].Parts[0].Text)
}

func TestGeminiService_GenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL, testLogger())
	_, err := svc.Generate(context.Background(), "gemini-2.5-flash", "", "look")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiService_GenerateEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL, testLogger())
	_, err := svc.Generate(context.Background(), "gemini-2.5-flash", "", "look")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestGeminiService_GenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":streamGenerateContent")
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"You ", "see ", "a well."}
		for _, text := range chunks {
			payload, err := json.Marshal(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
				},
			})
			require.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL, testLogger())
	ch, err := svc.GenerateStream(context.Background(), "gemini-2.5-flash", "", "look around")
	require.NoError(t, err)

	var content string
	var done bool
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		content += chunk.Content
		if chunk.Done {
			done = true
		}
	}
	assert.Equal(t, "You see a well.", content)
	assert.True(t, done)
}

func TestGeminiService_GenerateStreamSkipsMalformedChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {broken json\n\n")
		fmt.Fprint(w, `data: {"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`+"\n\n")
	}))
	defer server.Close()

	svc := NewGeminiService("test-key", server.URL, testLogger())
	ch, err := svc.GenerateStream(context.Background(), "gemini-2.5-flash", "", "look")
	require.NoError(t, err)

	var content string
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		content += chunk.Content
	}
	assert.Equal(t, "ok", content)
}
