package services

import (
	"context"
	"sync"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	GenerateFunc func(ctx context.Context, model, prompt string) (string, error)

	// Track calls for testing
	GenerateCalls []ImageGenerateCall

	mu sync.Mutex // protects all fields above
}

type ImageGenerateCall struct {
	Model  string
	Prompt string
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		GenerateCalls: make([]ImageGenerateCall, 0),
	}
}

// Generate mocks image generation
func (m *MockImageService) Generate(ctx context.Context, model string, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, ImageGenerateCall{
		Model:  model,
		Prompt: prompt,
	})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, model, prompt)
	}

	// Default behavior - tiny placeholder data URL
	return "data:image/png;base64,bW9jaw==", nil
}

// SetGenerateError sets up the mock to return an error on Generate
func (m *MockImageService) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, model, prompt string) (string, error) {
		return "", err
	}
}

// Calls returns a copy of the recorded Generate calls
func (m *MockImageService) Calls() []ImageGenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]ImageGenerateCall, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}

// Reset clears all call tracking
func (m *MockImageService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = make([]ImageGenerateCall, 0)
	m.GenerateFunc = nil
}
