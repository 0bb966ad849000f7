package services

import (
	"context"
	"sync"
)

// MockTextService is a mock implementation of TextService for testing
type MockTextService struct {
	GenerateFunc       func(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
	GenerateStreamFunc func(ctx context.Context, model, systemPrompt, userPrompt string) (<-chan StreamChunk, error)

	// Track calls for testing
	GenerateCalls []GenerateCall

	mu sync.Mutex // protects all fields above
}

type GenerateCall struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// NewMockTextService creates a new mock text service
func NewMockTextService() *MockTextService {
	return &MockTextService{
		GenerateCalls: make([]GenerateCall, 0),
	}
}

// Generate mocks single-shot generation
func (m *MockTextService) Generate(ctx context.Context, model string, systemPrompt string, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, model, systemPrompt, userPrompt)
	}

	// Default behavior - plain narrative
	return "Mock narrative response.", nil
}

// GenerateStream mocks streaming generation. Without an override it
// emits the single-shot response as one chunk followed by done.
func (m *MockTextService) GenerateStream(ctx context.Context, model string, systemPrompt string, userPrompt string) (<-chan StreamChunk, error) {
	m.mu.Lock()
	streamFunc := m.GenerateStreamFunc
	m.mu.Unlock()

	if streamFunc != nil {
		return streamFunc(ctx, model, systemPrompt, userPrompt)
	}

	content, err := m.Generate(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamChunk, 2)
	out <- StreamChunk{Content: content}
	out <- StreamChunk{Done: true}
	close(out)
	return out, nil
}

// SetResponse sets a fixed response for all Generate calls
func (m *MockTextService) SetResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
		return content, nil
	}
}

// SetGenerateError sets up the mock to return an error on Generate
func (m *MockTextService) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
		return "", err
	}
}

// Calls returns a copy of the recorded Generate calls
func (m *MockTextService) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]GenerateCall, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}

// Reset clears all call tracking
func (m *MockTextService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = make([]GenerateCall, 0)
	m.GenerateFunc = nil
	m.GenerateStreamFunc = nil
}
