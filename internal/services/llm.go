package services

import (
	"context"
	"errors"
)

// ErrStreamingUnsupported is returned by providers that only support
// single-shot generation.
var ErrStreamingUnsupported = errors.New("streaming not supported by provider")

// StreamChunk is a single fragment of a streaming text response.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}

// TextService defines the interface for narrative text generation
type TextService interface {
	// Generate produces a complete directive-tagged response for a turn
	Generate(ctx context.Context, model string, systemPrompt string, userPrompt string) (string, error)

	// GenerateStream produces the same response as a stream of chunks.
	// Implementations that cannot stream return ErrStreamingUnsupported.
	GenerateStream(ctx context.Context, model string, systemPrompt string, userPrompt string) (<-chan StreamChunk, error)
}

// ImageService defines the interface for image generation providers
type ImageService interface {
	// Generate returns the generated image as a data URL
	Generate(ctx context.Context, model string, prompt string) (string, error)
}
