package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTurnStarted   EventType = "turn.started"
	EventTypeTurnCompleted EventType = "turn.completed"
	EventTypeTurnFailed    EventType = "turn.failed"
	EventTypeChatChunk     EventType = "chat.chunk"
	EventTypeEntryUpdated  EventType = "entry.updated"
	EventTypeNotification  EventType = "notification"
	EventTypeCreditsUpdate EventType = "credits.updated"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the pub/sub channel name for a session
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", sessionID.String())
}

// PublishTurnStarted publishes a turn.started event
func (b *Broadcaster) PublishTurnStarted(ctx context.Context, sessionID uuid.UUID, action string) error {
	event := Event{
		Type:      EventTypeTurnStarted,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"action": action,
		},
	}
	return b.publish(ctx, sessionID, event)
}

// PublishTurnCompleted publishes a turn.completed event
func (b *Broadcaster) PublishTurnCompleted(ctx context.Context, sessionID uuid.UUID) error {
	event := Event{
		Type:      EventTypeTurnCompleted,
		SessionID: sessionID.String(),
	}
	return b.publish(ctx, sessionID, event)
}

// PublishTurnFailed publishes a turn.failed event
func (b *Broadcaster) PublishTurnFailed(ctx context.Context, sessionID uuid.UUID, errorMsg string) error {
	event := Event{
		Type:      EventTypeTurnFailed,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"error": errorMsg,
		},
	}
	return b.publish(ctx, sessionID, event)
}

// PublishChatChunk publishes a chat.chunk event for streaming narrative
func (b *Broadcaster) PublishChatChunk(ctx context.Context, sessionID uuid.UUID, entryID uuid.UUID, content string, done bool) error {
	event := Event{
		Type:      EventTypeChatChunk,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"entry_id": entryID.String(),
			"content":  content,
			"done":     done,
		},
	}
	return b.publish(ctx, sessionID, event)
}

// PublishEntryUpdated publishes an entry.updated event, used when an
// image placeholder resolves to a final URL or sentinel
func (b *Broadcaster) PublishEntryUpdated(ctx context.Context, sessionID uuid.UUID, entryID uuid.UUID) error {
	event := Event{
		Type:      EventTypeEntryUpdated,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"entry_id": entryID.String(),
		},
	}
	return b.publish(ctx, sessionID, event)
}

// PublishNotification publishes a transient user-facing notification
func (b *Broadcaster) PublishNotification(ctx context.Context, sessionID uuid.UUID, message string) error {
	event := Event{
		Type:      EventTypeNotification,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"message": message,
		},
	}
	return b.publish(ctx, sessionID, event)
}

// PublishCreditsUpdated publishes the current credit balance
func (b *Broadcaster) PublishCreditsUpdated(ctx context.Context, sessionID uuid.UUID, balance int, max int) error {
	event := Event{
		Type:      EventTypeCreditsUpdate,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"balance": balance,
			"max":     max,
		},
	}
	return b.publish(ctx, sessionID, event)
}

func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
