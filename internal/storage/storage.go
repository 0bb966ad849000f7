package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/pkg/game"
)

// Storage defines the interface for session persistence
type Storage interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error

	// Close closes the storage connection
	Close() error

	// SaveSession persists the full save document for a session
	SaveSession(ctx context.Context, sessionID uuid.UUID, doc *game.SaveDocument) error

	// LoadSession retrieves a session's save document.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, sessionID uuid.UUID) (*game.SaveDocument, error)

	// DeleteSession removes a session and its snapshots
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error

	// ListSessions returns the IDs of all stored sessions
	ListSessions(ctx context.Context) ([]uuid.UUID, error)

	// SaveSnapshot persists a named snapshot for a session
	SaveSnapshot(ctx context.Context, sessionID uuid.UUID, snap *game.Snapshot) error

	// LoadSnapshot retrieves a snapshot by ID.
	// Returns nil if the snapshot doesn't exist.
	LoadSnapshot(ctx context.Context, sessionID uuid.UUID, snapshotID uuid.UUID) (*game.Snapshot, error)

	// ListSnapshots returns all snapshots for a session, newest first
	ListSnapshots(ctx context.Context, sessionID uuid.UUID) ([]*game.Snapshot, error)

	// DeleteSnapshot removes a snapshot by ID
	DeleteSnapshot(ctx context.Context, sessionID uuid.UUID, snapshotID uuid.UUID) error
}
