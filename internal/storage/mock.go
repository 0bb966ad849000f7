package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/pkg/game"
)

// MockStorage is an in-memory implementation of Storage for testing
type MockStorage struct {
	SaveSessionFunc func(ctx context.Context, sessionID uuid.UUID, doc *game.SaveDocument) error
	LoadSessionFunc func(ctx context.Context, sessionID uuid.UUID) (*game.SaveDocument, error)

	sessions  map[uuid.UUID]*game.SaveDocument
	snapshots map[uuid.UUID]map[uuid.UUID]*game.Snapshot

	mu sync.Mutex
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new in-memory storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions:  make(map[uuid.UUID]*game.SaveDocument),
		snapshots: make(map[uuid.UUID]map[uuid.UUID]*game.Snapshot),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) SaveSession(ctx context.Context, sessionID uuid.UUID, doc *game.SaveDocument) error {
	if m.SaveSessionFunc != nil {
		return m.SaveSessionFunc(ctx, sessionID, doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = doc
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, sessionID uuid.UUID) (*game.SaveDocument, error) {
	if m.LoadSessionFunc != nil {
		return m.LoadSessionFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID], nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	delete(m.snapshots, sessionID)
	return nil
}

func (m *MockStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockStorage) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, snap *game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshots[sessionID] == nil {
		m.snapshots[sessionID] = make(map[uuid.UUID]*game.Snapshot)
	}
	m.snapshots[sessionID][snap.ID] = snap
	return nil
}

func (m *MockStorage) LoadSnapshot(ctx context.Context, sessionID uuid.UUID, snapshotID uuid.UUID) (*game.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[sessionID][snapshotID], nil
}

func (m *MockStorage) ListSnapshots(ctx context.Context, sessionID uuid.UUID) ([]*game.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := make([]*game.Snapshot, 0, len(m.snapshots[sessionID]))
	for _, snap := range m.snapshots[sessionID] {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

func (m *MockStorage) DeleteSnapshot(ctx context.Context, sessionID uuid.UUID, snapshotID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots[sessionID], snapshotID)
	return nil
}
