package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chimera-director/chimera/pkg/game"
)

const (
	sessionKeyPrefix  = "session:"
	snapshotKeyPrefix = "snapshots:"
)

// RedisStorage implements the Storage interface using Redis
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

// NewRedisStorageWithClient wraps an existing client, used in tests
func NewRedisStorageWithClient(client *redis.Client, logger *slog.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		logger: logger,
	}
}

func sessionKey(sessionID uuid.UUID) string {
	return sessionKeyPrefix + sessionID.String()
}

func snapshotKey(sessionID uuid.UUID) string {
	return snapshotKeyPrefix + sessionID.String()
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	r.logger.Debug("Redis ping successful", "result", cmd.Val())
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}

	r.logger.Info("Redis connection closed")
	return nil
}

// GetClient exposes the underlying client for pub/sub use
func (r *RedisStorage) GetClient() *redis.Client {
	return r.client
}

func (r *RedisStorage) SaveSession(ctx context.Context, sessionID uuid.UUID, doc *game.SaveDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal save document: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(sessionID), data, 0).Err(); err != nil {
		r.logger.Error("Redis SET failed", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.logger.Debug("Session saved", "session_id", sessionID, "bytes", len(data))
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, sessionID uuid.UUID) (*game.SaveDocument, error) {
	cmd := r.client.Get(ctx, sessionKey(sessionID))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Debug("Session not found", "session_id", sessionID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	doc, err := game.ParseSaveDocument([]byte(cmd.Val()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored session: %w", err)
	}
	return doc, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(sessionID), snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	r.logger.Debug("Session deleted", "session_id", sessionID)
	return nil
}

func (r *RedisStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw := iter.Val()[len(sessionKeyPrefix):]
		id, err := uuid.Parse(raw)
		if err != nil {
			r.logger.Warn("Skipping malformed session key", "key", iter.Val())
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return ids, nil
}

func (r *RedisStorage) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, snap *game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.HSet(ctx, snapshotKey(sessionID), snap.ID.String(), data).Err(); err != nil {
		r.logger.Error("Redis HSET failed", "session_id", sessionID, "snapshot_id", snap.ID, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.logger.Debug("Snapshot saved", "session_id", sessionID, "snapshot_id", snap.ID)
	return nil
}

func (r *RedisStorage) LoadSnapshot(ctx context.Context, sessionID uuid.UUID, snapshotID uuid.UUID) (*game.Snapshot, error) {
	cmd := r.client.HGet(ctx, snapshotKey(sessionID), snapshotID.String())
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(cmd.Val()), &snap); err != nil {
		return nil, fmt.Errorf("failed to parse stored snapshot: %w", err)
	}
	return &snap, nil
}

func (r *RedisStorage) ListSnapshots(ctx context.Context, sessionID uuid.UUID) ([]*game.Snapshot, error) {
	cmd := r.client.HGetAll(ctx, snapshotKey(sessionID))
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snaps := make([]*game.Snapshot, 0, len(cmd.Val()))
	for field, raw := range cmd.Val() {
		var snap game.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			r.logger.Warn("Skipping malformed snapshot", "session_id", sessionID, "field", field)
			continue
		}
		snaps = append(snaps, &snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

func (r *RedisStorage) DeleteSnapshot(ctx context.Context, sessionID uuid.UUID, snapshotID uuid.UUID) error {
	if err := r.client.HDel(ctx, snapshotKey(sessionID), snapshotID.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	r.logger.Debug("Snapshot deleted", "session_id", sessionID, "snapshot_id", snapshotID)
	return nil
}

// WaitForConnection retries the connection until Redis responds or the
// retry budget is exhausted
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
