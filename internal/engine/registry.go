package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/internal/metrics"
	"github.com/chimera-director/chimera/internal/services/events"
	"github.com/chimera-director/chimera/internal/storage"
	"github.com/chimera-director/chimera/pkg/credit"
	"github.com/chimera-director/chimera/pkg/game"
)

// ErrSessionNotFound is returned when a session ID does not resolve.
var ErrSessionNotFound = fmt.Errorf("session not found")

// Registry owns all live session engines and rehydrates persisted sessions
// on demand.
type Registry struct {
	mu      sync.Mutex
	engines map[uuid.UUID]*Engine

	providers        Providers
	store            storage.Storage
	broadcaster      *events.Broadcaster
	maxCredits       int
	costs            credit.Costs
	defaults         game.Settings
	streamingEnabled bool
	logger           *slog.Logger
}

// NewRegistry creates a session registry.
func NewRegistry(providers Providers, store storage.Storage, broadcaster *events.Broadcaster, maxCredits int, costs credit.Costs, streamingEnabled bool, logger *slog.Logger) *Registry {
	return &Registry{
		engines:          make(map[uuid.UUID]*Engine),
		providers:        providers,
		store:            store,
		broadcaster:      broadcaster,
		maxCredits:       maxCredits,
		costs:            costs,
		defaults:         game.DefaultSettings(),
		streamingEnabled: streamingEnabled,
		logger:           logger,
	}
}

// SetDefaultSettings overrides the settings new sessions start with.
func (r *Registry) SetDefaultSettings(s game.Settings) {
	r.mu.Lock()
	r.defaults = s
	r.mu.Unlock()
}

// Create starts a fresh session with default settings and a full ledger.
func (r *Registry) Create(ctx context.Context) (*Engine, error) {
	sessionID := uuid.New()
	ledger := credit.NewLedger(r.maxCredits, r.costs)
	r.mu.Lock()
	settings := r.defaults
	r.mu.Unlock()

	eng, err := New(sessionID, game.NewAggregate(), settings, ledger, r.providers, r.store, r.broadcaster, r.streamingEnabled, r.logger)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.engines[sessionID] = eng
	r.mu.Unlock()
	metrics.ActiveSessions.Inc()

	r.logger.Info("Session created", "session_id", sessionID)
	return eng, nil
}

// Get returns a live engine, rehydrating it from storage when the session
// exists but is not resident.
func (r *Registry) Get(ctx context.Context, sessionID uuid.UUID) (*Engine, error) {
	r.mu.Lock()
	if eng, ok := r.engines[sessionID]; ok {
		r.mu.Unlock()
		return eng, nil
	}
	r.mu.Unlock()

	doc, err := r.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrSessionNotFound
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("stored session is invalid: %w", err)
	}

	ledger := credit.NewLedger(r.maxCredits, r.costs)
	if doc.Credits != nil {
		ledger = credit.NewLedger(doc.Credits.Max, r.costs)
		ledger.Restore(doc.Credits.Balance)
	}
	settings := game.DefaultSettings()
	if doc.Settings != nil {
		settings = *doc.Settings
	}

	eng, err := New(sessionID, doc.Aggregate(), settings, ledger, r.providers, r.store, r.broadcaster, r.streamingEnabled, r.logger)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// Another request may have rehydrated the session concurrently.
	if existing, ok := r.engines[sessionID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.engines[sessionID] = eng
	r.mu.Unlock()
	metrics.ActiveSessions.Inc()

	r.logger.Info("Session rehydrated", "session_id", sessionID)
	return eng, nil
}

// Delete removes a session from memory and storage.
func (r *Registry) Delete(ctx context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	_, resident := r.engines[sessionID]
	delete(r.engines, sessionID)
	r.mu.Unlock()
	if resident {
		metrics.ActiveSessions.Dec()
	}

	return r.store.DeleteSession(ctx, sessionID)
}

// List returns the IDs of all persisted sessions.
func (r *Registry) List(ctx context.Context) ([]uuid.UUID, error) {
	return r.store.ListSessions(ctx)
}
