package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chimera-director/chimera/internal/metrics"
	"github.com/chimera-director/chimera/internal/services"
	"github.com/chimera-director/chimera/internal/services/events"
	"github.com/chimera-director/chimera/internal/storage"
	"github.com/chimera-director/chimera/pkg/credit"
	"github.com/chimera-director/chimera/pkg/directive"
	"github.com/chimera-director/chimera/pkg/game"
	"github.com/chimera-director/chimera/pkg/prompts"
)

// streamFlushInterval bounds how often a streaming narrative placeholder is
// rewritten while chunks arrive.
const streamFlushInterval = 150 * time.Millisecond

var (
	// ErrTurnInFlight is returned when a provider operation is requested
	// while another is outstanding. Requests are refused, not queued.
	ErrTurnInFlight = fmt.Errorf("a turn is already in flight")

	// ErrEntryNotFound is returned when a log entry ID does not resolve.
	ErrEntryNotFound = fmt.Errorf("log entry not found")

	// ErrEntryNotEditable is returned when an edit targets an entry kind
	// other than player or narrative.
	ErrEntryNotEditable = fmt.Errorf("entry is not editable")

	// ErrSnapshotNotFound is returned when a snapshot ID does not resolve.
	ErrSnapshotNotFound = fmt.Errorf("snapshot not found")
)

// Providers bundles the text and image backends for both service modes.
type Providers struct {
	CloudText  services.TextService
	LocalText  services.TextService
	CloudImage services.ImageService
	LocalImage services.ImageService
}

// Engine owns one session's narrative state: the aggregate, its history,
// the credit ledger and the turn pipeline. All provider interactions are
// serialized through a single in-flight flag; a second request is refused
// while one is outstanding.
type Engine struct {
	sessionID uuid.UUID

	mu       sync.Mutex
	inFlight bool

	agg      *game.Aggregate
	history  *History
	ledger   *credit.Ledger
	settings game.Settings

	providers   Providers
	store       storage.Storage
	broadcaster *events.Broadcaster
	logger      *slog.Logger

	streamingEnabled bool
	notifications    []string
}

// New creates an engine for the given session state.
func New(sessionID uuid.UUID, agg *game.Aggregate, settings game.Settings, ledger *credit.Ledger, providers Providers, store storage.Storage, broadcaster *events.Broadcaster, streamingEnabled bool, logger *slog.Logger) (*Engine, error) {
	history, err := NewHistory(agg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return &Engine{
		sessionID:        sessionID,
		agg:              agg,
		history:          history,
		ledger:           ledger,
		settings:         settings,
		providers:        providers,
		store:            store,
		broadcaster:      broadcaster,
		streamingEnabled: streamingEnabled,
		logger:           logger.With("session_id", sessionID.String()),
	}, nil
}

// SessionID returns the session identifier.
func (e *Engine) SessionID() uuid.UUID {
	return e.sessionID
}

// State returns a deep copy of the current aggregate for read access.
func (e *Engine) State() (*game.Aggregate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agg.DeepCopy()
}

// Credits returns the current balance and maximum.
func (e *Engine) Credits() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Balance(), e.ledger.Max()
}

// Settings returns the session settings.
func (e *Engine) Settings() game.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings replaces the session settings.
func (e *Engine) UpdateSettings(ctx context.Context, s game.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrTurnInFlight
	}
	e.settings = s
	return e.persistLocked(ctx)
}

// CanUndo reports whether undo is available.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether redo is available.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// DrainNotifications returns and clears pending transient notifications.
func (e *Engine) DrainNotifications() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.notifications
	e.notifications = nil
	return out
}

func (e *Engine) textService() services.TextService {
	if e.settings.Service == game.ServiceLocal {
		return e.providers.LocalText
	}
	return e.providers.CloudText
}

func (e *Engine) imageService() services.ImageService {
	if e.settings.Service == game.ServiceLocal {
		return e.providers.LocalImage
	}
	return e.providers.CloudImage
}

// begin enters the provider critical section after a pre-flight credit
// check. Refusal leaves the log and the ledger untouched.
func (e *Engine) begin(ctx context.Context, op credit.Operation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrTurnInFlight
	}
	if !e.ledger.CanAfford(op) {
		e.notifyLocked(ctx, "Not enough credits for this action.")
		return credit.ErrInsufficient
	}
	e.inFlight = true
	return nil
}

func (e *Engine) end() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

// StartGame moves the session from onboarding into play, seeding the
// character from the player's introduction.
func (e *Engine) StartGame(ctx context.Context, name, backstory string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrTurnInFlight
	}

	if name != "" {
		e.agg.Character.Name = name
	}
	if backstory != "" {
		e.agg.Character.Backstory = backstory
	}
	e.agg.GameState.Phase = game.PhasePlaying
	e.agg.GameState.AppendLog(game.NewLogEntry(game.EntrySystem, "The story begins."))

	if err := e.history.Record(e.agg); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// RestartGame resets the session to a fresh aggregate and clears all
// undo/redo history. The credit ledger is session metering, not narrative
// state, so the balance carries over.
func (e *Engine) RestartGame(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrTurnInFlight
	}

	e.agg = game.NewAggregate()
	if err := e.history.Clear(e.agg); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// SubmitAction runs one full turn: append the player action, invoke the
// narrative provider, parse and dispatch directives, and await all image
// tasks the turn spawned.
func (e *Engine) SubmitAction(ctx context.Context, action string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Errorf("action text is empty")
	}

	if err := e.begin(ctx, credit.OpTextTurn); err != nil {
		return err
	}
	defer e.end()

	start := time.Now()
	err := e.runTurn(ctx, action)
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.TurnsTotal.WithLabelValues("success").Inc()
	return nil
}

func (e *Engine) runTurn(ctx context.Context, action string) error {
	// The original, unmodified action is what enters the log, even when
	// prompt assist rewrites what the provider sees.
	e.mu.Lock()
	e.agg.GameState.AppendLog(game.NewLogEntry(game.EntryPlayer, action))
	e.mu.Unlock()
	e.publishTurnStarted(ctx, action)

	promptAction := action
	if e.settings.PromptAssist && e.settings.Service == game.ServiceCloud {
		if enhanced, err := e.enhanceAction(ctx, action); err == nil && enhanced != "" {
			promptAction = enhanced
		} else if err != nil {
			e.logger.Debug("Prompt assist failed, using original action", "error", err)
		}
	}

	e.mu.Lock()
	userPrompt, err := prompts.New().WithAggregate(e.agg).WithAction(promptAction).Build()
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to build prompt: %w", err)
	}

	systemPrompt := prompts.DirectorSystemPrompt
	if e.settings.Service == game.ServiceLocal {
		systemPrompt = prompts.LocalDirectorPromptPrefix + "\n\n" + prompts.DirectorSystemPrompt
	}

	svc := e.textService()
	model := e.settings.TextModel()

	if e.streamingEnabled && e.settings.Service == game.ServiceCloud {
		raw, entryID, err := e.streamNarrative(ctx, svc, model, systemPrompt, userPrompt)
		if err != nil {
			return err
		}
		return e.settleTurn(ctx, raw, entryID)
	}

	raw, err := svc.Generate(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return e.providerFailure(ctx, err)
	}
	return e.settleTurn(ctx, raw, uuid.Nil)
}

// streamNarrative appends a placeholder narrative entry and rewrites its
// content at a coalesced cadence as chunks arrive. The raw accumulated text
// is returned for the directive pipeline; on failure, partial streamed text
// already visible is left as-is.
func (e *Engine) streamNarrative(ctx context.Context, svc services.TextService, model, systemPrompt, userPrompt string) (string, uuid.UUID, error) {
	ch, err := svc.GenerateStream(ctx, model, systemPrompt, userPrompt)
	if err == services.ErrStreamingUnsupported {
		raw, genErr := svc.Generate(ctx, model, systemPrompt, userPrompt)
		if genErr != nil {
			return "", uuid.Nil, e.providerFailure(ctx, genErr)
		}
		return raw, uuid.Nil, nil
	}
	if err != nil {
		return "", uuid.Nil, e.providerFailure(ctx, err)
	}

	e.mu.Lock()
	entryID := e.agg.GameState.AppendLog(game.NewLogEntry(game.EntryNarrative, ""))
	e.mu.Unlock()

	var sb strings.Builder
	lastFlush := time.Now()
	for chunk := range ch {
		if chunk.Err != nil {
			return "", uuid.Nil, e.providerFailure(ctx, chunk.Err)
		}
		if chunk.Done {
			break
		}
		sb.WriteString(chunk.Content)
		if time.Since(lastFlush) >= streamFlushInterval {
			e.updateEntryContent(entryID, sb.String())
			e.publishChunk(ctx, entryID, sb.String(), false)
			lastFlush = time.Now()
		}
	}

	return sb.String(), entryID, nil
}

// settleTurn runs the parse/dispatch/coordinate pipeline over the raw
// provider output and settles the turn. For streaming turns entryID names
// the narrative placeholder to finalize; for single-shot turns it is nil
// and the narrative entry is appended after image placeholders.
func (e *Engine) settleTurn(ctx context.Context, raw string, entryID uuid.UUID) error {
	e.mu.Lock()
	directives, narrative := directive.Parse(raw)

	worker := directive.NewWorker(e.agg, e.logger)
	worker.ApplyAll(directives)

	coord := newCoordinator(e)
	coord.collect(directives)

	if entryID != uuid.Nil {
		if entry := e.agg.GameState.FindLogEntry(entryID); entry != nil {
			entry.Content = narrative
		}
	} else if narrative != "" {
		entryID = e.agg.GameState.AppendLog(game.NewLogEntry(game.EntryNarrative, narrative))
	}

	if worker.SignificantChange() {
		coord.scheduleAutoPortrait()
	}

	if err := e.ledger.Charge(credit.OpTextTurn); err != nil {
		// Pre-flight guaranteed affordability; log and continue.
		e.logger.Warn("Text turn charge failed after generation", "error", err)
	} else {
		metrics.CreditsSpentTotal.WithLabelValues(string(credit.OpTextTurn)).Add(float64(e.ledger.Cost(credit.OpTextTurn)))
	}
	e.mu.Unlock()

	if entryID != uuid.Nil {
		e.publishChunk(ctx, entryID, narrative, true)
	}

	// All image tasks spawned by the turn are jointly awaited before the
	// turn is considered fully settled.
	coord.run(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.history.Record(e.agg); err != nil {
		return err
	}
	if err := e.persistLocked(ctx); err != nil {
		return err
	}
	e.publishTurnCompleted(ctx)
	return nil
}

func (e *Engine) providerFailure(ctx context.Context, err error) error {
	e.logger.Error("Narrative provider failed", "error", err)
	metrics.ProviderErrorsTotal.WithLabelValues(string(e.settings.Service)).Inc()
	e.mu.Lock()
	e.notifyLocked(ctx, "The storyteller is unavailable. Please try again.")
	e.mu.Unlock()
	e.publishTurnFailed(ctx, err.Error())
	return fmt.Errorf("narrative generation failed: %w", err)
}

// enhanceAction rewrites the player action through the auxiliary prompt
// assist call. The caller falls back to the original text on any failure.
func (e *Engine) enhanceAction(ctx context.Context, action string) (string, error) {
	out, err := e.textService().Generate(ctx, e.settings.TextModel(), prompts.EnhancePrompt, action)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Suggest asks the provider for up to three next-action suggestions.
func (e *Engine) Suggest(ctx context.Context) ([]string, error) {
	if err := e.begin(ctx, credit.OpSuggestion); err != nil {
		return nil, err
	}
	defer e.end()

	e.mu.Lock()
	userPrompt, err := prompts.New().WithAggregate(e.agg).WithAction("What should I do next?").Build()
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	out, err := e.textService().Generate(ctx, e.settings.TextModel(), prompts.SuggestPrompt, userPrompt)
	if err != nil {
		return nil, e.providerFailure(ctx, err)
	}

	e.mu.Lock()
	if err := e.ledger.Charge(credit.OpSuggestion); err == nil {
		metrics.CreditsSpentTotal.WithLabelValues(string(credit.OpSuggestion)).Add(float64(e.ledger.Cost(credit.OpSuggestion)))
	}
	e.mu.Unlock()

	suggestions := make([]string, 0, 3)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions, nil
}

// RegeneratePortrait runs a manual portrait-regeneration task using the
// deterministic prompt built from current character state.
func (e *Engine) RegeneratePortrait(ctx context.Context) error {
	if err := e.begin(ctx, credit.OpImage); err != nil {
		return err
	}
	defer e.end()

	e.mu.Lock()
	task := imageTask{
		genContext:   game.ContextCharacter,
		prompt:       prompts.PortraitPrompt(&e.agg.Character),
		operation:    credit.OpImage,
		charPortrait: true,
	}
	e.mu.Unlock()

	e.runImageTask(ctx, task)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.history.Record(e.agg); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// EditImage regenerates an existing image log entry with a new prompt. On
// failure the previous image is retained unchanged.
func (e *Engine) EditImage(ctx context.Context, entryID uuid.UUID, prompt string) error {
	if err := e.begin(ctx, credit.OpImageEdit); err != nil {
		return err
	}
	defer e.end()

	e.mu.Lock()
	entry := e.agg.GameState.FindLogEntry(entryID)
	if entry == nil {
		e.mu.Unlock()
		return ErrEntryNotFound
	}
	if entry.Kind != game.EntryImage {
		e.mu.Unlock()
		return ErrEntryNotEditable
	}
	model := e.settings.ImageModel(game.ContextScene)
	svc := e.imageService()
	e.mu.Unlock()

	url, err := svc.Generate(ctx, model, prompt)
	if err != nil {
		e.logger.Error("Image edit failed", "error", err, "entry_id", entryID)
		metrics.ProviderErrorsTotal.WithLabelValues(string(e.settings.Service)).Inc()
		e.mu.Lock()
		e.notifyLocked(ctx, "Image generation failed.")
		e.mu.Unlock()
		return fmt.Errorf("image edit failed: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ledger.Charge(credit.OpImageEdit); err != nil {
		e.notifyLocked(ctx, "Not enough credits for this action.")
		return err
	}
	metrics.CreditsSpentTotal.WithLabelValues(string(credit.OpImageEdit)).Add(float64(e.ledger.Cost(credit.OpImageEdit)))

	if entry := e.agg.GameState.FindLogEntry(entryID); entry != nil {
		entry.Content = url
		entry.Prompt = prompt
	}
	e.publishEntryUpdated(ctx, entryID)

	if err := e.history.Record(e.agg); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// EditEntry rewrites the content of a player or narrative log entry.
func (e *Engine) EditEntry(ctx context.Context, entryID uuid.UUID, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrTurnInFlight
	}

	entry := e.agg.GameState.FindLogEntry(entryID)
	if entry == nil {
		return ErrEntryNotFound
	}
	if entry.Kind != game.EntryPlayer && entry.Kind != game.EntryNarrative {
		return ErrEntryNotEditable
	}
	entry.Content = content

	if err := e.history.Record(e.agg); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// RegenerateFrom truncates the log back to (excluding) the given player
// entry and resubmits that action as a new turn. Everything after the
// truncation point is discarded without confirmation.
func (e *Engine) RegenerateFrom(ctx context.Context, entryID uuid.UUID) error {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return ErrTurnInFlight
	}

	idx := -1
	for i := range e.agg.GameState.StoryLog {
		if e.agg.GameState.StoryLog[i].ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return ErrEntryNotFound
	}
	target := e.agg.GameState.StoryLog[idx]
	if target.Kind != game.EntryPlayer {
		e.mu.Unlock()
		return ErrEntryNotEditable
	}
	action := target.Content
	e.agg.GameState.StoryLog = e.agg.GameState.StoryLog[:idx]
	e.mu.Unlock()

	return e.SubmitAction(ctx, action)
}

// Undo steps the aggregate back one recorded state. Returns false when no
// older state exists.
func (e *Engine) Undo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return false, ErrTurnInFlight
	}

	restored, ok := e.history.Undo()
	if !ok {
		return false, nil
	}
	e.agg = restored
	return true, e.persistLocked(ctx)
}

// Redo steps the aggregate forward one undone state. Returns false when no
// undone state exists.
func (e *Engine) Redo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return false, ErrTurnInFlight
	}

	restored, ok := e.history.Redo()
	if !ok {
		return false, nil
	}
	e.agg = restored
	return true, e.persistLocked(ctx)
}

// CreateSnapshot deep-copies the current aggregate into a named branch
// point. The current state is never mutated.
func (e *Engine) CreateSnapshot(ctx context.Context, name string) (*game.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return nil, ErrTurnInFlight
	}

	snap, err := game.NewSnapshot(name, e.agg)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := e.store.SaveSnapshot(ctx, e.sessionID, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// LoadSnapshot replaces the current aggregate wholesale with the snapshot's
// state and clears undo/redo history; the loaded point becomes the new
// history root.
func (e *Engine) LoadSnapshot(ctx context.Context, snapshotID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrTurnInFlight
	}

	snap, err := e.store.LoadSnapshot(ctx, e.sessionID, snapshotID)
	if err != nil {
		return err
	}
	if snap == nil {
		e.notifyLocked(ctx, "Snapshot not found.")
		return ErrSnapshotNotFound
	}

	restored, err := snap.State.DeepCopy()
	if err != nil {
		return fmt.Errorf("failed to copy snapshot state: %w", err)
	}
	e.agg = restored
	if err := e.history.Clear(e.agg); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// DeleteSnapshot removes a snapshot; current state is unaffected.
func (e *Engine) DeleteSnapshot(ctx context.Context, snapshotID uuid.UUID) error {
	return e.store.DeleteSnapshot(ctx, e.sessionID, snapshotID)
}

// ListSnapshots returns the session's snapshots, newest first.
func (e *Engine) ListSnapshots(ctx context.Context) ([]*game.Snapshot, error) {
	return e.store.ListSnapshots(ctx, e.sessionID)
}

// ExportSave assembles the full versioned save document, including
// snapshots, for the export collaborator.
func (e *Engine) ExportSave(ctx context.Context) (*game.SaveDocument, error) {
	snaps, err := e.store.ListSnapshots(ctx, e.sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	snapshots := make([]game.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		snapshots = append(snapshots, *s)
	}
	return game.NewSaveDocument(e.agg, snapshots, e.settings, game.CreditsRecord{
		Balance: e.ledger.Balance(),
		Max:     e.ledger.Max(),
	})
}

// ImportSave replaces the session state with a validated save document.
// An invalid document aborts before any state mutation.
func (e *Engine) ImportSave(ctx context.Context, doc *game.SaveDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrTurnInFlight
	}

	if err := doc.Validate(); err != nil {
		e.notifyLocked(ctx, "Save file is invalid or corrupted.")
		return fmt.Errorf("invalid save document: %w", err)
	}

	e.agg = doc.Aggregate()
	if doc.Settings != nil {
		e.settings = *doc.Settings
	}
	if doc.Credits != nil {
		e.ledger.Restore(doc.Credits.Balance)
	}
	for i := range doc.Snapshots {
		if err := e.store.SaveSnapshot(ctx, e.sessionID, &doc.Snapshots[i]); err != nil {
			return err
		}
	}
	if err := e.history.Clear(e.agg); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// persistLocked writes the current session state through storage. Must be
// called with the engine lock held.
func (e *Engine) persistLocked(ctx context.Context) error {
	doc, err := game.NewSaveDocument(e.agg, nil, e.settings, game.CreditsRecord{
		Balance: e.ledger.Balance(),
		Max:     e.ledger.Max(),
	})
	if err != nil {
		return fmt.Errorf("failed to build save document: %w", err)
	}
	return e.store.SaveSession(ctx, e.sessionID, doc)
}

// notifyLocked records a transient user-facing notification. Must be called
// with the engine lock held.
func (e *Engine) notifyLocked(ctx context.Context, message string) {
	e.notifications = append(e.notifications, message)
	if e.broadcaster != nil {
		_ = e.broadcaster.PublishNotification(ctx, e.sessionID, message)
	}
}

func (e *Engine) updateEntryContent(entryID uuid.UUID, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry := e.agg.GameState.FindLogEntry(entryID); entry != nil {
		entry.Content = content
	}
}

func (e *Engine) publishTurnStarted(ctx context.Context, action string) {
	if e.broadcaster != nil {
		_ = e.broadcaster.PublishTurnStarted(ctx, e.sessionID, action)
	}
}

func (e *Engine) publishTurnCompleted(ctx context.Context) {
	if e.broadcaster != nil {
		_ = e.broadcaster.PublishTurnCompleted(ctx, e.sessionID)
	}
}

func (e *Engine) publishTurnFailed(ctx context.Context, msg string) {
	if e.broadcaster != nil {
		_ = e.broadcaster.PublishTurnFailed(ctx, e.sessionID, msg)
	}
}

func (e *Engine) publishChunk(ctx context.Context, entryID uuid.UUID, content string, done bool) {
	if e.broadcaster != nil {
		_ = e.broadcaster.PublishChatChunk(ctx, e.sessionID, entryID, content, done)
	}
}

// publishEntryUpdated must be called with the engine lock held or from a
// context where the entry ID is stable.
func (e *Engine) publishEntryUpdated(ctx context.Context, entryID uuid.UUID) {
	if e.broadcaster != nil {
		_ = e.broadcaster.PublishEntryUpdated(ctx, e.sessionID, entryID)
	}
}

// publishCredits must be called with the engine lock held.
func (e *Engine) publishCredits(ctx context.Context) {
	if e.broadcaster != nil {
		_ = e.broadcaster.PublishCreditsUpdated(ctx, e.sessionID, e.ledger.Balance(), e.ledger.Max())
	}
}
