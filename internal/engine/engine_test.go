package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimera-director/chimera/internal/services"
	"github.com/chimera-director/chimera/internal/storage"
	"github.com/chimera-director/chimera/pkg/credit"
	"github.com/chimera-director/chimera/pkg/game"
	"github.com/chimera-director/chimera/pkg/prompts"
)

type testDeps struct {
	text  *services.MockTextService
	image *services.MockImageService
	store *storage.MockStorage
}

func newTestEngine(t *testing.T, maxCredits int, settings game.Settings) (*Engine, *testDeps) {
	t.Helper()

	deps := &testDeps{
		text:  services.NewMockTextService(),
		image: services.NewMockImageService(),
		store: storage.NewMockStorage(),
	}
	providers := Providers{
		CloudText:  deps.text,
		LocalText:  deps.text,
		CloudImage: deps.image,
		LocalImage: deps.image,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ledger := credit.NewLedger(maxCredits, credit.DefaultCosts())

	eng, err := New(uuid.New(), game.NewAggregate(), settings, ledger, providers, deps.store, nil, false, logger)
	require.NoError(t, err)
	return eng, deps
}

func newStreamingEngine(t *testing.T) (*Engine, *testDeps) {
	t.Helper()

	deps := &testDeps{
		text:  services.NewMockTextService(),
		image: services.NewMockImageService(),
		store: storage.NewMockStorage(),
	}
	providers := Providers{
		CloudText:  deps.text,
		LocalText:  deps.text,
		CloudImage: deps.image,
		LocalImage: deps.image,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ledger := credit.NewLedger(100, credit.DefaultCosts())

	eng, err := New(uuid.New(), game.NewAggregate(), defaultTestSettings(), ledger, providers, deps.store, nil, true, logger)
	require.NoError(t, err)
	return eng, deps
}

func defaultTestSettings() game.Settings {
	s := game.DefaultSettings()
	s.PromptAssist = false
	return s
}

func TestSubmitAction_ChestScenario(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse("You open the chest and find a key.<char_inventory_add>Key</char_inventory_add><char_inventory_add>Key</char_inventory_add>")

	require.NoError(t, eng.SubmitAction(context.Background(), "open the chest"))

	state, err := eng.State()
	require.NoError(t, err)

	// The duplicate directive must not duplicate the item.
	assert.Equal(t, []string{"Key"}, state.Character.Inventory)

	require.Len(t, state.GameState.StoryLog, 2)
	assert.Equal(t, game.EntryPlayer, state.GameState.StoryLog[0].Kind)
	assert.Equal(t, "open the chest", state.GameState.StoryLog[0].Content)
	assert.Equal(t, game.EntryNarrative, state.GameState.StoryLog[1].Kind)
	assert.Equal(t, "You open the chest and find a key.", state.GameState.StoryLog[1].Content)
}

func TestSubmitAction_AutoPortraitOnSignificantChange(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse("A blade appears.<char_inventory_add>Sword</char_inventory_add>")

	require.NoError(t, eng.SubmitAction(context.Background(), "search the armory"))

	calls := deps.image.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "Sword")

	state, err := eng.State()
	require.NoError(t, err)
	assert.NotEmpty(t, state.Character.ImageURL)
}

func TestSubmitAction_AutoPortraitRunsAfterExplicitPortrait(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse("A blade appears.<char_inventory_add>Sword</char_inventory_add><gen_char_image>a weathered hero, empty-handed</gen_char_image>")
	deps.image.GenerateFunc = func(ctx context.Context, model, prompt string) (string, error) {
		if strings.Contains(prompt, "Sword") {
			return "data:image/png;base64,YXV0bw==", nil
		}
		// A slow explicit portrait must not overwrite the refresh that
		// follows the inventory change.
		time.Sleep(50 * time.Millisecond)
		return "data:image/png;base64,ZXhwbGljaXQ=", nil
	}

	require.NoError(t, eng.SubmitAction(context.Background(), "search the armory"))

	state, err := eng.State()
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,YXV0bw==", state.Character.ImageURL)
	require.Len(t, state.Character.ImageURLHistory, 2)
	assert.Equal(t, "data:image/png;base64,ZXhwbGljaXQ=", state.Character.ImageURLHistory[0].URL)
	assert.Equal(t, "data:image/png;base64,YXV0bw==", state.Character.ImageURLHistory[1].URL)
}

func TestSubmitAction_StreamingTurn(t *testing.T) {
	eng, deps := newStreamingEngine(t)
	deps.text.GenerateStreamFunc = func(ctx context.Context, model, systemPrompt, userPrompt string) (<-chan services.StreamChunk, error) {
		out := make(chan services.StreamChunk, 4)
		out <- services.StreamChunk{Content: "You find "}
		out <- services.StreamChunk{Content: "a key.<char_inventory_add>Key</char_inventory_add>"}
		out <- services.StreamChunk{Done: true}
		close(out)
		return out, nil
	}

	require.NoError(t, eng.SubmitAction(context.Background(), "open the chest"))

	// The turn went through the stream path, not single-shot Generate.
	assert.Empty(t, deps.text.Calls())

	state, err := eng.State()
	require.NoError(t, err)
	require.Len(t, state.GameState.StoryLog, 2)
	assert.Equal(t, game.EntryPlayer, state.GameState.StoryLog[0].Kind)

	// The placeholder narrative entry is finalized with the tag-stripped text.
	assert.Equal(t, game.EntryNarrative, state.GameState.StoryLog[1].Kind)
	assert.Equal(t, "You find a key.", state.GameState.StoryLog[1].Content)

	// Directives in the streamed text were dispatched.
	assert.Equal(t, []string{"Key"}, state.Character.Inventory)
}

func TestSubmitAction_StreamingFlushesPartialContent(t *testing.T) {
	eng, deps := newStreamingEngine(t)

	partialSeen := make(chan bool, 1)
	deps.text.GenerateStreamFunc = func(ctx context.Context, model, systemPrompt, userPrompt string) (<-chan services.StreamChunk, error) {
		out := make(chan services.StreamChunk)
		go func() {
			defer close(out)
			out <- services.StreamChunk{Content: "You find "}
			time.Sleep(streamFlushInterval + 20*time.Millisecond)
			// This chunk lands past the flush interval, so the entry is
			// rewritten with the accumulated text before the stream ends.
			out <- services.StreamChunk{Content: "a "}

			seen := false
			for deadline := time.Now().Add(2 * time.Second); time.Now().Before(deadline); {
				state, err := eng.State()
				if err == nil && len(state.GameState.StoryLog) > 1 &&
					state.GameState.StoryLog[1].Content == "You find a " {
					seen = true
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			partialSeen <- seen

			out <- services.StreamChunk{Content: "key."}
			out <- services.StreamChunk{Done: true}
		}()
		return out, nil
	}

	require.NoError(t, eng.SubmitAction(context.Background(), "open the chest"))

	assert.True(t, <-partialSeen, "interim flush never surfaced the partial narrative")

	state, err := eng.State()
	require.NoError(t, err)
	assert.Equal(t, "You find a key.", state.GameState.StoryLog[1].Content)
}

func TestSubmitAction_TagsOnlyResponseAddsNoNarrativeEntry(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse("<world_lore>The moon is hollow.</world_lore>")

	require.NoError(t, eng.SubmitAction(context.Background(), "ponder the sky"))

	state, err := eng.State()
	require.NoError(t, err)
	require.Len(t, state.GameState.StoryLog, 1)
	assert.Equal(t, game.EntryPlayer, state.GameState.StoryLog[0].Kind)
	assert.Equal(t, "The moon is hollow.", state.World.Lore)
}

func TestSubmitAction_TwoImagePlaceholders(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse(`The cavern splits.<gen_image>a glittering cavern</gen_image><gen_image>a dark tunnel</gen_image>`)
	deps.image.GenerateFunc = func(ctx context.Context, model, prompt string) (string, error) {
		if strings.Contains(prompt, "dark") {
			return "", fmt.Errorf("provider exploded")
		}
		return "data:image/png;base64,b2s=", nil
	}

	require.NoError(t, eng.SubmitAction(context.Background(), "look around"))

	state, err := eng.State()
	require.NoError(t, err)
	require.Len(t, state.GameState.StoryLog, 4)

	// Placeholders keep document order: two image entries, then narrative.
	first := state.GameState.StoryLog[1]
	second := state.GameState.StoryLog[2]
	assert.Equal(t, game.EntryImage, first.Kind)
	assert.Equal(t, game.EntryImage, second.Kind)
	assert.Equal(t, "a glittering cavern", first.Prompt)
	assert.Equal(t, "a dark tunnel", second.Prompt)

	assert.Equal(t, "data:image/png;base64,b2s=", first.Content)
	assert.Equal(t, FailedContent, second.Content)
	assert.Equal(t, game.EntryNarrative, state.GameState.StoryLog[3].Kind)

	assert.NotEmpty(t, eng.DrainNotifications())
}

func TestSubmitAction_InsufficientCredits(t *testing.T) {
	eng, deps := newTestEngine(t, 0, defaultTestSettings())

	err := eng.SubmitAction(context.Background(), "open the chest")
	require.ErrorIs(t, err, credit.ErrInsufficient)

	// No provider call, no log entry, ledger untouched.
	assert.Empty(t, deps.text.Calls())
	state, stateErr := eng.State()
	require.NoError(t, stateErr)
	assert.Empty(t, state.GameState.StoryLog)
	balance, _ := eng.Credits()
	assert.Equal(t, 0, balance)

	assert.Len(t, eng.DrainNotifications(), 1)
}

func TestSubmitAction_InsufficientCreditsForImage(t *testing.T) {
	// 5 credits: the text turn costs 1, leaving 4, below the image cost.
	eng, deps := newTestEngine(t, 5, defaultTestSettings())
	deps.text.SetResponse(`Behold.<gen_image>a castle</gen_image>`)

	require.NoError(t, eng.SubmitAction(context.Background(), "look up"))

	assert.Empty(t, deps.image.Calls())
	state, err := eng.State()
	require.NoError(t, err)
	require.Len(t, state.GameState.StoryLog, 3)
	assert.Equal(t, InsufficientContent, state.GameState.StoryLog[1].Content)

	balance, _ := eng.Credits()
	assert.Equal(t, 4, balance)
}

func TestSubmitAction_ProviderFailure(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetGenerateError(fmt.Errorf("connection refused"))

	err := eng.SubmitAction(context.Background(), "open the chest")
	require.Error(t, err)

	state, stateErr := eng.State()
	require.NoError(t, stateErr)
	// The player entry is already appended and remains; no ledger charge.
	require.Len(t, state.GameState.StoryLog, 1)
	assert.Equal(t, game.EntryPlayer, state.GameState.StoryLog[0].Kind)
	balance, max := eng.Credits()
	assert.Equal(t, max, balance)
	assert.Len(t, eng.DrainNotifications(), 1)

	// The engine accepts a new turn after the failure.
	deps.text.Reset()
	require.NoError(t, eng.SubmitAction(context.Background(), "try again"))
}

func TestSubmitAction_RefusesConcurrentTurn(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())

	release := make(chan struct{})
	started := make(chan struct{})
	deps.text.GenerateFunc = func(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
		close(started)
		<-release
		return "Done.", nil
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- eng.SubmitAction(context.Background(), "first")
	}()
	<-started

	err := eng.SubmitAction(context.Background(), "second")
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(release)
	require.NoError(t, <-errCh)
}

func TestSubmitAction_PromptAssist(t *testing.T) {
	settings := defaultTestSettings()
	settings.PromptAssist = true
	eng, deps := newTestEngine(t, 100, settings)

	deps.text.GenerateFunc = func(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
		if systemPrompt == prompts.EnhancePrompt {
			return "You fling the ancient chest open with both hands.", nil
		}
		return "The chest creaks open.", nil
	}

	require.NoError(t, eng.SubmitAction(context.Background(), "open chest"))

	calls := deps.text.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].UserPrompt, "You fling the ancient chest open")

	// The log keeps the original, unmodified action.
	state, err := eng.State()
	require.NoError(t, err)
	assert.Equal(t, "open chest", state.GameState.StoryLog[0].Content)
}

func TestSubmitAction_PromptAssistFallback(t *testing.T) {
	settings := defaultTestSettings()
	settings.PromptAssist = true
	eng, deps := newTestEngine(t, 100, settings)

	callCount := 0
	deps.text.GenerateFunc = func(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
		callCount++
		if systemPrompt == prompts.EnhancePrompt {
			return "", fmt.Errorf("assist unavailable")
		}
		return "The chest creaks open.", nil
	}

	require.NoError(t, eng.SubmitAction(context.Background(), "open chest"))
	require.Equal(t, 2, callCount)

	calls := deps.text.Calls()
	assert.Contains(t, calls[1].UserPrompt, `"open chest"`)
}

func TestUndoRedo_ThroughEngine(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse("You find a key.<char_inventory_add>Key</char_inventory_add>")

	initial, err := eng.State()
	require.NoError(t, err)

	require.NoError(t, eng.SubmitAction(context.Background(), "open the chest"))
	afterTurn, err := eng.State()
	require.NoError(t, err)

	ok, err := eng.Undo(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	state, err := eng.State()
	require.NoError(t, err)
	assert.True(t, state.Equal(initial))

	ok, err = eng.Redo(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	state, err = eng.State()
	require.NoError(t, err)
	assert.True(t, state.Equal(afterTurn))

	// Undo does not touch the ledger.
	_, err1 := eng.Undo(context.Background())
	require.NoError(t, err1)
	balance, max := eng.Credits()
	assert.Less(t, balance, max)
}

func TestUndo_EmptyHistoryIsNoop(t *testing.T) {
	eng, _ := newTestEngine(t, 100, defaultTestSettings())

	ok, err := eng.Undo(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse("You find a key.<char_inventory_add>Key</char_inventory_add>")
	ctx := context.Background()

	require.NoError(t, eng.SubmitAction(ctx, "open the chest"))
	atSnapshot, err := eng.State()
	require.NoError(t, err)

	snap, err := eng.CreateSnapshot(ctx, "before the bridge")
	require.NoError(t, err)

	deps.text.SetResponse("The key crumbles to dust.<char_inventory_remove>Key</char_inventory_remove>")
	require.NoError(t, eng.SubmitAction(ctx, "cross the bridge"))

	require.NoError(t, eng.LoadSnapshot(ctx, snap.ID))

	state, err := eng.State()
	require.NoError(t, err)
	assert.True(t, state.Equal(atSnapshot))

	// Loading a snapshot clears undo/redo history.
	assert.False(t, eng.CanUndo())
	assert.False(t, eng.CanRedo())
}

func TestSnapshot_LoadMissing(t *testing.T) {
	eng, _ := newTestEngine(t, 100, defaultTestSettings())

	err := eng.LoadSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.Len(t, eng.DrainNotifications(), 1)
}

func TestSnapshot_DeleteLeavesStateUntouched(t *testing.T) {
	eng, _ := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	snap, err := eng.CreateSnapshot(ctx, "checkpoint")
	require.NoError(t, err)
	before, err := eng.State()
	require.NoError(t, err)

	require.NoError(t, eng.DeleteSnapshot(ctx, snap.ID))

	after, err := eng.State()
	require.NoError(t, err)
	assert.True(t, after.Equal(before))

	snaps, err := eng.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestRegenerateFrom_TruncatesAndResubmits(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	deps.text.SetResponse("First telling.")
	require.NoError(t, eng.SubmitAction(ctx, "enter the tower"))
	deps.text.SetResponse("A stranger waits.")
	require.NoError(t, eng.SubmitAction(ctx, "climb the stairs"))

	state, err := eng.State()
	require.NoError(t, err)
	require.Len(t, state.GameState.StoryLog, 4)
	firstPlayerID := state.GameState.StoryLog[0].ID

	deps.text.SetResponse("Second telling, stranger still.")
	require.NoError(t, eng.RegenerateFrom(ctx, firstPlayerID))

	state, err = eng.State()
	require.NoError(t, err)
	require.Len(t, state.GameState.StoryLog, 2)
	assert.Equal(t, "enter the tower", state.GameState.StoryLog[0].Content)
	assert.Equal(t, "Second telling, stranger still.", state.GameState.StoryLog[1].Content)
}

func TestRegenerateFrom_RejectsNonPlayerEntry(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	deps.text.SetResponse("A reply.")
	require.NoError(t, eng.SubmitAction(ctx, "wave"))

	state, err := eng.State()
	require.NoError(t, err)
	narrativeID := state.GameState.StoryLog[1].ID

	assert.ErrorIs(t, eng.RegenerateFrom(ctx, narrativeID), ErrEntryNotEditable)
}

func TestEditEntry(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	deps.text.SetResponse("A reply.")
	require.NoError(t, eng.SubmitAction(ctx, "wave"))

	state, err := eng.State()
	require.NoError(t, err)
	playerID := state.GameState.StoryLog[0].ID

	require.NoError(t, eng.EditEntry(ctx, playerID, "wave enthusiastically"))

	state, err = eng.State()
	require.NoError(t, err)
	assert.Equal(t, "wave enthusiastically", state.GameState.StoryLog[0].Content)

	assert.ErrorIs(t, eng.EditEntry(ctx, uuid.New(), "x"), ErrEntryNotFound)
}

func TestEditEntry_RejectsImageKind(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	deps.text.SetResponse(`Look.<gen_image>a door</gen_image>`)
	require.NoError(t, eng.SubmitAction(ctx, "look"))

	state, err := eng.State()
	require.NoError(t, err)
	var imageID uuid.UUID
	for _, entry := range state.GameState.StoryLog {
		if entry.Kind == game.EntryImage {
			imageID = entry.ID
		}
	}
	require.NotEqual(t, uuid.Nil, imageID)

	assert.ErrorIs(t, eng.EditEntry(ctx, imageID, "x"), ErrEntryNotEditable)
}

func TestSuggest(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	deps.text.SetResponse("Search the desk\nTalk to the guard\nLeave quietly\nExtra line")

	suggestions, err := eng.Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Search the desk", "Talk to the guard", "Leave quietly"}, suggestions)

	balance, max := eng.Credits()
	assert.Equal(t, max-1, balance)
}

func TestRegeneratePortrait(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())

	require.NoError(t, eng.RegeneratePortrait(context.Background()))

	require.Len(t, deps.image.Calls(), 1)
	state, err := eng.State()
	require.NoError(t, err)
	assert.NotEmpty(t, state.Character.ImageURL)

	balance, max := eng.Credits()
	assert.Equal(t, max-5, balance)
}

func TestEditImage(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	deps.text.SetResponse(`Look.<gen_image>a door</gen_image>`)
	require.NoError(t, eng.SubmitAction(ctx, "look"))

	state, err := eng.State()
	require.NoError(t, err)
	imageID := state.GameState.StoryLog[1].ID

	deps.image.GenerateFunc = func(ctx context.Context, model, prompt string) (string, error) {
		return "data:image/png;base64,bmV3", nil
	}
	require.NoError(t, eng.EditImage(ctx, imageID, "a red door"))

	state, err = eng.State()
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,bmV3", state.GameState.StoryLog[1].Content)
	assert.Equal(t, "a red door", state.GameState.StoryLog[1].Prompt)
}

func TestEditImage_FailureRetainsPrevious(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	deps.text.SetResponse(`Look.<gen_image>a door</gen_image>`)
	require.NoError(t, eng.SubmitAction(ctx, "look"))

	state, err := eng.State()
	require.NoError(t, err)
	imageID := state.GameState.StoryLog[1].ID
	previous := state.GameState.StoryLog[1].Content

	deps.image.SetGenerateError(fmt.Errorf("boom"))
	require.Error(t, eng.EditImage(ctx, imageID, "a red door"))

	state, err = eng.State()
	require.NoError(t, err)
	assert.Equal(t, previous, state.GameState.StoryLog[1].Content)
}

func TestImportSave_RejectsInvalidDocument(t *testing.T) {
	eng, _ := newTestEngine(t, 100, defaultTestSettings())

	before, err := eng.State()
	require.NoError(t, err)

	bad := &game.SaveDocument{Version: game.SaveVersion2}
	require.Error(t, eng.ImportSave(context.Background(), bad))

	after, err := eng.State()
	require.NoError(t, err)
	assert.True(t, after.Equal(before))
	assert.Len(t, eng.DrainNotifications(), 1)
}

func TestExportSave_RoundTrip(t *testing.T) {
	eng, deps := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	deps.text.SetResponse("You find a key.<char_inventory_add>Key</char_inventory_add>")
	require.NoError(t, eng.SubmitAction(ctx, "open the chest"))
	_, err := eng.CreateSnapshot(ctx, "checkpoint")
	require.NoError(t, err)

	doc, err := eng.ExportSave(ctx)
	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	assert.Len(t, doc.Snapshots, 1)
	assert.Equal(t, []string{"Key"}, doc.Character.Inventory)

	// A fresh engine restores the exported state.
	other, _ := newTestEngine(t, 100, defaultTestSettings())
	require.NoError(t, other.ImportSave(ctx, doc))
	state, err := other.State()
	require.NoError(t, err)
	assert.Equal(t, []string{"Key"}, state.Character.Inventory)
}

func TestStartAndRestartGame(t *testing.T) {
	eng, _ := newTestEngine(t, 100, defaultTestSettings())
	ctx := context.Background()

	require.NoError(t, eng.StartGame(ctx, "Kael", "A wandering scholar."))

	state, err := eng.State()
	require.NoError(t, err)
	assert.Equal(t, game.PhasePlaying, state.GameState.Phase)
	assert.Equal(t, "Kael", state.Character.Name)
	require.Len(t, state.GameState.StoryLog, 1)
	assert.Equal(t, game.EntrySystem, state.GameState.StoryLog[0].Kind)

	require.NoError(t, eng.RestartGame(ctx))
	state, err = eng.State()
	require.NoError(t, err)
	assert.Equal(t, game.PhaseOnboarding, state.GameState.Phase)
	assert.Empty(t, state.GameState.StoryLog)
	assert.False(t, eng.CanUndo())
}
