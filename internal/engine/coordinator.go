package engine

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chimera-director/chimera/internal/metrics"
	"github.com/chimera-director/chimera/pkg/credit"
	"github.com/chimera-director/chimera/pkg/directive"
	"github.com/chimera-director/chimera/pkg/game"
	"github.com/chimera-director/chimera/pkg/prompts"
)

// Log content sentinels for image placeholder entries.
const (
	PlaceholderContent  = "generating..."
	FailedContent       = "Image generation failed."
	InsufficientContent = "Insufficient credits."
)

// imageTask is one pending image request raised by a turn.
type imageTask struct {
	genContext game.GenerationContext
	prompt     string
	operation  credit.Operation

	// Placeholder entry for scene and creature images; uuid.Nil for
	// portrait tasks, which update their target in place.
	entryID uuid.UUID

	charPortrait bool
	npcID        string
}

// coordinator launches and reconciles the asynchronous image tasks spawned
// by a single turn. Placeholder entries are appended synchronously at
// collect time so their log position is fixed before any task runs.
type coordinator struct {
	eng   *Engine
	tasks []imageTask

	// auto is the portrait-refresh task raised by a significant change.
	// It runs only after every explicit task has resolved.
	auto *imageTask
}

func newCoordinator(eng *Engine) *coordinator {
	return &coordinator{eng: eng}
}

// collect registers image directives from one turn. Must be called with the
// engine lock held; it appends placeholder log entries in document order.
func (c *coordinator) collect(directives []directive.Directive) {
	for _, d := range directives {
		if !d.IsImage() {
			continue
		}
		switch d.Name {
		case directive.GenImage:
			c.addPlaceholder(game.ContextScene, d.Body)
		case directive.GenCreatureImage:
			c.addPlaceholder(game.ContextCreature, d.Body)
		case directive.GenCharImage:
			prompt := d.Body
			if prompt == "" {
				prompt = prompts.PortraitPrompt(&c.eng.agg.Character)
			}
			c.tasks = append(c.tasks, imageTask{
				genContext:   game.ContextCharacter,
				prompt:       prompt,
				operation:    credit.OpImage,
				charPortrait: true,
			})
		case directive.GenNPCImage:
			id := d.Attr("id")
			if id == "" || c.eng.agg.World.FindNPC(id) == nil {
				c.eng.logger.Debug("Skipping portrait for unknown NPC", "npc_id", id)
				continue
			}
			prompt := d.Attr("prompt")
			if prompt == "" {
				prompt = d.Body
			}
			c.tasks = append(c.tasks, imageTask{
				genContext: game.ContextNPC,
				prompt:     prompt,
				operation:  credit.OpImage,
				npcID:      id,
			})
		}
	}
}

func (c *coordinator) addPlaceholder(genContext game.GenerationContext, prompt string) {
	entry := game.NewLogEntry(game.EntryImage, PlaceholderContent)
	entry.Prompt = prompt
	entryID := c.eng.agg.GameState.AppendLog(entry)
	c.tasks = append(c.tasks, imageTask{
		genContext: genContext,
		prompt:     prompt,
		operation:  credit.OpImage,
		entryID:    entryID,
	})
}

// scheduleAutoPortrait registers the single extra portrait-regeneration
// task raised by a significant change. Must be called with the engine lock
// held.
func (c *coordinator) scheduleAutoPortrait() {
	c.auto = &imageTask{
		genContext:   game.ContextCharacter,
		prompt:       prompts.PortraitPrompt(&c.eng.agg.Character),
		operation:    credit.OpImage,
		charPortrait: true,
	}
}

// run executes the explicit tasks as independent goroutines and awaits
// their joint resolution, then runs the auto portrait refresh. Individual
// task failures resolve to sentinels or notifications.
func (c *coordinator) run(ctx context.Context) {
	if len(c.tasks) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for _, task := range c.tasks {
			t := task
			g.Go(func() error {
				c.eng.runImageTask(gctx, t)
				return nil
			})
		}
		_ = g.Wait()
	}

	if c.auto != nil {
		c.eng.runImageTask(ctx, *c.auto)
	}
}

// runImageTask resolves one image task. Credit sufficiency is checked at
// resolution time, immediately before the provider call; the charge lands
// only on success.
func (e *Engine) runImageTask(ctx context.Context, t imageTask) {
	e.mu.Lock()
	if !e.ledger.CanAfford(t.operation) {
		e.resolveInsufficient(ctx, t)
		e.mu.Unlock()
		return
	}
	model := e.settings.ImageModel(t.genContext)
	svc := e.imageService()
	e.mu.Unlock()

	url, err := svc.Generate(ctx, model, t.prompt)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.logger.Error("Image generation failed",
			"error", err,
			"context", string(t.genContext),
			"model", model)
		metrics.ImagesTotal.WithLabelValues(string(t.genContext), "failed").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(string(e.settings.Service)).Inc()
		e.resolveFailed(ctx, t)
		return
	}

	if err := e.ledger.Charge(t.operation); err != nil {
		// Balance dropped below cost while the call was in flight.
		e.resolveInsufficient(ctx, t)
		return
	}
	metrics.CreditsSpentTotal.WithLabelValues(string(t.operation)).Add(float64(e.ledger.Cost(t.operation)))
	metrics.ImagesTotal.WithLabelValues(string(t.genContext), "success").Inc()

	switch {
	case t.charPortrait:
		e.agg.Character.SetPortrait(url, t.prompt)
	case t.npcID != "":
		if npc := e.agg.World.FindNPC(t.npcID); npc != nil {
			npc.SetPortrait(url, t.prompt)
		}
	default:
		if entry := e.agg.GameState.FindLogEntry(t.entryID); entry != nil {
			entry.Content = url
		}
		e.publishEntryUpdated(ctx, t.entryID)
	}
	e.publishCredits(ctx)
}

// resolveInsufficient settles a task that was refused for lack of credits.
// Called with the engine lock held.
func (e *Engine) resolveInsufficient(ctx context.Context, t imageTask) {
	metrics.ImagesTotal.WithLabelValues(string(t.genContext), "refused").Inc()
	if t.entryID != uuid.Nil {
		if entry := e.agg.GameState.FindLogEntry(t.entryID); entry != nil {
			entry.Content = InsufficientContent
		}
		e.publishEntryUpdated(ctx, t.entryID)
		return
	}
	e.notifyLocked(ctx, "Not enough credits to generate a portrait.")
}

// resolveFailed settles a task whose provider call failed. Portrait targets
// retain their last successful image. Called with the engine lock held.
func (e *Engine) resolveFailed(ctx context.Context, t imageTask) {
	if t.entryID != uuid.Nil {
		if entry := e.agg.GameState.FindLogEntry(t.entryID); entry != nil {
			entry.Content = FailedContent
		}
		e.publishEntryUpdated(ctx, t.entryID)
	}
	e.notifyLocked(ctx, "Image generation failed.")
}
