package prompts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/chimera-director/chimera/pkg/game"
)

// LogTailLimit is how many trailing log entries are serialized into the
// context prompt.
const LogTailLimit = 5

// Builder assembles the per-turn context prompt from game state using a
// fluent interface, keeping prompt construction out of the orchestrator.
type Builder struct {
	character *game.Character
	world     *game.World
	gameState *game.GameState
	action    string
	tailLimit int
}

// New creates a builder with default settings.
func New() *Builder {
	return &Builder{tailLimit: LogTailLimit}
}

// WithAggregate sets the character, world and game state in one call.
func (b *Builder) WithAggregate(a *game.Aggregate) *Builder {
	b.character = &a.Character
	b.world = &a.World
	b.gameState = &a.GameState
	return b
}

// WithAction sets the (possibly enhanced) player action text.
func (b *Builder) WithAction(action string) *Builder {
	b.action = action
	return b
}

// WithLogTail overrides how many trailing log entries are included.
func (b *Builder) WithLogTail(limit int) *Builder {
	b.tailLimit = limit
	return b
}

// Build serializes the context into the composite prompt the provider sees.
func (b *Builder) Build() (string, error) {
	if b.character == nil || b.world == nil || b.gameState == nil {
		return "", fmt.Errorf("aggregate is required")
	}

	characterJSON, err := json.Marshal(b.character)
	if err != nil {
		return "", fmt.Errorf("failed to marshal character: %w", err)
	}
	worldJSON, err := json.Marshal(b.world)
	if err != nil {
		return "", fmt.Errorf("failed to marshal world: %w", err)
	}
	timelineJSON, err := json.Marshal(b.gameState.Timeline)
	if err != nil {
		return "", fmt.Errorf("failed to marshal timeline: %w", err)
	}
	questsJSON, err := json.Marshal(b.gameState.ActiveQuests())
	if err != nil {
		return "", fmt.Errorf("failed to marshal quests: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("GAME STATE:\n")
	sb.WriteString("Character: " + string(characterJSON) + "\n")
	sb.WriteString("World: " + string(worldJSON) + "\n")
	sb.WriteString("Timeline: " + string(timelineJSON) + "\n")
	sb.WriteString("Active Quests: " + string(questsJSON) + "\n")
	sb.WriteString("Latest Events:\n")
	for _, entry := range b.logTail() {
		sb.WriteString(entry.Kind + ": " + entry.Content + "\n")
	}
	sb.WriteString("\nPLAYER ACTION: \"" + b.action + "\"")

	return sb.String(), nil
}

func (b *Builder) logTail() []game.StoryLogEntry {
	log := b.gameState.StoryLog
	if len(log) <= b.tailLimit {
		return log
	}
	return log[len(log)-b.tailLimit:]
}

// PortraitPrompt builds the deterministic prompt used for the automatic
// portrait refresh after a significant change. It depends only on the
// character's name, status map and inventory, so the same state always
// produces the same prompt.
func PortraitPrompt(c *game.Character) string {
	name := c.Name
	if name == "" {
		name = "the adventurer"
	}

	var sb strings.Builder
	sb.WriteString("A detailed portrait of " + name)

	if len(c.Status) > 0 {
		keys := sortedKeys(c.Status)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, strings.ToLower(k)+": "+strings.ToLower(c.Status[k]))
		}
		sb.WriteString(", currently " + strings.Join(parts, ", "))
	}
	if len(c.Inventory) > 0 {
		sb.WriteString(", carrying " + strings.Join(c.Inventory, ", "))
	}
	sb.WriteString(".")
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
