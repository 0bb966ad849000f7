package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimera-director/chimera/pkg/game"
)

func TestBuilder_Build(t *testing.T) {
	agg := game.NewAggregate()
	agg.Character.Name = "Mira"
	agg.Character.Inventory = []string{"Key"}
	agg.GameState.Timeline = []string{"The bridge collapsed."}
	agg.GameState.Quests = []game.Quest{
		{ID: "q1", Title: "Find the well", Status: game.QuestActive},
		{ID: "q2", Title: "Old business", Status: game.QuestCompleted},
	}
	agg.GameState.AppendLog(game.NewLogEntry(game.EntryPlayer, "look around"))
	agg.GameState.AppendLog(game.NewLogEntry(game.EntryNarrative, "You see a well."))

	prompt, err := New().
		WithAggregate(agg).
		WithAction("climb down the well").
		Build()
	require.NoError(t, err)

	assert.Contains(t, prompt, "GAME STATE:")
	assert.Contains(t, prompt, `"Mira"`)
	assert.Contains(t, prompt, "The bridge collapsed.")
	assert.Contains(t, prompt, "player: look around")
	assert.Contains(t, prompt, "narrative: You see a well.")
	assert.True(t, strings.HasSuffix(prompt, `PLAYER ACTION: "climb down the well"`))

	// Only active quests reach the provider.
	assert.Contains(t, prompt, "Find the well")
	assert.NotContains(t, prompt, "Old business")
}

func TestBuilder_RequiresAggregate(t *testing.T) {
	_, err := New().WithAction("look").Build()
	assert.Error(t, err)
}

func TestBuilder_LogTailLimit(t *testing.T) {
	agg := game.NewAggregate()
	for i := 0; i < 10; i++ {
		agg.GameState.AppendLog(game.NewLogEntry(game.EntryNarrative, "entry "+string(rune('a'+i))))
	}

	prompt, err := New().WithAggregate(agg).WithAction("go").Build()
	require.NoError(t, err)

	assert.NotContains(t, prompt, "entry a")
	assert.Contains(t, prompt, "entry f")
	assert.Contains(t, prompt, "entry j")
}

func TestBuilder_LogTailOverride(t *testing.T) {
	agg := game.NewAggregate()
	for i := 0; i < 4; i++ {
		agg.GameState.AppendLog(game.NewLogEntry(game.EntryNarrative, "entry "+string(rune('a'+i))))
	}

	prompt, err := New().WithAggregate(agg).WithAction("go").WithLogTail(1).Build()
	require.NoError(t, err)

	assert.NotContains(t, prompt, "entry c")
	assert.Contains(t, prompt, "entry d")
}

func TestPortraitPrompt_Deterministic(t *testing.T) {
	c := &game.Character{
		Name:      "Mira",
		Status:    map[string]string{"Health": "Wounded", "Mana": "Low"},
		Inventory: []string{"Key", "Lantern"},
	}

	first := PortraitPrompt(c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PortraitPrompt(c))
	}

	assert.Contains(t, first, "Mira")
	assert.Contains(t, first, "health: wounded")
	assert.Contains(t, first, "mana: low")
	assert.Contains(t, first, "carrying Key, Lantern")
}

func TestPortraitPrompt_UnnamedCharacter(t *testing.T) {
	prompt := PortraitPrompt(&game.Character{})
	assert.Contains(t, prompt, "the adventurer")
}
