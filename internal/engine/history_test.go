package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimera-director/chimera/pkg/game"
)

func TestHistory_UndoRedoLaws(t *testing.T) {
	agg := game.NewAggregate()
	h, err := NewHistory(agg)
	require.NoError(t, err)

	before, err := agg.DeepCopy()
	require.NoError(t, err)

	// Apply a mutation and record it.
	agg.Character.AddInventory("Key")
	require.NoError(t, h.Record(agg))

	after, err := agg.DeepCopy()
	require.NoError(t, err)

	// undo(apply(M, S)) == S
	restored, ok := h.Undo()
	require.True(t, ok)
	assert.True(t, restored.Equal(before))

	// redo(undo(apply(M, S))) == apply(M, S)
	restored, ok = h.Redo()
	require.True(t, ok)
	assert.True(t, restored.Equal(after))
}

func TestHistory_StackFloorSafety(t *testing.T) {
	h, err := NewHistory(game.NewAggregate())
	require.NoError(t, err)

	restored, ok := h.Undo()
	assert.False(t, ok)
	assert.Nil(t, restored)

	restored, ok = h.Redo()
	assert.False(t, ok)
	assert.Nil(t, restored)
}

func TestHistory_CoalescesIdenticalStates(t *testing.T) {
	agg := game.NewAggregate()
	h, err := NewHistory(agg)
	require.NoError(t, err)

	// Recording an unchanged aggregate must not create a history entry.
	require.NoError(t, h.Record(agg))
	assert.False(t, h.CanUndo())

	// Re-setting a field to the same value is still an identical state.
	agg.Character.Status["Health"] = agg.Character.Status["Health"]
	require.NoError(t, h.Record(agg))
	assert.False(t, h.CanUndo())

	agg.Character.Name = "Kael"
	require.NoError(t, h.Record(agg))
	assert.True(t, h.CanUndo())
}

func TestHistory_RecordClearsRedo(t *testing.T) {
	agg := game.NewAggregate()
	h, err := NewHistory(agg)
	require.NoError(t, err)

	agg.Character.Name = "Kael"
	require.NoError(t, h.Record(agg))

	restored, ok := h.Undo()
	require.True(t, ok)
	require.True(t, h.CanRedo())

	restored.Character.Name = "Mira"
	require.NoError(t, h.Record(restored))
	assert.False(t, h.CanRedo())
}

func TestHistory_RecordedStatesAreIndependent(t *testing.T) {
	agg := game.NewAggregate()
	h, err := NewHistory(agg)
	require.NoError(t, err)

	agg.Character.AddInventory("Lantern")
	require.NoError(t, h.Record(agg))

	// Mutating the live aggregate must not change the recorded copy.
	agg.Character.AddInventory("Rope")

	restored, ok := h.Undo()
	require.True(t, ok)
	assert.Empty(t, restored.Character.Inventory)

	restored, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, []string{"Lantern"}, restored.Character.Inventory)
}

func TestHistory_ClearEmptiesBothStacks(t *testing.T) {
	agg := game.NewAggregate()
	h, err := NewHistory(agg)
	require.NoError(t, err)

	agg.Character.Name = "Kael"
	require.NoError(t, h.Record(agg))
	agg.Character.Name = "Mira"
	require.NoError(t, h.Record(agg))
	_, ok := h.Undo()
	require.True(t, ok)

	require.NoError(t, h.Clear(agg))
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
