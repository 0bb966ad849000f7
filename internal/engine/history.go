package engine

import (
	"fmt"

	"github.com/chimera-director/chimera/pkg/game"
)

// History versions the whole aggregate for undo/redo. Entries are full deep
// copies; consecutive identical states are coalesced so incidental re-sets
// never produce no-op history entries.
type History struct {
	past    []*game.Aggregate
	future  []*game.Aggregate
	current *game.Aggregate
}

// NewHistory creates a history rooted at the given state.
func NewHistory(initial *game.Aggregate) (*History, error) {
	cp, err := initial.DeepCopy()
	if err != nil {
		return nil, fmt.Errorf("failed to copy initial state: %w", err)
	}
	return &History{current: cp}, nil
}

// Record captures the aggregate as the newest settled state. Recording a
// state deep-equal to the previous record is a no-op. Any redo states are
// discarded.
func (h *History) Record(a *game.Aggregate) error {
	if a.Equal(h.current) {
		return nil
	}
	cp, err := a.DeepCopy()
	if err != nil {
		return fmt.Errorf("failed to copy state: %w", err)
	}
	h.past = append(h.past, h.current)
	h.current = cp
	h.future = nil
	return nil
}

// CanUndo reports whether an older state is available.
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether an undone state is available.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// Undo steps back to the previous recorded state. When the past stack is
// empty it returns (nil, false) without error.
func (h *History) Undo() (*game.Aggregate, bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	h.future = append(h.future, h.current)
	h.current = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]

	cp, err := h.current.DeepCopy()
	if err != nil {
		return nil, false
	}
	return cp, true
}

// Redo steps forward to the next undone state. When the future stack is
// empty it returns (nil, false) without error.
func (h *History) Redo() (*game.Aggregate, bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	h.past = append(h.past, h.current)
	h.current = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]

	cp, err := h.current.DeepCopy()
	if err != nil {
		return nil, false
	}
	return cp, true
}

// Clear empties both stacks and re-roots the history at the given state.
// Used on restart and snapshot load.
func (h *History) Clear(root *game.Aggregate) error {
	cp, err := root.DeepCopy()
	if err != nil {
		return fmt.Errorf("failed to copy root state: %w", err)
	}
	h.past = nil
	h.future = nil
	h.current = cp
	return nil
}
