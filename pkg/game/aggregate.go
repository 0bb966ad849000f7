package game

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Aggregate is the {character, world, gameState} bundle that the history
// manager versions as a single value. Session metering (the credit ledger)
// and transient UI state are deliberately outside it.
type Aggregate struct {
	Character Character `json:"character"`
	World     World     `json:"world"`
	GameState GameState `json:"gameState"`
}

// NewAggregate returns a fresh aggregate with default starting state.
func NewAggregate() *Aggregate {
	return &Aggregate{
		Character: NewCharacter(),
		World:     NewWorld(),
		GameState: NewGameState(),
	}
}

// DeepCopy returns a fully independent copy of the aggregate.
func (a *Aggregate) DeepCopy() (*Aggregate, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aggregate: %w", err)
	}
	var cp Aggregate
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aggregate copy: %w", err)
	}
	return &cp, nil
}

// Equal reports canonical deep equality between two aggregates. Map iteration
// order does not affect the result, unlike a serialized-string comparison.
func (a *Aggregate) Equal(other *Aggregate) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a, other)
}
