// Package credit meters billable provider operations against a session
// budget. The ledger is session metering, not narrative state: it sits
// outside the undo/redo aggregate on purpose.
package credit

import "fmt"

// Operation is a billable provider call kind.
type Operation string

const (
	OpTextTurn   Operation = "text_turn"
	OpImage      Operation = "image"
	OpImageEdit  Operation = "image_edit"
	OpSuggestion Operation = "suggestion"
)

// Costs maps each operation kind to its fixed integer cost.
type Costs map[Operation]int

// DefaultCosts returns the stock price table.
func DefaultCosts() Costs {
	return Costs{
		OpTextTurn:   1,
		OpImage:      5,
		OpImageEdit:  5,
		OpSuggestion: 1,
	}
}

// ErrInsufficient is returned when an operation would overdraw the balance.
var ErrInsufficient = fmt.Errorf("insufficient credits")

// Ledger tracks a spendable balance. CanAfford is the pre-flight check run
// before any provider call; Charge is applied only after the call succeeds,
// so a failed call never moves the balance and overdraft is impossible.
type Ledger struct {
	balance int
	max     int
	costs   Costs
}

// NewLedger creates a full ledger with the given maximum balance.
func NewLedger(max int, costs Costs) *Ledger {
	if costs == nil {
		costs = DefaultCosts()
	}
	return &Ledger{
		balance: max,
		max:     max,
		costs:   costs,
	}
}

// Balance returns the current spendable balance.
func (l *Ledger) Balance() int { return l.balance }

// Max returns the configured maximum balance.
func (l *Ledger) Max() int { return l.max }

// Cost returns the configured cost of an operation kind.
func (l *Ledger) Cost(op Operation) int { return l.costs[op] }

// CanAfford reports whether the balance covers the operation. It never
// changes the balance.
func (l *Ledger) CanAfford(op Operation) bool {
	return l.balance >= l.costs[op]
}

// Charge decrements the balance by the operation's cost. It must be called
// only after the provider call succeeds; it returns ErrInsufficient rather
// than overdraw if the pre-flight check was skipped.
func (l *Ledger) Charge(op Operation) error {
	cost := l.costs[op]
	if l.balance < cost {
		return ErrInsufficient
	}
	l.balance -= cost
	return nil
}

// Restore sets the balance from a persisted record, clamped to [0, max].
func (l *Ledger) Restore(balance int) {
	if balance < 0 {
		balance = 0
	}
	if balance > l.max {
		balance = l.max
	}
	l.balance = balance
}
