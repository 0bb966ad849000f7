package game

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a named branch point: a deep, independent copy of an aggregate
// taken at a moment in time. A snapshot is immutable once created.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	State     Aggregate `json:"state"`
}

// NewSnapshot deep-copies the given aggregate into a new snapshot record.
// The copy always records the playing phase as settled state.
func NewSnapshot(name string, a *Aggregate) (*Snapshot, error) {
	cp, err := a.DeepCopy()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		State:     *cp,
	}, nil
}
