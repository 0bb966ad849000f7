package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// Save document versions. Version 1 carried only the three mandatory state
// fields; version 2 adds snapshots, settings and credits.
const (
	SaveVersion1 = "1.0.0"
	SaveVersion2 = "2.0.0"
)

// CreditsRecord is the persisted credit ledger balance.
type CreditsRecord struct {
	Balance int `json:"balance"`
	Max     int `json:"max"`
}

// SaveDocument is the versioned JSON envelope consumed and produced by the
// persistence collaborator. The schema is owned here; the file plumbing
// around it is not.
type SaveDocument struct {
	Version   string     `json:"version"`
	SavedAt   time.Time  `json:"saved_at"`
	Character *Character `json:"character"`
	World     *World     `json:"world"`
	GameState *GameState `json:"gameState"`

	// Version 2 additions.
	Snapshots []Snapshot     `json:"snapshots,omitempty"`
	Settings  *Settings      `json:"settings,omitempty"`
	Credits   *CreditsRecord `json:"credits,omitempty"`
}

// NewSaveDocument builds a current-version save document from an aggregate.
// The in-flight turn flag is never persisted; a saved game is always settled.
func NewSaveDocument(a *Aggregate, snapshots []Snapshot, settings Settings, credits CreditsRecord) (*SaveDocument, error) {
	cp, err := a.DeepCopy()
	if err != nil {
		return nil, err
	}
	return &SaveDocument{
		Version:   SaveVersion2,
		SavedAt:   time.Now().UTC(),
		Character: &cp.Character,
		World:     &cp.World,
		GameState: &cp.GameState,
		Snapshots: snapshots,
		Settings:  &settings,
		Credits:   &credits,
	}, nil
}

// Validate rejects a document missing any mandatory top-level field. It is
// called before any state mutation, so a bad document leaves the session
// untouched.
func (d *SaveDocument) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("save document missing version")
	}
	if d.Character == nil {
		return fmt.Errorf("save document missing character")
	}
	if d.World == nil {
		return fmt.Errorf("save document missing world")
	}
	if d.GameState == nil {
		return fmt.Errorf("save document missing gameState")
	}
	return nil
}

// Aggregate rebuilds the aggregate from a validated document.
func (d *SaveDocument) Aggregate() *Aggregate {
	return &Aggregate{
		Character: *d.Character,
		World:     *d.World,
		GameState: *d.GameState,
	}
}

// ParseSaveDocument decodes and validates a save document from raw JSON.
func ParseSaveDocument(data []byte) (*SaveDocument, error) {
	var doc SaveDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse save document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
