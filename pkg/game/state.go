package game

import (
	"time"

	"github.com/google/uuid"
)

// GamePhase tracks whether a session is still onboarding or actively playing.
type GamePhase string

const (
	PhaseOnboarding GamePhase = "onboarding"
	PhasePlaying    GamePhase = "playing"
)

// Log entry kinds.
const (
	EntryPlayer    = "player"
	EntryNarrative = "narrative"
	EntryImage     = "image"
	EntrySystem    = "system"
)

// StoryLogEntry is one record in the append-only story log. Content is
// mutable only while the entry is a streaming or image placeholder; player
// and narrative entries may additionally be rewritten through the explicit
// edit operation.
type StoryLogEntry struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"type"`
	Content   string    `json:"content"`
	Prompt    string    `json:"prompt,omitempty"` // image entries only
	Timestamp time.Time `json:"timestamp"`
}

// NewLogEntry creates a log entry stamped with the current time.
func NewLogEntry(kind, content string) StoryLogEntry {
	return StoryLogEntry{
		ID:        uuid.New(),
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// Quest statuses.
const (
	QuestActive    = "active"
	QuestCompleted = "completed"
	QuestFailed    = "failed"
)

// Quest is a tracked objective raised by the quest_add directive.
type Quest struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// GameState is the session-scoped narrative state: the log, quests and
// timeline. The in-flight flag is transient and never versioned or saved
// as set.
type GameState struct {
	Phase    GamePhase       `json:"phase"`
	StoryLog []StoryLogEntry `json:"story_log"`
	Quests   []Quest         `json:"quests,omitempty"`
	Timeline []string        `json:"timeline,omitempty"`
}

// NewGameState returns an empty game state in the onboarding phase.
func NewGameState() GameState {
	return GameState{
		Phase:    PhaseOnboarding,
		StoryLog: make([]StoryLogEntry, 0),
	}
}

// AppendLog appends an entry and returns its ID.
func (gs *GameState) AppendLog(entry StoryLogEntry) uuid.UUID {
	gs.StoryLog = append(gs.StoryLog, entry)
	return entry.ID
}

// FindLogEntry returns a pointer to the entry with the given ID, or nil.
func (gs *GameState) FindLogEntry(id uuid.UUID) *StoryLogEntry {
	for i := range gs.StoryLog {
		if gs.StoryLog[i].ID == id {
			return &gs.StoryLog[i]
		}
	}
	return nil
}

// FindQuest returns a pointer to the quest with the given ID, or nil.
func (gs *GameState) FindQuest(id string) *Quest {
	for i := range gs.Quests {
		if gs.Quests[i].ID == id {
			return &gs.Quests[i]
		}
	}
	return nil
}

// RemoveQuest deletes the quest with the given ID, if present.
func (gs *GameState) RemoveQuest(id string) {
	for i := range gs.Quests {
		if gs.Quests[i].ID == id {
			gs.Quests = append(gs.Quests[:i], gs.Quests[i+1:]...)
			return
		}
	}
}

// ActiveQuests returns the quests still in the active status.
func (gs *GameState) ActiveQuests() []Quest {
	var active []Quest
	for _, q := range gs.Quests {
		if q.Status == QuestActive {
			active = append(active, q)
		}
	}
	return active
}
