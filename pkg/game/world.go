package game

// LocationStatus is the map marker state for a named location.
type LocationStatus string

const (
	LocationDiscovered LocationStatus = "discovered"
	LocationRuined     LocationStatus = "ruined"
	LocationConquered  LocationStatus = "conquered"
	LocationHidden     LocationStatus = "hidden"
)

// ValidLocationStatus reports whether s is one of the recognized marker states.
func ValidLocationStatus(s LocationStatus) bool {
	switch s {
	case LocationDiscovered, LocationRuined, LocationConquered, LocationHidden:
		return true
	}
	return false
}

// KBEntry is a knowledge-base record created by the kb_entry directive.
type KBEntry struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Type   string            `json:"type"` // e.g. "location", "faction", "artifact"
	Fields map[string]string `json:"fields,omitempty"`
}

// MapPath is a drawn route between two named locations.
type MapPath struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Style string `json:"style"`
}

// World holds the shared narrative state outside the player character.
type World struct {
	Lore      string                    `json:"lore"`
	NPCs      []NPC                     `json:"npcs"`
	Knowledge map[string]KBEntry        `json:"knowledge,omitempty"`
	Relations map[string]map[string]int `json:"relations,omitempty"` // npcID -> npcID -> score
	Locations map[string]LocationStatus `json:"locations,omitempty"`
	Paths     []MapPath                 `json:"paths,omitempty"`
}

// NewWorld returns an empty world.
func NewWorld() World {
	return World{
		NPCs: make([]NPC, 0),
	}
}

// FindNPC returns a pointer to the NPC with the given id, or nil.
func (w *World) FindNPC(id string) *NPC {
	for i := range w.NPCs {
		if w.NPCs[i].ID == id {
			return &w.NPCs[i]
		}
	}
	return nil
}

// AppendLore appends a paragraph to the lore blob.
func (w *World) AppendLore(text string) {
	if text == "" {
		return
	}
	if w.Lore == "" {
		w.Lore = text
		return
	}
	w.Lore = w.Lore + "\n\n" + text
}

// AdjustRelation applies a signed delta to the relationship score between two NPCs.
func (w *World) AdjustRelation(npc1, npc2 string, delta int) {
	if w.Relations == nil {
		w.Relations = make(map[string]map[string]int)
	}
	if w.Relations[npc1] == nil {
		w.Relations[npc1] = make(map[string]int)
	}
	w.Relations[npc1][npc2] += delta
}
