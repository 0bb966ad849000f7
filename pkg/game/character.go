package game

// PortraitVersion is one generated portrait and the prompt that produced it.
type PortraitVersion struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// Character is the player character driven by the narrative directives.
type Character struct {
	Name            string            `json:"name"`
	Backstory       string            `json:"backstory"`
	Skills          map[string]string `json:"skills"`
	Inventory       []string          `json:"inventory"`
	Status          map[string]string `json:"status"`
	ImageURL        string            `json:"image_url,omitempty"`
	ImageURLHistory []PortraitVersion `json:"image_url_history,omitempty"`
}

// NewCharacter returns a character with the default starting status.
func NewCharacter() Character {
	return Character{
		Skills:    make(map[string]string),
		Inventory: make([]string, 0),
		Status: map[string]string{
			"Health": "Healthy",
			"Mana":   "Full",
		},
	}
}

// AddInventory adds an item with set semantics: a duplicate entry is ignored.
func (c *Character) AddInventory(item string) {
	for _, existing := range c.Inventory {
		if existing == item {
			return
		}
	}
	if c.Inventory == nil {
		c.Inventory = make([]string, 0)
	}
	c.Inventory = append(c.Inventory, item)
}

// RemoveInventory removes the first matching item, if present.
func (c *Character) RemoveInventory(item string) {
	for i, existing := range c.Inventory {
		if existing == item {
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
			return
		}
	}
}

// SetPortrait replaces the current portrait and records it in history.
func (c *Character) SetPortrait(url, prompt string) {
	c.ImageURL = url
	c.ImageURLHistory = append(c.ImageURLHistory, PortraitVersion{URL: url, Prompt: prompt})
}

// NPC is a non-player character in the world.
type NPC struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Relationship    string            `json:"relationship"`
	ImageURL        string            `json:"image_url,omitempty"`
	ImageURLHistory []PortraitVersion `json:"image_url_history,omitempty"`
}

// SetPortrait replaces the NPC portrait and records it in history.
func (n *NPC) SetPortrait(url, prompt string) {
	n.ImageURL = url
	n.ImageURLHistory = append(n.ImageURLHistory, PortraitVersion{URL: url, Prompt: prompt})
}
