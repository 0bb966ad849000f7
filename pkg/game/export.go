package game

// ImagePromptRecord pairs a generated image with the prompt that produced it,
// for the export collaborator's prompt manifest.
type ImagePromptRecord struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// Transcript returns an independent copy of the story log in append order.
func (a *Aggregate) Transcript() []StoryLogEntry {
	out := make([]StoryLogEntry, len(a.GameState.StoryLog))
	copy(out, a.GameState.StoryLog)
	return out
}

// ImagePromptManifest collects every resolved image with its prompt: the
// character portrait history, NPC portrait histories, then image log entries,
// in that order. Placeholders and failed entries are skipped.
func (a *Aggregate) ImagePromptManifest() []ImagePromptRecord {
	var records []ImagePromptRecord
	for _, v := range a.Character.ImageURLHistory {
		records = append(records, ImagePromptRecord{URL: v.URL, Prompt: v.Prompt})
	}
	for _, npc := range a.World.NPCs {
		for _, v := range npc.ImageURLHistory {
			records = append(records, ImagePromptRecord{URL: v.URL, Prompt: v.Prompt})
		}
	}
	for _, entry := range a.GameState.StoryLog {
		if entry.Kind != EntryImage {
			continue
		}
		if !isImageURL(entry.Content) {
			continue // placeholder or failure sentinel
		}
		records = append(records, ImagePromptRecord{URL: entry.Content, Prompt: entry.Prompt})
	}
	return records
}

func isImageURL(content string) bool {
	return len(content) > 11 && content[:11] == "data:image/"
}
