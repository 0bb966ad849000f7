package directive

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chimera-director/chimera/pkg/game"
)

// Worker applies mutation directives to an aggregate, strictly in document
// order with no transaction or rollback: a later directive in the same turn
// observes an earlier directive's effect.
type Worker struct {
	agg    *game.Aggregate
	logger *slog.Logger

	significant bool
}

// NewWorker creates a worker for one turn's directives.
func NewWorker(agg *game.Aggregate, logger *slog.Logger) *Worker {
	return &Worker{
		agg:    agg,
		logger: logger,
	}
}

// SignificantChange reports whether any applied directive touched the
// character's inventory or status. The coordinator uses this to schedule an
// automatic portrait refresh.
func (w *Worker) SignificantChange() bool {
	return w.significant
}

// ApplyAll applies every non-image directive in order.
func (w *Worker) ApplyAll(directives []Directive) {
	for _, d := range directives {
		w.Apply(d)
	}
}

// Apply dispatches one directive to its transform. Image directives are the
// coordinator's concern and are skipped here; unknown names produce no
// mutation.
func (w *Worker) Apply(d Directive) {
	if d.IsImage() {
		return
	}

	switch d.Name {
	case CharName:
		w.agg.Character.Name = d.Body
	case CharBackstory:
		w.agg.Character.Backstory = d.Body
	case CharSkillAdd:
		w.applySkillAdd(d)
	case CharSkillRemove:
		w.applySkillRemove(d)
	case CharInventoryAdd:
		w.agg.Character.AddInventory(d.Body)
		w.significant = true
	case CharInventoryRemove:
		w.agg.Character.RemoveInventory(d.Body)
		w.significant = true
	case CharStatusUpdate:
		w.applyStatusUpdate(d)
	case WorldLore:
		w.agg.World.AppendLore(d.Body)
	case AddNPC:
		w.applyAddNPC(d)
	case UpdateNPC:
		w.applyUpdateNPC(d)
	case UpdateNPCRelation:
		w.applyNPCRelation(d)
	case QuestAdd:
		w.applyQuestAdd(d)
	case QuestUpdate:
		w.applyQuestUpdate(d)
	case QuestRemove:
		w.agg.GameState.RemoveQuest(d.Attr("id"))
	case TimelineEvent:
		if d.Body != "" {
			w.agg.GameState.Timeline = append(w.agg.GameState.Timeline, d.Body)
		}
	case KBEntry:
		w.applyKBEntry(d)
	case MapUpdate:
		w.applyMapUpdate(d)
	case MapAddPath:
		w.applyMapAddPath(d)
	default:
		// Unknown tags were already stripped from the narrative; they
		// deliberately produce no mutation.
		if w.logger != nil {
			w.logger.Debug("Unknown directive skipped", "name", d.Name)
		}
	}
}

func (w *Worker) applySkillAdd(d Directive) {
	key := d.Attr("key")
	if key == "" {
		return
	}
	if w.agg.Character.Skills == nil {
		w.agg.Character.Skills = make(map[string]string)
	}
	w.agg.Character.Skills[key] = d.Body
}

func (w *Worker) applySkillRemove(d Directive) {
	key := d.Attr("key")
	if key == "" {
		return
	}
	delete(w.agg.Character.Skills, key)
}

func (w *Worker) applyStatusUpdate(d Directive) {
	key := d.Attr("key")
	if key == "" {
		return
	}
	if w.agg.Character.Status == nil {
		w.agg.Character.Status = make(map[string]string)
	}
	w.agg.Character.Status[key] = d.Body
	w.significant = true
}

func (w *Worker) applyAddNPC(d Directive) {
	var npc game.NPC
	if err := json.Unmarshal([]byte(d.Body), &npc); err != nil {
		if w.logger != nil {
			w.logger.Debug("Failed to parse NPC JSON, directive skipped", "error", err, "body", d.Body)
		}
		return
	}
	if npc.ID == "" {
		npc.ID = uuid.NewString()
	}
	w.agg.World.NPCs = append(w.agg.World.NPCs, npc)
}

// npcPatch carries the optional fields an update_npc payload may set.
type npcPatch struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Relationship *string `json:"relationship"`
}

func (w *Worker) applyUpdateNPC(d Directive) {
	id := d.Attr("id")
	if id == "" {
		return
	}
	var patch npcPatch
	if err := json.Unmarshal([]byte(d.Body), &patch); err != nil {
		if w.logger != nil {
			w.logger.Debug("Failed to parse NPC update JSON, directive skipped", "error", err, "id", id)
		}
		return
	}
	npc := w.agg.World.FindNPC(id)
	if npc == nil {
		if w.logger != nil {
			w.logger.Debug("NPC not found for update", "id", id)
		}
		return
	}
	if patch.Name != nil {
		npc.Name = *patch.Name
	}
	if patch.Description != nil {
		npc.Description = *patch.Description
	}
	if patch.Relationship != nil {
		npc.Relationship = *patch.Relationship
	}
}

func (w *Worker) applyNPCRelation(d Directive) {
	npc1 := d.Attr("npc1_id")
	npc2 := d.Attr("npc2_id")
	if npc1 == "" || npc2 == "" {
		return
	}
	delta, err := strconv.Atoi(strings.TrimSpace(d.Attr("value")))
	if err != nil {
		if w.logger != nil {
			w.logger.Debug("Non-numeric relation delta, directive skipped", "value", d.Attr("value"))
		}
		return
	}
	w.agg.World.AdjustRelation(npc1, npc2, delta)
}

func (w *Worker) applyQuestAdd(d Directive) {
	title := d.Attr("title")
	if title == "" {
		title = d.Body
	}
	if title == "" {
		return
	}
	w.agg.GameState.Quests = append(w.agg.GameState.Quests, game.Quest{
		ID:     uuid.NewString(),
		Title:  title,
		Status: game.QuestActive,
	})
}

func (w *Worker) applyQuestUpdate(d Directive) {
	id := d.Attr("id")
	status := d.Attr("status")
	switch status {
	case game.QuestActive, game.QuestCompleted, game.QuestFailed:
	default:
		if w.logger != nil {
			w.logger.Debug("Unknown quest status, directive skipped", "id", id, "status", status)
		}
		return
	}
	if quest := w.agg.GameState.FindQuest(id); quest != nil {
		quest.Status = status
	}
}

func (w *Worker) applyKBEntry(d Directive) {
	name := d.Attr("name")
	entryType := d.Attr("type")
	if name == "" {
		return
	}

	fields := make(map[string]string)
	if body := strings.TrimSpace(d.Body); body != "" {
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			if w.logger != nil {
				w.logger.Debug("Failed to parse kb_entry fields JSON, directive skipped", "error", err, "name", name)
			}
			return
		}
	}

	entry := game.KBEntry{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   entryType,
		Fields: fields,
	}
	if w.agg.World.Knowledge == nil {
		w.agg.World.Knowledge = make(map[string]game.KBEntry)
	}
	w.agg.World.Knowledge[entry.ID] = entry

	// A location entry also leaves a marker in the lore text, so the
	// narrative record knows the place exists.
	if entryType == "location" {
		title := cases.Title(language.English).String(name)
		w.agg.World.AppendLore("Location discovered: " + title)
		if _, ok := w.agg.World.Locations[name]; !ok {
			if w.agg.World.Locations == nil {
				w.agg.World.Locations = make(map[string]game.LocationStatus)
			}
			w.agg.World.Locations[name] = game.LocationDiscovered
		}
	}
}

func (w *Worker) applyMapUpdate(d Directive) {
	name := d.Attr("location_name")
	status := game.LocationStatus(d.Attr("new_status"))
	if name == "" || !game.ValidLocationStatus(status) {
		if w.logger != nil {
			w.logger.Debug("Invalid map update, directive skipped", "location", name, "status", string(status))
		}
		return
	}
	if w.agg.World.Locations == nil {
		w.agg.World.Locations = make(map[string]game.LocationStatus)
	}
	w.agg.World.Locations[name] = status
}

func (w *Worker) applyMapAddPath(d Directive) {
	start := d.Attr("start")
	end := d.Attr("end")
	if start == "" || end == "" {
		return
	}
	w.agg.World.Paths = append(w.agg.World.Paths, game.MapPath{
		Start: start,
		End:   end,
		Style: d.Attr("style"),
	})
}
