// Package directive implements the tag grammar embedded in generated
// narrative text: parsing raw provider output into an ordered directive list,
// and applying those directives to game state.
package directive

// Directive names understood by the dispatcher. These are consumed bit-exact
// from the narrative provider's output.
const (
	CharName            = "char_name"
	CharBackstory       = "char_backstory"
	CharSkillAdd        = "char_skill_add"
	CharSkillRemove     = "char_skill_remove"
	CharInventoryAdd    = "char_inventory_add"
	CharInventoryRemove = "char_inventory_remove"
	CharStatusUpdate    = "char_status_update"
	WorldLore           = "world_lore"
	AddNPC              = "add_npc"
	UpdateNPC           = "update_npc"
	UpdateNPCRelation   = "update_npc_relation"
	QuestAdd            = "quest_add"
	QuestUpdate         = "quest_update"
	QuestRemove         = "quest_remove"
	TimelineEvent       = "timeline_event"
	KBEntry             = "kb_entry"
	MapUpdate           = "map_update"
	MapAddPath          = "map_add_path"
	GenImage            = "gen_image"
	GenCharImage        = "gen_char_image"
	GenNPCImage         = "gen_npc_image"
	GenCreatureImage    = "gen_creature_image"
)

// Directive is one parsed tag from the provider output, in document order.
type Directive struct {
	Name  string
	Attrs map[string]string
	Body  string
}

// Attr returns the named attribute, or "" when absent.
func (d Directive) Attr(key string) string {
	return d.Attrs[key]
}

// IsImage reports whether the directive requests image synthesis rather than
// a state mutation.
func (d Directive) IsImage() bool {
	switch d.Name {
	case GenImage, GenCharImage, GenNPCImage, GenCreatureImage:
		return true
	}
	return false
}

// IsPortrait reports whether the directive targets a character or NPC
// portrait. Portrait requests do not get a placeholder log entry; the image
// field is updated in place on resolution.
func (d Directive) IsPortrait() bool {
	return d.Name == GenCharImage || d.Name == GenNPCImage
}
