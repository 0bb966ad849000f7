package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NarrativeOnly(t *testing.T) {
	directives, narrative := Parse("You step into the clearing. Nothing stirs.")
	assert.Empty(t, directives)
	assert.Equal(t, "You step into the clearing. Nothing stirs.", narrative)
}

func TestParse_PairedTag(t *testing.T) {
	raw := `You find a key. <char_inventory_add>Rusty Key</char_inventory_add> It fits your pocket.`
	directives, narrative := Parse(raw)

	require.Len(t, directives, 1)
	assert.Equal(t, CharInventoryAdd, directives[0].Name)
	assert.Equal(t, "Rusty Key", directives[0].Body)
	assert.Equal(t, "You find a key.  It fits your pocket.", narrative)
}

func TestParse_SelfClosingTag(t *testing.T) {
	raw := `The forge glows. <gen_image prompt="a dwarven forge at night" />`
	directives, narrative := Parse(raw)

	require.Len(t, directives, 1)
	assert.Equal(t, GenImage, directives[0].Name)
	assert.Equal(t, "a dwarven forge at night", directives[0].Attr("prompt"))
	assert.Empty(t, directives[0].Body)
	assert.Equal(t, "The forge glows.", narrative)
}

func TestParse_DocumentOrder(t *testing.T) {
	raw := `<char_name>Mira</char_name>mid<quest_add title="Find the well"></quest_add>end<gen_image prompt="a well"/>`
	directives, _ := Parse(raw)

	require.Len(t, directives, 3)
	assert.Equal(t, CharName, directives[0].Name)
	assert.Equal(t, QuestAdd, directives[1].Name)
	assert.Equal(t, GenImage, directives[2].Name)
}

func TestParse_UnknownTagStripped(t *testing.T) {
	// Any well-formed tag is removed from the narrative, recognized or not.
	raw := `Before <some_future_tag key="v">body</some_future_tag> after`
	directives, narrative := Parse(raw)

	require.Len(t, directives, 1)
	assert.Equal(t, "some_future_tag", directives[0].Name)
	assert.Equal(t, "Before  after", narrative)
}

func TestParse_UnclosedTagIsText(t *testing.T) {
	raw := `A sign reads <char_inventory_add>Lantern and nothing more.`
	directives, narrative := Parse(raw)

	assert.Empty(t, directives)
	assert.Equal(t, raw, narrative)
}

func TestParse_LoneAngleBracketIsText(t *testing.T) {
	raw := `The answer is 2 < 3, obviously.`
	directives, narrative := Parse(raw)

	assert.Empty(t, directives)
	assert.Equal(t, raw, narrative)
}

func TestParse_MalformedAttrsYieldPartialMap(t *testing.T) {
	raw := `<gen_npc_image id="npc-1" prompt=broken extra="kept" />`
	directives, _ := Parse(raw)

	require.Len(t, directives, 1)
	assert.Equal(t, "npc-1", directives[0].Attr("id"))
	assert.Equal(t, "kept", directives[0].Attr("extra"))
	assert.Empty(t, directives[0].Attr("prompt"))
}

func TestParse_NoNesting(t *testing.T) {
	// The body runs to the first matching close tag; the trailing close tag
	// does not open anything, so it stays in the narrative.
	raw := `<world_lore>outer <world_lore>inner</world_lore> trailing</world_lore>`
	directives, narrative := Parse(raw)

	require.Len(t, directives, 1)
	assert.Equal(t, "outer <world_lore>inner", directives[0].Body)
	assert.Contains(t, narrative, "trailing")
}

func TestParse_MultilineBody(t *testing.T) {
	raw := "<add_npc>{\n  \"name\": \"Bram\",\n  \"description\": \"a tired ferryman\"\n}</add_npc>"
	directives, narrative := Parse(raw)

	require.Len(t, directives, 1)
	assert.Contains(t, directives[0].Body, `"name": "Bram"`)
	assert.Empty(t, narrative)
}

func TestParse_NarrativeEdgesTrimmed(t *testing.T) {
	raw := "  \n<char_name>Mira</char_name>\n  "
	_, narrative := Parse(raw)
	assert.Empty(t, narrative)
}
