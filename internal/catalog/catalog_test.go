package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGet(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(KindItem, Entry{ID: "sword", Name: "Sword"}))

	e, ok := c.Get(KindItem, "sword")
	require.True(t, ok)
	assert.Equal(t, "Sword", e.Name)

	_, ok = c.Get(KindItem, "axe")
	assert.False(t, ok)
}

func TestAddRejectsDuplicates(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(KindRole, Entry{ID: "bard", Name: "Bard"}))
	err := c.Add(KindRole, Entry{ID: "bard", Name: "Bard again"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestAddRejectsMissingFields(t *testing.T) {
	c := New()
	assert.Error(t, c.Add(KindStat, Entry{Name: "no id"}))
	assert.Error(t, c.Add(KindStat, Entry{ID: "no-name"}))
}

func TestRemove(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(KindItem, Entry{ID: "a", Name: "A"}, Entry{ID: "b", Name: "B"}))

	assert.True(t, c.Remove(KindItem, "a"))
	assert.False(t, c.Remove(KindItem, "a"))
	assert.Len(t, c.Entries(KindItem), 1)
}

func TestLookupChoices(t *testing.T) {
	c := Seed()
	choices, err := c.Items(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, choices)

	first := choices[0]
	assert.NotEmpty(t, first.Label)
	ref, ok := first.Value.(Ref)
	require.True(t, ok)
	assert.Equal(t, KindItem, ref.Kind)
	assert.NotEmpty(t, first.Token())
}

func TestParse(t *testing.T) {
	data := []byte(`
currencies:
  - id: gold
    name: Gold
    emoji: "🪙"
items:
  - id: rope
    name: Rope
    description: Sturdy hemp rope
roles:
  - id: scout
    name: Scout
`)
	c, err := Parse(data)
	require.NoError(t, err)

	gold, ok := c.Get(KindCurrency, "gold")
	require.True(t, ok)
	assert.Equal(t, "🪙", gold.Emoji)

	rope, ok := c.Get(KindItem, "rope")
	require.True(t, ok)
	assert.Equal(t, "Sturdy hemp rope", rope.Description)

	assert.Empty(t, c.Entries(KindStat))
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	data := []byte(`
items:
  - id: rope
    name: Rope
  - id: rope
    name: Rope again
`)
	_, err := Parse(data)
	assert.Error(t, err)
}
