// Package catalog holds the selectable entities of one guild cluster:
// currencies, items, roles, and stats. Select fields populate their choices
// from it through the form engine's Lookup boundary.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/hearthbot/hearth/forms"
)

// Kind partitions catalog entries.
type Kind string

const (
	KindCurrency Kind = "currency"
	KindItem     Kind = "item"
	KindRole     Kind = "role"
	KindStat     Kind = "stat"
)

// Entry is one selectable thing.
type Entry struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Emoji       string `yaml:"emoji,omitempty" json:"emoji,omitempty"`
}

// Ref is how form values identify a catalog entry: small, comparable, and
// stable across asks.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Catalog is an in-memory entry store safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[Kind][]Entry
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[Kind][]Entry)}
}

// Add appends entries under kind. Duplicate IDs within one kind are
// rejected.
func (c *Catalog) Add(kind Kind, entries ...Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(c.entries[kind])+len(entries))
	for _, e := range c.entries[kind] {
		seen[e.ID] = true
	}
	for _, e := range entries {
		if e.ID == "" || e.Name == "" {
			return fmt.Errorf("catalog: %s entry needs id and name", kind)
		}
		if seen[e.ID] {
			return fmt.Errorf("catalog: duplicate %s id %q", kind, e.ID)
		}
		seen[e.ID] = true
		c.entries[kind] = append(c.entries[kind], e)
	}
	return nil
}

// Remove drops the entry with the given id. It reports whether anything was
// removed.
func (c *Catalog) Remove(kind Kind, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.entries[kind] {
		if e.ID == id {
			c.entries[kind] = append(c.entries[kind][:i], c.entries[kind][i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of the entries under kind.
func (c *Catalog) Entries(kind Kind) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Entry(nil), c.entries[kind]...)
}

// Get finds one entry by id.
func (c *Catalog) Get(kind Kind, id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries[kind] {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (c *Catalog) choices(kind Kind) []*forms.Choice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*forms.Choice, len(c.entries[kind]))
	for i, e := range c.entries[kind] {
		ch := forms.NewChoice(e.Name, Ref{Kind: kind, ID: e.ID})
		if e.Description != "" {
			ch = ch.WithDescription(e.Description)
		}
		if e.Emoji != "" {
			ch = ch.WithEmoji(e.Emoji)
		}
		out[i] = ch
	}
	return out
}

// ── forms.Lookup ────────────────────────────────────────────────────────────

func (c *Catalog) Currencies(_ context.Context) ([]*forms.Choice, error) {
	return c.choices(KindCurrency), nil
}

func (c *Catalog) Items(_ context.Context) ([]*forms.Choice, error) {
	return c.choices(KindItem), nil
}

func (c *Catalog) Roles(_ context.Context) ([]*forms.Choice, error) {
	return c.choices(KindRole), nil
}

func (c *Catalog) Stats(_ context.Context) ([]*forms.Choice, error) {
	return c.choices(KindStat), nil
}
