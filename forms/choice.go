package forms

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Choice pairs a human label with an opaque application value. Selection
// controls cannot carry arbitrary values over the wire, so every choice
// derives a short string token: enumerant values (defined scalar types) use
// their underlying scalar, everything else gets a random unique token. The
// token is stable for the lifetime of one option set and has no meaning
// beyond it.
type Choice struct {
	Label       string
	Value       any
	Description string
	Emoji       string

	token    string
	selected bool
}

// NewChoice builds a choice and derives its wire token.
func NewChoice(label string, value any) *Choice {
	return &Choice{Label: label, Value: value, token: wireToken(value)}
}

// WithDescription sets the secondary line shown under the label.
func (c *Choice) WithDescription(d string) *Choice {
	c.Description = d
	return c
}

// WithEmoji sets a decorative emoji for the option.
func (c *Choice) WithEmoji(e string) *Choice {
	c.Emoji = e
	return c
}

// Token returns the wire identifier for this choice.
func (c *Choice) Token() string { return c.token }

// wireToken derives the string a selection control round-trips. Defined
// scalar types (enums) map deterministically onto their underlying scalar;
// any other value gets a UUID so tokens stay unique within an option set.
func wireToken(v any) string {
	if v == nil {
		return uuid.NewString()
	}
	t := reflect.TypeOf(v)
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		if t.PkgPath() != "" {
			return fmt.Sprintf("%v", v)
		}
	}
	return uuid.NewString()
}

// OptionSet holds the choices offered by one selection control together with
// the reverse token→choice map needed to translate the user's submission
// back into typed values.
type OptionSet struct {
	choices []*Choice
	byToken map[string]*Choice
}

// NewOptionSet indexes choices by token. Duplicate tokens are a construction
// error: the control could not distinguish the colliding options.
func NewOptionSet(choices []*Choice) (*OptionSet, error) {
	set := &OptionSet{
		choices: choices,
		byToken: make(map[string]*Choice, len(choices)),
	}
	for _, c := range choices {
		if c.token == "" {
			c.token = wireToken(c.Value)
		}
		if _, dup := set.byToken[c.token]; dup {
			return nil, construction("duplicate option token %q (label %q)", c.token, c.Label)
		}
		set.byToken[c.token] = c
	}
	return set, nil
}

// Choices returns the options in declaration order.
func (s *OptionSet) Choices() []*Choice { return s.choices }

// Len returns the number of options.
func (s *OptionSet) Len() int { return len(s.choices) }

// Resolve maps a wire token back to its choice.
func (s *OptionSet) Resolve(token string) (*Choice, bool) {
	c, ok := s.byToken[token]
	return c, ok
}

// Values translates a set of submitted tokens into application values,
// skipping tokens that do not belong to this set.
func (s *OptionSet) Values(tokens []string) []any {
	out := make([]any, 0, len(tokens))
	for _, t := range tokens {
		if c, ok := s.byToken[t]; ok {
			out = append(out, c.Value)
		}
	}
	return out
}

// MarkSelected flags every choice whose value matches one of the given
// values, so prompts can render current answers as preselected.
func (s *OptionSet) MarkSelected(values []any) {
	for _, c := range s.choices {
		c.selected = false
		for _, v := range values {
			if looseEqual(c.Value, v) {
				c.selected = true
				break
			}
		}
	}
}

// chunkChoices splits options into groups of at most size per control.
func chunkChoices(choices []*Choice, size int) [][]*Choice {
	if size <= 0 || len(choices) == 0 {
		return nil
	}
	var out [][]*Choice
	for start := 0; start < len(choices); start += size {
		end := start + size
		if end > len(choices) {
			end = len(choices)
		}
		out = append(out, choices[start:end])
	}
	return out
}
