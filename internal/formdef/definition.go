// Package formdef loads declarative form definitions written in CUE and
// builds runnable forms from them. A definition file describes one form:
// its fields, their kinds and constraints, appearance conditions as cond
// expressions, and the roles allowed to open it.
package formdef

import (
	"errors"
	"fmt"

	"github.com/hearthbot/hearth/internal/formdef/cond"
)

// Kind names a field variant in a definition. The set mirrors the engine's
// closed field set plus the catalog reference selects.
type Kind string

const (
	KindText        Kind = "text"
	KindNumber      Kind = "number"
	KindSelect      Kind = "select"
	KindEmoji       Kind = "emoji"
	KindCurrency    Kind = "currency"
	KindItem        Kind = "item"
	KindRole        Kind = "role"
	KindStat        Kind = "stat"
	KindInfos       Kind = "infos"
	KindAccess      Kind = "access"
	KindStatBonuses Kind = "stat_bonuses"
	KindRewards     Kind = "rewards"
)

// editor reports whether the kind runs a multi-round editing loop and owns
// its value representation.
func (k Kind) editor() bool {
	switch k {
	case KindInfos, KindAccess, KindStatBonuses, KindRewards:
		return true
	}
	return false
}

// Definition is one loaded form definition.
type Definition struct {
	Name        string
	Title       string
	Description string

	// Access lists the roles allowed to open the form. Empty means
	// everyone.
	Access []string

	Fields []FieldDef
}

// FieldDef is one field in a definition. Zero values mean "not set".
type FieldDef struct {
	Name     string
	Kind     Kind
	Label    string
	Required bool

	// Appear is a cond expression over other field values.
	Appear string

	MinLength int
	MaxLength int
	MinValue  *float64
	MaxValue  *float64
	Forbidden []string

	// Choices are the static options of a select, or the trigger types of
	// a rewards field.
	Choices []ChoiceDef

	MinValues   int
	MaxValues   int
	Placeholder string

	// Fields are the sub-fields of an infos field.
	Fields []FieldDef

	Default any
}

// ChoiceDef is one static option.
type ChoiceDef struct {
	Label       string
	Value       any
	Description string
	Emoji       string
}

// check verifies the constraints the CUE schema cannot express.
func (d *Definition) check() error {
	var errs []error
	seen := make(map[string]struct{}, len(d.Fields))
	for _, fd := range d.Fields {
		if _, dup := seen[fd.Name]; dup {
			errs = append(errs, fmt.Errorf("form %q: duplicate field %q", d.Name, fd.Name))
		}
		seen[fd.Name] = struct{}{}
		if err := fd.check(d.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (fd *FieldDef) check(form string) error {
	var errs []error
	fail := func(format string, args ...any) {
		prefix := fmt.Sprintf("form %q: field %q: ", form, fd.Name)
		errs = append(errs, fmt.Errorf(prefix+format, args...))
	}

	switch fd.Kind {
	case KindSelect:
		if len(fd.Choices) == 0 {
			fail("select needs choices")
		}
	case KindInfos:
		if len(fd.Fields) == 0 {
			fail("infos needs sub-fields")
		}
		subSeen := make(map[string]struct{}, len(fd.Fields))
		for _, sub := range fd.Fields {
			if _, dup := subSeen[sub.Name]; dup {
				fail("duplicate sub-field %q", sub.Name)
			}
			subSeen[sub.Name] = struct{}{}
			if sub.Kind.editor() {
				fail("sub-field %q: %s cannot nest inside infos", sub.Name, sub.Kind)
			}
			if sub.Default != nil {
				fail("sub-field %q: defaults are not supported inside infos", sub.Name)
			}
			if err := sub.check(form); err != nil {
				errs = append(errs, err)
			}
		}
	case KindRewards:
		// The engine fixes the creator's name so a form carries at most
		// one.
		if fd.Name != "empty_reward_pack" {
			fail(`rewards fields must be named "empty_reward_pack"`)
		}
	}

	if fd.Kind.editor() && fd.Kind != KindInfos && fd.Default != nil {
		fail("%s cannot take a default", fd.Kind)
	}
	if len(fd.Choices) > 0 && fd.Kind != KindSelect && fd.Kind != KindRewards {
		fail("%s cannot take choices", fd.Kind)
	}
	if len(fd.Fields) > 0 && fd.Kind != KindInfos {
		fail("%s cannot take sub-fields", fd.Kind)
	}

	if fd.MinLength > 0 && fd.MaxLength > 0 && fd.MinLength > fd.MaxLength {
		fail("min_length %d exceeds max_length %d", fd.MinLength, fd.MaxLength)
	}
	if fd.MinValue != nil && fd.MaxValue != nil && *fd.MinValue > *fd.MaxValue {
		fail("min_value %v exceeds max_value %v", *fd.MinValue, *fd.MaxValue)
	}
	if fd.MinValues > 0 && fd.MaxValues > 0 && fd.MinValues > fd.MaxValues {
		fail("min_values %d exceeds max_values %d", fd.MinValues, fd.MaxValues)
	}

	if fd.Appear != "" {
		if _, err := cond.Compile(fd.Appear); err != nil {
			fail("appear: %v", err)
		}
	}
	return errors.Join(errs...)
}
