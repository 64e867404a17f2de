package formdef

import (
	"context"
	"fmt"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/internal/formdef/cond"
)

// BuildOptions carries the collaborators a built form runs with.
type BuildOptions struct {
	Lookup     forms.Lookup
	Translator forms.Translator
	Observers  []forms.Observer

	// Prefill seeds field values for edit mode. It overrides definition
	// defaults key by key.
	Prefill map[string]any
}

// Build compiles a definition into a runnable form.
func Build(def *Definition, opts BuildOptions) (*forms.Form, error) {
	fields := make([]forms.Field, 0, len(def.Fields))
	values := make(map[string]any)
	for _, fd := range def.Fields {
		fld, err := buildField(fd)
		if err != nil {
			return nil, fmt.Errorf("form %q: %w", def.Name, err)
		}
		fields = append(fields, fld)
		if fd.Default != nil {
			values[fld.Name()] = fd.Default
		}
	}
	for name, v := range opts.Prefill {
		values[name] = v
	}

	formOpts := []forms.Option{}
	if def.Description != "" {
		formOpts = append(formOpts, forms.WithDescription(def.Description))
	}
	if opts.Translator != nil {
		formOpts = append(formOpts, forms.WithTranslator(opts.Translator))
	}
	if opts.Lookup != nil {
		formOpts = append(formOpts, forms.WithLookup(opts.Lookup))
	}
	if len(opts.Observers) > 0 {
		formOpts = append(formOpts, forms.WithObserver(opts.Observers...))
	}
	if len(values) > 0 {
		formOpts = append(formOpts, forms.WithValues(values))
	}
	return forms.New(def.Name, def.Title, fields, formOpts...)
}

func buildField(fd FieldDef) (forms.Field, error) {
	fieldOpts, err := sharedOptions(fd)
	if err != nil {
		return nil, err
	}

	switch fd.Kind {
	case KindText:
		t := forms.NewText(fd.Name, fd.Label, fieldOpts...)
		if fd.MinLength > 0 || fd.MaxLength > 0 {
			t.Bounds(fd.MinLength, fd.MaxLength)
		}
		return t, nil

	case KindNumber:
		return forms.NewNumber(fd.Name, fd.Label, fieldOpts...), nil

	case KindEmoji:
		e := forms.NewEmoji(fd.Name, fd.Label, fieldOpts...)
		if fd.MinLength > 0 || fd.MaxLength > 0 {
			e.Bounds(fd.MinLength, fd.MaxLength)
		}
		return e, nil

	case KindSelect:
		choices := make([]*forms.Choice, 0, len(fd.Choices))
		for _, cd := range fd.Choices {
			choices = append(choices, buildChoice(cd))
		}
		return configureSelect(forms.NewSelect(fd.Name, fd.Label, choices, fieldOpts...), fd), nil

	case KindCurrency, KindItem, KindRole, KindStat:
		sel := forms.NewDynamicSelect(fd.Name, fd.Label, lookupSource(fd.Kind), fieldOpts...)
		return configureSelect(sel, fd), nil

	case KindInfos:
		subs := make([]forms.Field, 0, len(fd.Fields))
		for _, sub := range fd.Fields {
			fld, err := buildField(sub)
			if err != nil {
				return nil, err
			}
			subs = append(subs, fld)
		}
		return forms.NewInfos(fd.Name, fd.Label, subs, fieldOpts...), nil

	case KindAccess:
		return forms.NewAccessRules(fd.Name, fd.Label, fieldOpts...), nil

	case KindStatBonuses:
		return forms.NewStatBonuses(fd.Name, fd.Label, fieldOpts...), nil

	case KindRewards:
		creator := forms.NewPackCreator(fieldOpts...)
		if len(fd.Choices) > 0 {
			types := make([]*forms.Choice, 0, len(fd.Choices))
			for _, cd := range fd.Choices {
				types = append(types, buildChoice(cd))
			}
			creator.Types(types)
		}
		return creator, nil
	}
	return nil, fmt.Errorf("field %q: unknown kind %q", fd.Name, fd.Kind)
}

// sharedOptions builds the options every kind understands: required,
// appearance and validators.
func sharedOptions(fd FieldDef) ([]forms.FieldOption, error) {
	var opts []forms.FieldOption
	if fd.Required {
		opts = append(opts, forms.WithRequired())
	}
	if fd.Appear != "" {
		c, err := cond.Compile(fd.Appear)
		if err != nil {
			return nil, fmt.Errorf("field %q: appear: %w", fd.Name, err)
		}
		opts = append(opts, forms.WithAppear(c))
	}

	var validators []forms.Validator
	if fd.Kind == KindEmoji {
		validators = append(validators, forms.IsEmoji())
	}
	if fd.MinLength > 0 {
		validators = append(validators, forms.MinLength(fd.MinLength))
	}
	if fd.MaxLength > 0 {
		validators = append(validators, forms.MaxLength(fd.MaxLength))
	}
	if fd.MinValue != nil {
		validators = append(validators, forms.MinValue(*fd.MinValue))
	}
	if fd.MaxValue != nil {
		validators = append(validators, forms.MaxValue(*fd.MaxValue))
	}
	for _, forbidden := range fd.Forbidden {
		validators = append(validators, forms.Forbidden(forbidden))
	}
	if len(validators) > 0 {
		opts = append(opts, forms.WithValidators(validators...))
	}
	return opts, nil
}

func configureSelect(sel *forms.Select, fd FieldDef) *forms.Select {
	if fd.MinValues > 0 || fd.MaxValues != 0 {
		min := fd.MinValues
		if min == 0 {
			min = 1
		}
		max := fd.MaxValues
		if max == 0 {
			max = min
		}
		sel.Range(min, max)
	}
	if fd.Placeholder != "" {
		sel.Describe(fd.Placeholder)
	}
	return sel
}

func buildChoice(cd ChoiceDef) *forms.Choice {
	c := forms.NewChoice(cd.Label, cd.Value)
	if cd.Description != "" {
		c = c.WithDescription(cd.Description)
	}
	if cd.Emoji != "" {
		c = c.WithEmoji(cd.Emoji)
	}
	return c
}

// lookupSource resolves a catalog reference kind against the form's lookup
// at ask time. A form without a lookup offers nothing to pick.
func lookupSource(kind Kind) forms.SourceFunc {
	return func(ctx context.Context, f *forms.Form) ([]*forms.Choice, error) {
		lk := f.Lookup()
		if lk == nil {
			return nil, nil
		}
		switch kind {
		case KindCurrency:
			return lk.Currencies(ctx)
		case KindItem:
			return lk.Items(ctx)
		case KindRole:
			return lk.Roles(ctx)
		default:
			return lk.Stats(ctx)
		}
	}
}
