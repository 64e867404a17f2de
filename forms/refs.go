package forms

import "context"

// Reference selects resolve their choices from the form's Lookup at ask
// time, so freshly created catalog entries show up without rebuilding the
// form.

// NewCurrencySelect builds a select over the catalog's currencies.
func NewCurrencySelect(name, label string, opts ...FieldOption) *Select {
	return NewDynamicSelect(name, label, func(ctx context.Context, f *Form) ([]*Choice, error) {
		if f.lookup == nil {
			return nil, nil
		}
		return f.lookup.Currencies(ctx)
	}, opts...)
}

// NewItemSelect builds a select over the catalog's items.
func NewItemSelect(name, label string, opts ...FieldOption) *Select {
	return NewDynamicSelect(name, label, func(ctx context.Context, f *Form) ([]*Choice, error) {
		if f.lookup == nil {
			return nil, nil
		}
		return f.lookup.Items(ctx)
	}, opts...)
}

// NewRoleSelect builds a select over the catalog's roles.
func NewRoleSelect(name, label string, opts ...FieldOption) *Select {
	return NewDynamicSelect(name, label, func(ctx context.Context, f *Form) ([]*Choice, error) {
		if f.lookup == nil {
			return nil, nil
		}
		return f.lookup.Roles(ctx)
	}, opts...)
}

// NewStatSelect builds a select over the catalog's stats.
func NewStatSelect(name, label string, opts ...FieldOption) *Select {
	return NewDynamicSelect(name, label, func(ctx context.Context, f *Form) ([]*Choice, error) {
		if f.lookup == nil {
			return nil, nil
		}
		return f.lookup.Stats(ctx)
	}, opts...)
}
