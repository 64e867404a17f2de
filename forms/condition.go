package forms

import "reflect"

// Snapshot is an immutable name→value view of a whole form, rebuilt on every
// visibility check. Conditions are evaluated against it rather than against
// live form state so they stay deterministic and testable in isolation.
type Snapshot map[string]any

// Value returns the stored value for a field name, or nil.
func (s Snapshot) Value(name string) any { return s[name] }

// Condition decides whether a field appears given the form's current values.
// A field carrying any false condition is hidden from navigation, display,
// and completion checks; its stored value is preserved.
type Condition func(s Snapshot) bool

// Eq appears when the named field holds exactly want.
func Eq(name string, want any) Condition {
	return func(s Snapshot) bool { return looseEqual(s[name], want) }
}

// NotEq appears when the named field does not hold want.
func NotEq(name string, want any) Condition {
	return func(s Snapshot) bool { return !looseEqual(s[name], want) }
}

// IsSet appears when the named field holds any non-nil value.
func IsSet(name string) Condition {
	return func(s Snapshot) bool { return s[name] != nil }
}

// IsUnset appears while the named field is unanswered.
func IsUnset(name string) Condition {
	return func(s Snapshot) bool { return s[name] == nil }
}

// Gt appears when the named field holds a number greater than want.
func Gt(name string, want float64) Condition {
	return numericCmp(name, func(f float64) bool { return f > want })
}

// Ge appears when the named field holds a number of at least want.
func Ge(name string, want float64) Condition {
	return numericCmp(name, func(f float64) bool { return f >= want })
}

// Lt appears when the named field holds a number less than want.
func Lt(name string, want float64) Condition {
	return numericCmp(name, func(f float64) bool { return f < want })
}

// Le appears when the named field holds a number of at most want.
func Le(name string, want float64) Condition {
	return numericCmp(name, func(f float64) bool { return f <= want })
}

// Not inverts a condition.
func Not(c Condition) Condition {
	return func(s Snapshot) bool { return !c(s) }
}

// All appears only when every condition holds. With no conditions it holds.
func All(cs ...Condition) Condition {
	return func(s Snapshot) bool {
		for _, c := range cs {
			if !c(s) {
				return false
			}
		}
		return true
	}
}

// Any appears when at least one condition holds.
func Any(cs ...Condition) Condition {
	return func(s Snapshot) bool {
		for _, c := range cs {
			if c(s) {
				return true
			}
		}
		return false
	}
}

func numericCmp(name string, ok func(float64) bool) Condition {
	return func(s Snapshot) bool {
		f, isNum := toFloat(s[name])
		return isNum && ok(f)
	}
}

// looseEqual compares snapshot values against literals without tripping over
// the int/int64/float64 split that number fields introduce.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	if a == b {
		return true
	}
	return reflect.DeepEqual(a, b)
}
