package forms

import (
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hearthbot/hearth/internal/emoji"
)

// Validator checks a submitted value and returns a ValidationError when the
// value violates its constraint. Validators are pure: they never mutate the
// value. A nil value passes every validator except Required, so optional
// fields skip all other checks while unanswered.
type Validator func(v any) error

// Required rejects nil values.
func Required() Validator {
	return func(v any) error {
		if v == nil {
			return Invalid("The value is required.")
		}
		return nil
	}
}

// MinLength rejects strings or slices shorter than n.
func MinLength(n int) Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		if length(v) < n {
			return Invalid("The value must be at least %d characters long.", n)
		}
		return nil
	}
}

// MaxLength rejects strings or slices longer than n.
func MaxLength(n int) Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		if length(v) > n {
			return Invalid("The value must be at most %d characters long.", n)
		}
		return nil
	}
}

// IsNumber rejects strings that do not parse as a number. Values that are
// already numeric pass.
func IsNumber() Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		if _, ok := toFloat(v); ok {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return Invalid("The value must be a number.")
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return Invalid("The value must be a number.")
		}
		return nil
	}
}

// IsInt rejects strings that do not parse as an integer. Integral values pass.
func IsInt() Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		switch v.(type) {
		case int, int64, int32:
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return Invalid("The value must be an integer.")
		}
		if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
			return Invalid("The value must be an integer.")
		}
		return nil
	}
}

// IsEmoji rejects strings that are not a recognizable emoji: custom
// guild-emoji markup, a raw unicode emoji, or a known shortcode.
func IsEmoji() Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		s, ok := v.(string)
		if !ok || !emoji.Valid(s) {
			return Invalid("The value must be a valid emoji.")
		}
		return nil
	}
}

// MinValue rejects numeric values below min.
func MinValue(min float64) Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		f, ok := toFloat(v)
		if !ok {
			return Invalid("The value must be a number.")
		}
		if f < min {
			return Invalid("The value must be at least %v.", trimFloat(min))
		}
		return nil
	}
}

// MaxValue rejects numeric values above max.
func MaxValue(max float64) Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		f, ok := toFloat(v)
		if !ok {
			return Invalid("The value must be a number.")
		}
		if f > max {
			return Invalid("The value must be at most %v.", trimFloat(max))
		}
		return nil
	}
}

// Forbidden rejects values equal to any of the given ones. Used to prevent
// duplicate names inside a collection.
func Forbidden(values ...any) Validator {
	return func(v any) error {
		if v == nil {
			return nil
		}
		for _, f := range values {
			if v == f || reflect.DeepEqual(v, f) {
				return Invalid("The value %v is forbidden.", v)
			}
		}
		return nil
	}
}

// length counts runes for strings and elements for slices. Anything else
// counts as zero.
func length(v any) int {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len()
	}
	return 0
}

// toFloat widens the numeric kinds a field can store.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// trimFloat renders a bound without a trailing ".0" so messages read
// naturally for integral bounds.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
