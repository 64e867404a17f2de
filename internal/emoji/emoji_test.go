package emoji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"unicode", "👍", true},
		{"unicode with text", "hello 👍", true},
		{"shortcode", ":butterfly:", true},
		{"custom", "<:blob:123456789012345678>", true},
		{"custom animated", "<a:party:123456789012345678>", true},
		{"plain text", "notanemoji", false},
		{"empty", "", false},
		{"bare number", "12345", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.in))
		})
	}
}

func TestParseUnicode(t *testing.T) {
	e, ok := Parse("🦋")
	require.True(t, ok)
	assert.Equal(t, "🦋", e.Name)
	assert.False(t, e.Custom())
	assert.Equal(t, "🦋", e.String())
}

func TestParseCustom(t *testing.T) {
	e, ok := Parse("<a:party:123456789012345678>")
	require.True(t, ok)
	assert.Equal(t, "party", e.Name)
	assert.Equal(t, int64(123456789012345678), e.ID)
	assert.True(t, e.Animated)
	assert.True(t, e.Custom())
	assert.Equal(t, "<a:party:123456789012345678>", e.String())
}

func TestParseNone(t *testing.T) {
	_, ok := Parse("just words")
	assert.False(t, ok)
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "🦋", Encode(":butterfly:"))
	assert.Equal(t, ":no_such_alias_here:", Encode(":no_such_alias_here:"))
}
