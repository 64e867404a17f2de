package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testKind string

const (
	kindAlpha testKind = "alpha"
	kindBeta  testKind = "beta"
)

func TestWireTokenDeterministicForEnums(t *testing.T) {
	a := NewChoice("Alpha", kindAlpha)
	b := NewChoice("Alpha again", kindAlpha)
	assert.Equal(t, "alpha", a.Token())
	assert.Equal(t, a.Token(), b.Token())
}

func TestWireTokenUniqueOtherwise(t *testing.T) {
	// Plain strings and structs are not enumerants; tokens must differ per
	// choice even for equal values.
	a := NewChoice("A", "same")
	b := NewChoice("B", "same")
	assert.NotEmpty(t, a.Token())
	assert.NotEqual(t, a.Token(), b.Token())

	c := NewChoice("C", nil)
	assert.NotEmpty(t, c.Token())
}

func TestOptionSetRoundTrip(t *testing.T) {
	type payload struct{ ID string }
	values := []any{payload{"a"}, payload{"b"}, payload{"c"}}
	choices := make([]*Choice, len(values))
	for i, v := range values {
		choices[i] = NewChoice("opt", v)
	}
	set, err := NewOptionSet(choices)
	require.NoError(t, err)

	// Reverse-mapping every wire token recovers the original value.
	for i, c := range set.Choices() {
		got, ok := set.Resolve(c.Token())
		require.True(t, ok)
		assert.Equal(t, values[i], got.Value)
	}

	_, ok := set.Resolve("not-a-token")
	assert.False(t, ok)
}

func TestOptionSetValuesSkipsUnknownTokens(t *testing.T) {
	set, err := NewOptionSet([]*Choice{NewChoice("A", kindAlpha), NewChoice("B", kindBeta)})
	require.NoError(t, err)

	vals := set.Values([]string{"beta", "bogus", "alpha"})
	assert.Equal(t, []any{kindBeta, kindAlpha}, vals)
}

func TestOptionSetRejectsDuplicateTokens(t *testing.T) {
	_, err := NewOptionSet([]*Choice{NewChoice("A", kindAlpha), NewChoice("B", kindAlpha)})
	require.Error(t, err)
	var cerr *ConstructionError
	assert.ErrorAs(t, err, &cerr)
}

func TestMarkSelected(t *testing.T) {
	choices := []*Choice{NewChoice("A", kindAlpha), NewChoice("B", kindBeta)}
	set, err := NewOptionSet(choices)
	require.NoError(t, err)

	set.MarkSelected([]any{kindBeta})
	assert.False(t, choices[0].selected)
	assert.True(t, choices[1].selected)

	set.MarkSelected(nil)
	assert.False(t, choices[1].selected)
}

func TestChunkChoices(t *testing.T) {
	choices := []*Choice{
		NewChoice("1", 1), NewChoice("2", 2), NewChoice("3", 3),
		NewChoice("4", 4), NewChoice("5", 5),
	}
	chunks := chunkChoices(choices, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[2], 1)

	assert.Nil(t, chunkChoices(nil, 2))
	assert.Nil(t, chunkChoices(choices, 0))
}
