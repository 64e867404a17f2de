package formdef_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/forms/formtest"
	"github.com/hearthbot/hearth/internal/catalog"
	"github.com/hearthbot/hearth/internal/formdef"
)

func buildDemo(t *testing.T, name string, opts formdef.BuildOptions) *forms.Form {
	t.Helper()
	def, ok := formdef.Demo().Get(name)
	require.True(t, ok)
	f, err := formdef.Build(def, opts)
	require.NoError(t, err)
	return f
}

func TestBuild_GuildDefinitionRuns(t *testing.T) {
	ctx := context.Background()
	f := buildDemo(t, "guild_creation", formdef.BuildOptions{Lookup: catalog.Seed()})

	require.Len(t, f.Fields(), 8)
	assert.Equal(t, "guild_creation", f.Name())
	assert.Equal(t, "Create a guild", f.Title())

	sess := formtest.NewSession(t,
		formtest.Text("Ad"),      // too short
		formtest.Text("Admin"),   // forbidden
		formtest.Text("Hearth"),  // accepted
		formtest.Pick("Allow"),   // allow_exchange
		formtest.Text("50"),      // exchange_limit, visible now
	)
	require.NoError(t, f.Start(ctx, sess))

	require.NoError(t, f.Respond(ctx))
	assert.Equal(t, "The value must be at least 3 characters long.", sess.LastNotice().Text)
	require.NoError(t, f.Respond(ctx))
	assert.Equal(t, "The value Admin is forbidden.", sess.LastNotice().Text)
	require.NoError(t, f.Respond(ctx))
	assert.Equal(t, "Hearth", f.Values()["name"])

	require.NoError(t, f.GoTo(ctx, "allow_exchange"))
	assert.Equal(t, true, f.Values()["allow_exchange"])
	assert.Equal(t, "exchange_limit", f.Current().Name(), "the limit appears and receives the cursor")

	require.NoError(t, f.Respond(ctx))
	assert.Equal(t, int64(50), f.Values()["exchange_limit"])
}

func TestBuild_AppearConditionHidesTheLimit(t *testing.T) {
	ctx := context.Background()
	f := buildDemo(t, "guild_creation", formdef.BuildOptions{Lookup: catalog.Seed()})
	sess := formtest.NewSession(t, formtest.Pick("Deny"))
	require.NoError(t, f.Start(ctx, sess))

	require.NoError(t, f.GoTo(ctx, "allow_exchange"))
	assert.Equal(t, false, f.Values()["allow_exchange"])
	assert.ErrorIs(t, f.GoTo(ctx, "exchange_limit"), forms.ErrNoSuchField)
}

func TestBuild_CurrencyFieldUsesTheCatalog(t *testing.T) {
	ctx := context.Background()
	f := buildDemo(t, "guild_creation", formdef.BuildOptions{Lookup: catalog.Seed()})
	sess := formtest.NewSession(t, formtest.Pick("Gold"))
	require.NoError(t, f.Start(ctx, sess))

	require.NoError(t, f.GoTo(ctx, "treasury_currency"))
	ref, ok := f.Values()["treasury_currency"].(catalog.Ref)
	require.True(t, ok)
	assert.Equal(t, catalog.Ref{Kind: catalog.KindCurrency, ID: "gold"}, ref)
}

func TestBuild_ShortcutDefinitionCreatesPacks(t *testing.T) {
	ctx := context.Background()
	f := buildDemo(t, "shortcut_rewards", formdef.BuildOptions{Lookup: catalog.Seed()})
	sess := formtest.NewSession(t,
		formtest.Pick("On use"),
		formtest.Text("40"),
	)
	require.NoError(t, f.Start(ctx, sess))

	require.NoError(t, f.GoTo(ctx, "empty_reward_pack"))
	require.Len(t, f.Fields(), 4)
	assert.Equal(t, "reward_pack_1", f.Fields()[0].Name())
	assert.Equal(t, "40 % - On use", f.Fields()[0].Label())
}

func TestBuild_DefaultsAndPrefill(t *testing.T) {
	l, err := formdef.NewLoader()
	require.NoError(t, err)
	def, err := l.Parse("t.cue", []byte(`
name:  "t"
title: "T"
fields: [
	{name: "n", kind: "number", label: "N", default: 5},
	{name: "s", kind: "text", label: "S", default: "from def"},
]
`))
	require.NoError(t, err)

	t.Run("definition defaults seed the values", func(t *testing.T) {
		f, err := formdef.Build(def, formdef.BuildOptions{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"n": int64(5), "s": "from def"}, f.Values())
	})

	t.Run("prefill overrides key by key", func(t *testing.T) {
		f, err := formdef.Build(def, formdef.BuildOptions{
			Prefill: map[string]any{"s": "from caller"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), f.Values()["n"])
		assert.Equal(t, "from caller", f.Values()["s"])
	})

	t.Run("unknown prefill names fail the build", func(t *testing.T) {
		_, err := formdef.Build(def, formdef.BuildOptions{
			Prefill: map[string]any{"ghost": 1},
		})
		var cerr *forms.ConstructionError
		assert.ErrorAs(t, err, &cerr)
	})
}

func TestBuild_ObserverIsWired(t *testing.T) {
	ctx := context.Background()
	var kinds []forms.EventKind
	obs := forms.ObserverFunc(func(ev forms.Event) { kinds = append(kinds, ev.Kind) })

	f := buildDemo(t, "guild_creation", formdef.BuildOptions{
		Lookup:    catalog.Seed(),
		Observers: []forms.Observer{obs},
	})
	sess := formtest.NewSession(t)
	require.NoError(t, f.Start(ctx, sess))
	assert.Equal(t, []forms.EventKind{forms.EventStarted}, kinds)
}
