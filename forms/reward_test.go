package forms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthbot/hearth/forms"
	"github.com/hearthbot/hearth/forms/formtest"
)

func rewardLookup() *fakeLookup {
	return &fakeLookup{
		currencies: []*forms.Choice{forms.NewChoice("Gold", "cur-gold")},
		items:      []*forms.Choice{forms.NewChoice("Iron Sword", "item-sword")},
		roles:      []*forms.Choice{forms.NewChoice("Hero", "role-hero")},
		stats:      []*forms.Choice{forms.NewChoice("Strength", "stat-str")},
	}
}

func startCreator(t *testing.T, creator *forms.PackCreator, replies ...formtest.Reply) (*forms.Form, *formtest.Session) {
	t.Helper()
	f, err := forms.New("shortcut", "Shortcut", []forms.Field{
		creator,
		forms.NewText("other", "Other"),
	}, forms.WithLookup(rewardLookup()))
	require.NoError(t, err)
	sess := formtest.NewSession(t, replies...)
	require.NoError(t, f.Start(context.Background(), sess))
	return f, sess
}

// startPack runs a creation exchange so the tests get a live pack editor.
func startPack(t *testing.T, replies ...formtest.Reply) (*forms.Form, *formtest.Session, *forms.RewardPackField) {
	t.Helper()
	f, sess := startCreator(t, forms.NewPackCreator(), append([]formtest.Reply{formtest.Text("25")}, replies...)...)
	require.NoError(t, f.Respond(context.Background()))
	editor, ok := f.Fields()[0].(*forms.RewardPackField)
	require.True(t, ok)
	return f, sess, editor
}

func TestPackCreator_SplicesAnEditorField(t *testing.T) {
	ctx := context.Background()
	creator := forms.NewPackCreator().Types([]*forms.Choice{
		forms.NewChoice("Loot box", "loot"),
		forms.NewChoice("Daily", "daily"),
	})
	f, sess := startCreator(t, creator,
		formtest.Pick("Loot box"),
		formtest.Text("12.5"),
	)

	require.NoError(t, f.Respond(ctx))

	fields := f.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "reward_pack_1", fields[0].Name())
	assert.Equal(t, "12.5 % - Loot box", fields[0].Label())
	assert.Equal(t, "reward_pack_1", f.Current().Name(), "the new editor becomes current")

	assert.Equal(t, map[string]any{"luck": 12.5, "reward_type": "loot"}, f.Values()["empty_reward_pack"])
	assert.Equal(t, "New reward pack **12.5 % - Loot box** successfully created.", sess.LastNotice().Text)

	editor := fields[0].(*forms.RewardPackField)
	assert.Equal(t, 12.5, editor.Pack().Luck)
	assert.Same(t, editor.Pack(), f.Values()["reward_pack_1"])
	assert.Equal(t, "*No rewards*", sess.LastView().Rows[0].Display)
}

func TestPackCreator_SecondPackGetsItsOwnName(t *testing.T) {
	ctx := context.Background()
	f, _ := startCreator(t, forms.NewPackCreator(),
		formtest.Text("25"),
		formtest.Text("50"),
	)

	require.NoError(t, f.Respond(ctx))
	require.NoError(t, f.GoTo(ctx, "empty_reward_pack"))

	names := []string{}
	for _, fld := range f.Fields() {
		names = append(names, fld.Name())
	}
	assert.Equal(t, []string{"reward_pack_2", "reward_pack_1", "empty_reward_pack", "other"}, names)
	assert.Equal(t, "50 %", f.Fields()[0].Label())
}

func TestPackCreator_RejectsBadLuck(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		input  string
		notice string
	}{
		{"abc", "The value must be a number."},
		{"150", "The value must be at most 100."},
		{"-3", "The value must be at least 0."},
	} {
		f, sess := startCreator(t, forms.NewPackCreator(), formtest.Text(tc.input))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, tc.notice, sess.LastNotice().Text)
		assert.Len(t, f.Fields(), 2, "no editor on a rejected chance")
		assert.Nil(t, f.Values()["empty_reward_pack"])
	}
}

func TestPackCreator_RoundsToTwoDecimals(t *testing.T) {
	ctx := context.Background()
	f, _ := startCreator(t, forms.NewPackCreator(), formtest.Text("33,333"))

	require.NoError(t, f.Respond(ctx))
	editor := f.Fields()[0].(*forms.RewardPackField)
	assert.Equal(t, 33.33, editor.Pack().Luck)
	assert.Equal(t, "33.33 %", f.Fields()[0].Label())
}

func TestPackCreator_ValidatorsOnlyGateTheConfirmation(t *testing.T) {
	ctx := context.Background()
	never := forms.Validator(func(v any) error { return errors.New("not today") })
	f, sess := startCreator(t, forms.NewPackCreator(forms.WithValidators(never)),
		formtest.Text("25"),
	)

	require.NoError(t, f.Respond(ctx))
	assert.Len(t, f.Fields(), 3, "the pack exists either way")
	assert.Nil(t, f.Values()["empty_reward_pack"])
	for _, n := range sess.Notices {
		assert.NotEqual(t, forms.NoticeSuccess, n.Severity)
	}
}

func TestRewardPack_AddItemRewards(t *testing.T) {
	ctx := context.Background()
	f, sess, editor := startPack(t,
		formtest.Pick("Add a reward"),
		formtest.Pick("Item (or currency)"),
		formtest.Pick("Iron Sword", "Gold"),
		formtest.Pick("Quantity"),
		formtest.Text("5"),
		formtest.Text("10"),
		formtest.Pick("Finish"),
	)

	require.NoError(t, f.Respond(ctx))

	pack := editor.Pack()
	require.Len(t, pack.Rewards, 2)
	first := pack.Rewards[0]
	assert.Equal(t, forms.RewardItem, first.Kind)
	assert.Equal(t, "item-sword", first.Stuff)
	assert.False(t, first.Durability)
	require.NotNil(t, first.MinAmount)
	require.NotNil(t, first.MaxAmount)
	assert.Equal(t, int64(5), *first.MinAmount)
	assert.Equal(t, int64(10), *first.MaxAmount)

	texts := sess.NoticeTexts()
	assert.Contains(t, texts, "Reward amount set to 5/10.")
	assert.Equal(t, "Successfully set value to: 5/10 **Iron Sword** *(quantity)*\n5/10 **Gold** *(quantity)*", sess.LastNotice().Text)
}

func TestRewardPack_DurabilityMarksTheRewards(t *testing.T) {
	ctx := context.Background()
	f, sess, editor := startPack(t,
		formtest.Pick("Add a reward"),
		formtest.Pick("Item (or currency)"),
		formtest.Pick("Iron Sword"),
		formtest.Pick("Durability"),
		formtest.Text("3"),
		formtest.Dismiss(), // no maximum, fix amount
		formtest.Pick("Finish"),
	)

	require.NoError(t, f.Respond(ctx))

	require.Len(t, editor.Pack().Rewards, 1)
	rw := editor.Pack().Rewards[0]
	assert.True(t, rw.Durability)
	assert.Nil(t, rw.MaxAmount)
	assert.Contains(t, sess.NoticeTexts(), "Reward amount set to 3.")
	assert.Equal(t, "3 **Iron Sword** *(durability)*", sess.LastView().Rows[0].Display)
}

func TestRewardPack_RoleRewardsSkipAmounts(t *testing.T) {
	ctx := context.Background()
	f, sess, editor := startPack(t,
		formtest.Pick("Add a reward"),
		formtest.Pick("RP Role"),
		formtest.Pick("Hero"),
		formtest.Pick("Finish"),
	)

	require.NoError(t, f.Respond(ctx))

	require.Len(t, editor.Pack().Rewards, 1)
	rw := editor.Pack().Rewards[0]
	assert.Equal(t, forms.RewardRole, rw.Kind)
	assert.Nil(t, rw.MinAmount)
	assert.Equal(t, "**Hero**", sess.LastView().Rows[0].Display)
	// Creation prompt, then menu, kind, role pick, closing menu.
	assert.Len(t, sess.Prompts, 5)
}

func TestRewardPack_MinAboveMaxIsRejected(t *testing.T) {
	ctx := context.Background()
	f, sess, editor := startPack(t,
		formtest.Pick("Add a reward"),
		formtest.Pick("Item (or currency)"),
		formtest.Pick("Iron Sword"),
		formtest.Pick("Quantity"),
		formtest.Text("10"),
		formtest.Text("5"),
		formtest.Pick("Finish"),
	)

	require.NoError(t, f.Respond(ctx))
	assert.Contains(t, sess.NoticeTexts(), "Minimum amount can't be greater than maximum amount.")
	assert.Empty(t, editor.Pack().Rewards)
}

func TestRewardPack_RemoveReward(t *testing.T) {
	ctx := context.Background()
	f, _, editor := startPack(t,
		formtest.Pick("Add a reward"),
		formtest.Pick("RP Role"),
		formtest.Pick("Hero"),
		formtest.Pick("Remove a reward"),
		formtest.Pick("**Hero**"),
		formtest.Pick("Finish"),
	)

	require.NoError(t, f.Respond(ctx))
	assert.Empty(t, editor.Pack().Rewards)
}

func TestRewardPack_DeleteNeedsConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("denied keeps the pack", func(t *testing.T) {
		f, _, _ := startPack(t,
			formtest.Pick("Delete the pack"),
			formtest.Deny(),
			formtest.Pick("Finish"),
		)
		require.NoError(t, f.Respond(ctx))
		assert.Len(t, f.Fields(), 3)
	})

	t.Run("confirmed removes the field", func(t *testing.T) {
		f, sess, _ := startPack(t,
			formtest.Pick("Delete the pack"),
			formtest.Confirm(),
		)
		require.NoError(t, f.Respond(ctx))

		names := []string{}
		for _, fld := range f.Fields() {
			names = append(names, fld.Name())
		}
		assert.Equal(t, []string{"empty_reward_pack", "other"}, names)
		assert.Equal(t, "empty_reward_pack", f.Current().Name())
		assert.Equal(t, "The pack has been deleted.", sess.LastNotice().Text)
	})
}

func TestRewardPack_NothingToAdd(t *testing.T) {
	ctx := context.Background()
	f, err := forms.New("shortcut", "Shortcut", []forms.Field{
		forms.NewPackCreator(),
		forms.NewText("other", "Other"),
	}, forms.WithLookup(&fakeLookup{}))
	require.NoError(t, err)
	sess := formtest.NewSession(t,
		formtest.Text("25"),
		formtest.Pick("Add a reward"),
		formtest.Pick("Finish"),
	)
	require.NoError(t, f.Start(ctx, sess))

	require.NoError(t, f.Respond(ctx))
	require.NoError(t, f.Respond(ctx))
	assert.Contains(t, sess.NoticeTexts(), "There are no rewards available to add (role, item or stat).")
}
