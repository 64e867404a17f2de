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

func startOne(t *testing.T, fld forms.Field, replies ...formtest.Reply) (*forms.Form, *formtest.Session) {
	t.Helper()
	f, err := forms.New("test", "Test", []forms.Field{fld})
	require.NoError(t, err)
	sess := formtest.NewSession(t, replies...)
	require.NoError(t, f.Start(context.Background(), sess))
	return f, sess
}

func TestText_PromptCarriesStateAsDefault(t *testing.T) {
	ctx := context.Background()
	fld := forms.NewText("name", "Name").Bounds(1, 32)
	f, sess := startOne(t, fld, formtest.Text("Bram"), formtest.Dismiss())

	require.NoError(t, f.Respond(ctx))
	first := sess.Prompts[0]
	assert.Equal(t, forms.PromptText, first.Kind)
	assert.Equal(t, "Enter a value", first.Title)
	assert.Equal(t, 1, first.MinLength)
	assert.Equal(t, 32, first.MaxLength)
	assert.Empty(t, first.Default)

	// Re-asking offers the stored value back for editing.
	require.NoError(t, f.Respond(ctx))
	assert.Equal(t, "Bram", sess.Prompts[1].Default)
	assert.Equal(t, "Bram", f.Values()["name"])
}

func TestNumber_ParsesAndStores(t *testing.T) {
	ctx := context.Background()

	t.Run("integral input becomes int64", func(t *testing.T) {
		f, _ := startOne(t, forms.NewNumber("n", "N"), formtest.Text("42"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, int64(42), f.Values()["n"])
	})

	t.Run("decimal comma counts as a point", func(t *testing.T) {
		f, _ := startOne(t, forms.NewNumber("n", "N"), formtest.Text("3,14"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, 3.14, f.Values()["n"])
	})

	t.Run("surrounding whitespace is fine", func(t *testing.T) {
		f, _ := startOne(t, forms.NewNumber("n", "N"), formtest.Text("  7  "))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, int64(7), f.Values()["n"])
	})

	t.Run("non-numbers reject and clear the previous value", func(t *testing.T) {
		f, sess := startOne(t, forms.NewNumber("n", "N"),
			formtest.Text("42"), formtest.Text("abc"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, int64(42), f.Values()["n"])

		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "The value must be a number.", sess.LastNotice().Text)
		assert.Nil(t, f.Values()["n"])
	})
}

func TestNumber_Display(t *testing.T) {
	ctx := context.Background()

	t.Run("minus one shows as Infinite", func(t *testing.T) {
		f, sess := startOne(t, forms.NewNumber("n", "N"), formtest.Text("-1"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "Infinite", sess.LastView().Rows[0].Display)
	})

	t.Run("floats render without exponent", func(t *testing.T) {
		f, sess := startOne(t, forms.NewNumber("n", "N"), formtest.Text("50.5"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "50.5", sess.LastView().Rows[0].Display)
	})
}

func TestSelect_SinglePick(t *testing.T) {
	ctx := context.Background()
	choices := []*forms.Choice{
		forms.NewChoice("Warrior", "warrior"),
		forms.NewChoice("Mage", "mage"),
	}
	fld := forms.NewSelect("class", "Class", choices)
	f, sess := startOne(t, fld, formtest.Pick("Mage"), formtest.Dismiss())

	require.NoError(t, f.Respond(ctx))
	assert.Equal(t, "mage", f.Values()["class"], "single pick unwraps to the value itself")
	assert.Equal(t, "Successfully set value to: Mage", sess.LastNotice().Text)
	assert.Equal(t, "Mage", sess.LastView().Rows[0].Display)

	req := sess.Prompts[0]
	assert.Equal(t, forms.PromptSelect, req.Kind)
	assert.Equal(t, "Select between 1 and 1 values.", req.Title)
	assert.Equal(t, "Select a value", req.Placeholder)

	// Re-asking marks the stored pick as the default option.
	require.NoError(t, f.Respond(ctx))
	second := sess.Prompts[1]
	require.Len(t, second.Options, 2)
	assert.False(t, second.Options[0].Default)
	assert.True(t, second.Options[1].Default)
	assert.Equal(t, "mage", f.Values()["class"], "dismiss keeps the value")
}

func TestSelect_CountBounds(t *testing.T) {
	ctx := context.Background()
	choices := []*forms.Choice{
		forms.NewChoice("A", 1),
		forms.NewChoice("B", 2),
		forms.NewChoice("C", 3),
	}

	t.Run("too few picks report like a length violation", func(t *testing.T) {
		fld := forms.NewSelect("pick", "Pick", choices).Range(2, 3)
		f, sess := startOne(t, fld, formtest.Pick("A"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "The value must be at least 2 characters long.", sess.LastNotice().Text)
		assert.Nil(t, f.Values()["pick"])
	})

	t.Run("a multi pick stores the slice", func(t *testing.T) {
		fld := forms.NewSelect("pick", "Pick", choices).Range(2, 3)
		f, sess := startOne(t, fld, formtest.Pick("A", "C"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, []any{1, 3}, f.Values()["pick"])
		assert.Equal(t, "A, C", sess.LastView().Rows[0].Display)
	})

	t.Run("max -1 means all choices", func(t *testing.T) {
		fld := forms.NewSelect("pick", "Pick", choices).Range(1, -1)
		f, sess := startOne(t, fld, formtest.Pick("A", "B", "C"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, []any{1, 2, 3}, f.Values()["pick"])
		assert.Equal(t, 3, sess.Prompts[0].MaxValues)
	})
}

func TestSelect_DynamicSource(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves choices at ask time", func(t *testing.T) {
		source := func(ctx context.Context, f *forms.Form) ([]*forms.Choice, error) {
			return []*forms.Choice{forms.NewChoice("Gold", "gold")}, nil
		}
		fld := forms.NewDynamicSelect("currency", "Currency", source)
		f, _ := startOne(t, fld, formtest.Pick("Gold"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "gold", f.Values()["currency"])
	})

	t.Run("empty source tells the user and keeps the turn", func(t *testing.T) {
		source := func(ctx context.Context, f *forms.Form) ([]*forms.Choice, error) {
			return nil, nil
		}
		fld := forms.NewDynamicSelect("currency", "Currency", source)
		f, sess := startOne(t, fld, formtest.Pick("Gold"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "No choices available.", sess.LastNotice().Text)
		assert.Equal(t, forms.NoticeInfo, sess.LastNotice().Severity)
		assert.Empty(t, sess.Prompts, "no prompt without choices")
	})

	t.Run("source failure surfaces as an error notice", func(t *testing.T) {
		source := func(ctx context.Context, f *forms.Form) ([]*forms.Choice, error) {
			return nil, errors.New("catalog offline")
		}
		fld := forms.NewDynamicSelect("currency", "Currency", source)
		f, sess := startOne(t, fld)
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "catalog offline", sess.LastNotice().Text)
		assert.Equal(t, forms.NoticeError, sess.LastNotice().Severity)
	})
}

func TestSelect_RejectsOversizedChoiceSets(t *testing.T) {
	choices := make([]*forms.Choice, 0, 101)
	for i := 0; i < 101; i++ {
		choices = append(choices, forms.NewChoice("c", i))
	}
	_, err := forms.New("f", "F", []forms.Field{forms.NewSelect("pick", "Pick", choices)})
	assert.ErrorIs(t, err, forms.ErrTooManyOptions)
}

func TestEmoji_RemindsThenValidates(t *testing.T) {
	ctx := context.Background()
	fld := forms.NewEmoji("icon", "Icon", forms.WithValidators(forms.IsEmoji()))
	f, sess := startOne(t, fld, formtest.Text("nope"), formtest.Text("👍"))

	require.NoError(t, f.Respond(ctx))
	texts := sess.NoticeTexts()
	require.Len(t, texts, 2)
	assert.Equal(t, "Please enter an emoji", texts[0])
	assert.Equal(t, "The value must be a valid emoji.", texts[1])
	assert.Nil(t, f.Values()["icon"])

	require.NoError(t, f.Respond(ctx))
	texts = sess.NoticeTexts()
	require.Len(t, texts, 4)
	assert.Equal(t, "Please enter an emoji", texts[2], "the reminder precedes every ask")
	assert.Equal(t, "Successfully set value to: 👍", texts[3])
	assert.Equal(t, "👍", f.Values()["icon"])
}

func TestInfos_NestedForm(t *testing.T) {
	ctx := context.Background()
	subs := func() []forms.Field {
		return []forms.Field{
			forms.NewText("name", "Name", forms.WithRequired()),
			forms.NewNumber("power", "Power"),
		}
	}

	t.Run("a canceled child leaves the field untouched", func(t *testing.T) {
		fld := forms.NewInfos("infos", "Forge info", subs())
		f, sess := startOne(t, fld)
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "The field **Forge info** has not been updated.", sess.LastNotice().Text)
		assert.Nil(t, f.Values()["infos"])
	})

	t.Run("a finished child stores the answered entries", func(t *testing.T) {
		fld := forms.NewInfos("infos", "Forge info", subs())
		f, sess := startOne(t, fld, formtest.Text("Sword"))
		require.NoError(t, f.Respond(ctx))
		assert.Equal(t, "The field **Forge info** has been updated.", sess.LastNotice().Text)

		entries, ok := f.Values()["infos"].([]forms.InfoEntry)
		require.True(t, ok)
		require.Len(t, entries, 1)
		assert.Equal(t, forms.InfoEntry{Key: "name", Value: "Sword"}, entries[0])
		assert.Equal(t, "**Name:** Sword", sess.LastView().Rows[0].Display)
	})

	t.Run("unanswered required subs show in the display", func(t *testing.T) {
		fld := forms.NewInfos("infos", "Forge info", subs())
		_, sess := startOne(t, fld)
		assert.Equal(t, "**Name:** *Unanswered*", sess.LastView().Rows[0].Display)
	})
}
