package forms

import (
	"context"
	"strconv"
	"strings"
)

// StatBonus applies a flat modifier to one stat of the thing being
// created.
type StatBonus struct {
	Stat   any    `json:"stat"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Display renders the bonus with its signed amount.
func (b StatBonus) Display(tr Translator) string {
	return tr.Sprintf("%+d **%s**", b.Amount, b.Label)
}

// StatBonuses edits a list of stat bonuses through a menu loop: add a
// bonus for stats that have none yet, remove existing ones, finish to
// commit. Like the access editor, its value starts as an empty list so the
// field never blocks completion by itself.
type StatBonuses struct {
	Base
}

// NewStatBonuses builds a stat bonus editor field.
func NewStatBonuses(name, label string, opts ...FieldOption) *StatBonuses {
	s := &StatBonuses{Base: newBase(name, label, opts)}
	if s.value == nil {
		s.value = []StatBonus{}
	}
	return s
}

func (s *StatBonuses) bonuses() []StatBonus {
	b, _ := s.value.([]StatBonus)
	return b
}

func (s *StatBonuses) setBonuses(f *Form, bonuses []StatBonus) {
	f.mu.Lock()
	s.value = bonuses
	f.mu.Unlock()
}

func (s *StatBonuses) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	var stats []*Choice
	if f.lookup != nil {
		var err error
		stats, err = f.lookup.Stats(ctx)
		if err != nil {
			if nerr := f.notify(ctx, NoticeError, err.Error()); nerr != nil {
				return AskRefresh, nerr
			}
			return AskRefresh, nil
		}
	}
	if len(stats) == 0 && len(s.bonuses()) == 0 {
		if nerr := f.notify(ctx, NoticeInfo, f.tr.Sprintf("There are no stats configured, so you can't add a bonus.")); nerr != nil {
			return AskRefresh, nerr
		}
		return AskRefresh, nil
	}

	for {
		choices := []*Choice{NewChoice(f.tr.Sprintf("Add a bonus"), menuAdd)}
		if len(s.bonuses()) > 0 {
			choices = append(choices, NewChoice(f.tr.Sprintf("Remove a bonus"), menuRemove))
		}
		choices = append(choices, NewChoice(f.tr.Sprintf("Finish"), menuFinish))

		action, err := pickOne(ctx, f, PromptRequest{
			Kind:        PromptSelect,
			Title:       s.content(f.tr),
			Label:       s.label,
			Placeholder: f.tr.Sprintf("What do you want to do?"),
			Options:     promptOptions(choices),
			MinValues:   1,
			MaxValues:   1,
		}, choices)
		if err != nil {
			return AskRefresh, err
		}
		if action == nil {
			return AskRefresh, nil
		}

		switch action.Value {
		case menuAdd:
			if err := s.addFlow(ctx, f, stats); err != nil {
				return AskRefresh, err
			}
		case menuRemove:
			if err := s.removeFlow(ctx, f); err != nil {
				return AskRefresh, err
			}
		case menuFinish:
			if _, err := f.setValue(ctx, s, s.bonuses()); err != nil {
				return AskRefresh, err
			}
			return AskRefresh, nil
		}
	}
}

// addFlow asks for the stats to modify and one amount applied to all of
// them.
func (s *StatBonuses) addFlow(ctx context.Context, f *Form, stats []*Choice) error {
	bonuses := s.bonuses()
	avail := make([]*Choice, 0, len(stats))
	for _, stat := range stats {
		covered := false
		for _, b := range bonuses {
			if looseEqual(b.Stat, stat.Value) {
				covered = true
				break
			}
		}
		if !covered {
			avail = append(avail, NewChoice(stat.Label, stat.Value))
		}
	}
	if len(avail) == 0 {
		return f.notify(ctx, NoticeInfo, f.tr.Sprintf("There are no stats without a bonus yet."))
	}

	set, err := NewOptionSet(avail)
	if err != nil {
		return err
	}
	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptSelect,
		Title:       s.content(f.tr),
		Label:       s.label,
		Placeholder: f.tr.Sprintf("Pick a stat in the list."),
		Options:     promptOptions(avail),
		MinValues:   1,
		MaxValues:   len(avail),
	})
	if err != nil {
		return err
	}
	if reply.Dismissed || len(reply.Tokens) == 0 {
		return nil
	}
	var picked []*Choice
	for _, tok := range reply.Tokens {
		if c, ok := set.Resolve(tok); ok {
			picked = append(picked, c)
		}
	}
	if len(picked) == 0 {
		return nil
	}

	amountReply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptText,
		Title:       f.tr.Sprintf("Stat bonus"),
		Label:       f.tr.Sprintf("Bonus amount"),
		Placeholder: f.tr.Sprintf("Bonus amount, can be negative."),
		MinLength:   1,
	})
	if err != nil {
		return err
	}
	if amountReply.Dismissed {
		return nil
	}
	raw := strings.TrimSpace(strings.ReplaceAll(amountReply.Text, ",", "."))
	if verr := IsNumber()(raw); verr != nil {
		return f.notify(ctx, NoticeError, renderError(f.tr, verr))
	}
	fv, _ := strconv.ParseFloat(raw, 64)
	amount := int64(fv)

	for _, c := range picked {
		bonuses = append(bonuses, StatBonus{Stat: c.Value, Label: c.Label, Amount: amount})
	}
	s.setBonuses(f, bonuses)
	return f.notify(ctx, NoticeSuccess, f.tr.Sprintf("Bonus set to %v.", trimFloat(fv)))
}

// removeFlow asks which bonuses to drop and removes them.
func (s *StatBonuses) removeFlow(ctx context.Context, f *Form) error {
	bonuses := s.bonuses()
	choices := make([]*Choice, len(bonuses))
	lines := make([]string, len(bonuses))
	for i, b := range bonuses {
		choices[i] = NewChoice(b.Display(f.tr), i)
		lines[i] = b.Display(f.tr)
	}
	set, err := NewOptionSet(choices)
	if err != nil {
		return err
	}

	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptSelect,
		Title:       f.tr.Sprintf("Select the bonuses you want to remove in the list below.") + "\n\n" + strings.Join(lines, "\n"),
		Label:       s.label,
		Placeholder: f.tr.Sprintf("Select bonuses to remove in the list"),
		Options:     promptOptions(choices),
		MinValues:   1,
		MaxValues:   len(choices),
	})
	if err != nil {
		return err
	}
	if reply.Dismissed {
		return nil
	}

	drop := make(map[int]bool, len(reply.Tokens))
	for _, tok := range reply.Tokens {
		if c, ok := set.Resolve(tok); ok {
			if idx, ok := c.Value.(int); ok {
				drop[idx] = true
			}
		}
	}
	kept := bonuses[:0:0]
	for i, b := range bonuses {
		if !drop[i] {
			kept = append(kept, b)
		}
	}
	s.setBonuses(f, kept)
	return nil
}

// content renders the editor's header with the current bonus list.
func (s *StatBonuses) content(tr Translator) string {
	bonuses := s.bonuses()
	var list string
	if len(bonuses) == 0 {
		list = tr.Sprintf("**No bonuses have been set yet.**")
	} else {
		lines := make([]string, len(bonuses))
		for i, b := range bonuses {
			lines[i] = b.Display(tr)
		}
		list = strings.Join(lines, "\n")
	}
	return tr.Sprintf("The bonuses are stat modifiers applied to "+
		"what you are creating.\n\n"+
		"%s\n\n"+
		"You can add a bonus by selecting the **Add a bonus** "+
		"option, then picking the stats and entering the amount.", list)
}

func (s *StatBonuses) Display(tr Translator) string {
	bonuses := s.bonuses()
	if len(bonuses) == 0 {
		return tr.Sprintf("*Unanswered*")
	}
	lines := make([]string, len(bonuses))
	for i, b := range bonuses {
		lines[i] = b.Display(tr)
	}
	out := strings.Join(lines, "\n")
	if runes := []rune(out); len(runes) > 1048 {
		out = string(runes[:1045]) + "..."
	}
	return out
}
