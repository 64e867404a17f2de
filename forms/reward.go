package forms

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RewardKind says what a reward hands out.
type RewardKind string

const (
	RewardItem RewardKind = "item"
	RewardRole RewardKind = "role"
	RewardStat RewardKind = "stat"
)

// Reward is one entry of a reward pack.
type Reward struct {
	Kind  RewardKind `json:"kind"`
	Stuff any        `json:"stuff"`
	Label string     `json:"label"`
	Emoji string     `json:"emoji,omitempty"`

	// Durability applies to item rewards: the amount wears durability
	// instead of granting quantity.
	Durability bool `json:"durability,omitempty"`
	// Regeneration applies to stat rewards: the amount regenerates instead
	// of raising the maximum.
	Regeneration bool `json:"regeneration,omitempty"`

	// MinAmount and MaxAmount bound the granted amount. A nil MaxAmount
	// means a fixed amount, both nil means the reward has no amount.
	MinAmount *int64 `json:"min_amount,omitempty"`
	MaxAmount *int64 `json:"max_amount,omitempty"`
}

// Display renders the reward the way pack listings show it.
func (r *Reward) Display(tr Translator) string {
	if r.Kind == RewardRole {
		return tr.Sprintf("**%s**", r.Label)
	}
	var extra string
	switch r.Kind {
	case RewardItem:
		if r.Durability {
			extra = tr.Sprintf("*(durability)*")
		} else {
			extra = tr.Sprintf("*(quantity)*")
		}
	case RewardStat:
		if r.Regeneration {
			extra = tr.Sprintf("*(regeneration)*")
		} else {
			extra = tr.Sprintf("*(maximum)*")
		}
	}
	switch {
	case r.MinAmount != nil && r.MaxAmount != nil:
		return tr.Sprintf("%v/%v **%s** %s", *r.MinAmount, *r.MaxAmount, r.Label, extra)
	case r.MinAmount != nil:
		return tr.Sprintf("%v **%s** %s", *r.MinAmount, r.Label, extra)
	default:
		return tr.Sprintf("**%s** %s", r.Label, extra)
	}
}

// RewardPack groups rewards under a loot chance and an optional trigger
// type.
type RewardPack struct {
	Type      any       `json:"type,omitempty"`
	TypeLabel string    `json:"type_label,omitempty"`
	Luck      float64   `json:"luck"`
	Rewards   []*Reward `json:"rewards"`
}

// AddRewards appends rewards to the pack.
func (p *RewardPack) AddRewards(rs ...*Reward) {
	p.Rewards = append(p.Rewards, rs...)
}

// RemoveRewards drops the given rewards from the pack.
func (p *RewardPack) RemoveRewards(rs ...*Reward) {
	for _, r := range rs {
		for i, have := range p.Rewards {
			if have == r {
				p.Rewards = append(p.Rewards[:i], p.Rewards[i+1:]...)
				break
			}
		}
	}
}

// Name renders the pack's heading: its luck percentage, plus the trigger
// type when it has one.
func (p *RewardPack) Name(tr Translator) string {
	name := tr.Sprintf("%v %%", trimFloat(p.Luck))
	if p.Type != nil {
		name += " - " + p.TypeLabel
	}
	return name
}

// PackCreator spawns reward pack editors. Responding to it asks for the
// pack's trigger type and loot chance, then splices a new editor field in
// front of the form and moves the user onto it.
type PackCreator struct {
	Base

	types  []*Choice
	serial int
}

// NewPackCreator builds the pack creator field. Its name is fixed so forms
// can carry at most one.
func NewPackCreator(opts ...FieldOption) *PackCreator {
	return &PackCreator{Base: newBase("empty_reward_pack", "Create a reward pack", opts)}
}

// Types offers a trigger type select when creating a pack.
func (p *PackCreator) Types(choices []*Choice) *PackCreator {
	p.types = choices
	return p
}

func (p *PackCreator) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	var typeValue any
	var typeLabel string
	if len(p.types) > 0 {
		c, err := pickOne(ctx, f, PromptRequest{
			Kind:        PromptSelect,
			Title:       f.tr.Sprintf("Create a reward pack"),
			Label:       p.label,
			Placeholder: f.tr.Sprintf("Choose when the rewards will be given"),
			Options:     promptOptions(p.types),
			MinValues:   1,
			MaxValues:   1,
		}, p.types)
		if err != nil {
			return AskRefresh, err
		}
		if c == nil {
			return AskRefresh, nil
		}
		typeValue, typeLabel = c.Value, c.Label
	}

	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptText,
		Title:       f.tr.Sprintf("Create a reward pack"),
		Label:       f.tr.Sprintf("Pack loot chance"),
		Placeholder: f.tr.Sprintf("A percentage between 0 and 100. Max two decimals are allowed."),
		MinLength:   1,
		MaxLength:   6,
	})
	if err != nil {
		return AskRefresh, err
	}
	if reply.Dismissed {
		return AskRefresh, nil
	}

	raw := strings.TrimSpace(strings.ReplaceAll(reply.Text, ",", "."))
	if verr := IsNumber()(raw); verr != nil {
		if nerr := f.reject(ctx, p, verr); nerr != nil {
			return AskRefresh, nerr
		}
		return AskRefresh, nil
	}
	luck, _ := strconv.ParseFloat(raw, 64)
	for _, bound := range []Validator{MinValue(0), MaxValue(100)} {
		if verr := bound(luck); verr != nil {
			if nerr := f.reject(ctx, p, verr); nerr != nil {
				return AskRefresh, nerr
			}
			return AskRefresh, nil
		}
	}
	luck = math.Round(luck*100) / 100

	pack := &RewardPack{Type: typeValue, TypeLabel: typeLabel, Luck: luck}
	p.serial++
	editor := newPackField(fmt.Sprintf("reward_pack_%d", p.serial), pack.Name(f.tr), pack)
	if err := f.insertField(0, editor); err != nil {
		return AskRefresh, err
	}
	f.makeCurrent(editor)

	cfg := map[string]any{"luck": luck, "reward_type": typeValue}
	f.mu.Lock()
	p.value = cfg
	f.mu.Unlock()

	// The pack exists either way; the creator's own validators only gate
	// the confirmation.
	if verr := p.validate(cfg); verr != nil {
		f.mu.Lock()
		p.value = nil
		f.mu.Unlock()
	} else if nerr := f.notify(ctx, NoticeSuccess, f.tr.Sprintf("New reward pack **%s** successfully created.", editor.Label())); nerr != nil {
		return AskSilent, nerr
	}
	return AskSilent, nil
}

func (p *PackCreator) Display(tr Translator) string {
	return tr.Sprintf("Click on **Respond** to create a new reward pack")
}

// RewardPackField edits one reward pack through a menu loop: add rewards,
// remove them, delete the whole pack, finish to commit. Its value is the
// pack itself from the moment it is created, so an unfinished pack never
// blocks the form.
type RewardPackField struct {
	Base

	pack *RewardPack
}

func newPackField(name, label string, pack *RewardPack) *RewardPackField {
	r := &RewardPackField{Base: Base{name: name, label: label}, pack: pack}
	r.value = pack
	return r
}

// Pack returns the pack under edit.
func (r *RewardPackField) Pack() *RewardPack { return r.pack }

func (r *RewardPackField) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	for {
		choices := []*Choice{NewChoice(f.tr.Sprintf("Add a reward"), menuAdd)}
		if len(r.pack.Rewards) > 0 {
			choices = append(choices, NewChoice(f.tr.Sprintf("Remove a reward"), menuRemove))
		}
		choices = append(choices,
			NewChoice(f.tr.Sprintf("Delete the pack"), menuDelete),
			NewChoice(f.tr.Sprintf("Finish"), menuFinish),
		)

		action, err := pickOne(ctx, f, PromptRequest{
			Kind:        PromptSelect,
			Title:       r.Display(f.tr),
			Label:       r.label,
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
			if err := r.addReward(ctx, f); err != nil {
				return AskRefresh, err
			}
		case menuRemove:
			if err := r.removeReward(ctx, f); err != nil {
				return AskRefresh, err
			}
		case menuDelete:
			deleted, err := r.deletePack(ctx, f)
			if err != nil {
				return AskRefresh, err
			}
			if deleted {
				return AskSilent, nil
			}
		case menuFinish:
			if _, err := f.setValue(ctx, r, r.pack); err != nil {
				return AskRefresh, err
			}
			return AskRefresh, nil
		}
	}
}

// rewardSources collects the pickable stuff per reward kind. Items and
// currencies share one list.
func rewardSources(ctx context.Context, f *Form) (map[RewardKind][]*Choice, error) {
	out := map[RewardKind][]*Choice{}
	if f.lookup == nil {
		return out, nil
	}
	items, err := f.lookup.Items(ctx)
	if err != nil {
		return nil, err
	}
	currencies, err := f.lookup.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	out[RewardItem] = append(append([]*Choice{}, items...), currencies...)
	if out[RewardRole], err = f.lookup.Roles(ctx); err != nil {
		return nil, err
	}
	if out[RewardStat], err = f.lookup.Stats(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RewardPackField) addReward(ctx context.Context, f *Form) error {
	sources, err := rewardSources(ctx, f)
	if err != nil {
		return f.notify(ctx, NoticeError, err.Error())
	}
	if len(sources[RewardItem])+len(sources[RewardRole])+len(sources[RewardStat]) == 0 {
		return f.notify(ctx, NoticeInfo, f.tr.Sprintf("There are no rewards available to add (role, item or stat)."))
	}

	kindLabels := []struct {
		kind  RewardKind
		label string
	}{
		{RewardItem, f.tr.Sprintf("Item (or currency)")},
		{RewardRole, f.tr.Sprintf("RP Role")},
		{RewardStat, f.tr.Sprintf("Stat")},
	}
	var kinds []*Choice
	for _, k := range kindLabels {
		if len(sources[k.kind]) > 0 {
			kinds = append(kinds, NewChoice(k.label, k.kind))
		}
	}
	kindChoice, err := pickOne(ctx, f, PromptRequest{
		Kind:        PromptSelect,
		Title:       r.Display(f.tr),
		Label:       r.label,
		Placeholder: f.tr.Sprintf("What type of reward do you want to add?"),
		Options:     promptOptions(kinds),
		MinValues:   1,
		MaxValues:   1,
	}, kinds)
	if err != nil {
		return err
	}
	if kindChoice == nil {
		return nil
	}
	kind := kindChoice.Value.(RewardKind)

	stuffPlaceholders := map[RewardKind]string{
		RewardItem: f.tr.Sprintf("Pick an item in the list."),
		RewardRole: f.tr.Sprintf("Pick a role in the list."),
		RewardStat: f.tr.Sprintf("Pick a stat in the list."),
	}
	stuff := sources[kind]
	set, err := NewOptionSet(stuff)
	if err != nil {
		return err
	}
	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptSelect,
		Title:       r.Display(f.tr),
		Label:       r.label,
		Placeholder: stuffPlaceholders[kind],
		Options:     promptOptions(stuff),
		MinValues:   1,
		MaxValues:   len(stuff),
	})
	if err != nil {
		return err
	}
	if reply.Dismissed || len(reply.Tokens) == 0 {
		return nil
	}

	var rewards []*Reward
	for _, tok := range reply.Tokens {
		if c, ok := set.Resolve(tok); ok {
			rewards = append(rewards, &Reward{Kind: kind, Stuff: c.Value, Label: c.Label, Emoji: c.Emoji})
		}
	}
	if len(rewards) == 0 {
		return nil
	}

	if kind == RewardRole {
		r.pack.AddRewards(rewards...)
		return nil
	}

	if err := r.pickExtra(ctx, f, kind, rewards); err != nil {
		return err
	}
	ok, err := r.askAmount(ctx, f, rewards)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	r.pack.AddRewards(rewards...)
	return nil
}

// pickExtra asks how the amount applies. Dismissing keeps the default
// (quantity for items, maximum for stats).
func (r *RewardPackField) pickExtra(ctx context.Context, f *Form, kind RewardKind, rewards []*Reward) error {
	var extras []*Choice
	switch kind {
	case RewardItem:
		extras = []*Choice{
			NewChoice(f.tr.Sprintf("Quantity"), menuToken("quantity")),
			NewChoice(f.tr.Sprintf("Durability"), menuToken("durability")),
		}
	case RewardStat:
		extras = []*Choice{
			NewChoice(f.tr.Sprintf("Maximum"), menuToken("maximum")),
			NewChoice(f.tr.Sprintf("Regeneration"), menuToken("regeneration")),
		}
	default:
		return nil
	}

	c, err := pickOne(ctx, f, PromptRequest{
		Kind:        PromptSelect,
		Title:       r.Display(f.tr),
		Label:       r.label,
		Placeholder: f.tr.Sprintf("What do you want to add?"),
		Options:     promptOptions(extras),
		MinValues:   1,
		MaxValues:   1,
	}, extras)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	switch c.Value {
	case menuToken("durability"):
		for _, rw := range rewards {
			rw.Durability = true
		}
	case menuToken("regeneration"):
		for _, rw := range rewards {
			rw.Regeneration = true
		}
	}
	return nil
}

// askAmount collects the min/max amount pair. It reports false when the
// exchange was abandoned or rejected.
func (r *RewardPackField) askAmount(ctx context.Context, f *Form, rewards []*Reward) (bool, error) {
	minReply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptText,
		Title:       f.tr.Sprintf("Reward amount"),
		Label:       f.tr.Sprintf("Minimum amount"),
		Placeholder: f.tr.Sprintf("Minimum amount, can be negative."),
		MinLength:   1,
	})
	if err != nil {
		return false, err
	}
	if minReply.Dismissed {
		return false, nil
	}
	rawMin := strings.TrimSpace(strings.ReplaceAll(minReply.Text, ",", "."))
	if verr := IsNumber()(rawMin); verr != nil {
		return false, f.notify(ctx, NoticeError, renderError(f.tr, verr))
	}

	maxReply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptText,
		Title:       f.tr.Sprintf("Reward amount"),
		Label:       f.tr.Sprintf("Maximum amount"),
		Placeholder: f.tr.Sprintf("Maximum amount, can be negative. Keep empty for fix amount."),
	})
	if err != nil {
		return false, err
	}
	rawMax := ""
	if !maxReply.Dismissed {
		rawMax = strings.TrimSpace(strings.ReplaceAll(maxReply.Text, ",", "."))
	}
	if rawMax != "" {
		if verr := IsNumber()(rawMax); verr != nil {
			return false, f.notify(ctx, NoticeError, renderError(f.tr, verr))
		}
	}

	minVal, _ := strconv.ParseFloat(rawMin, 64)
	var maxVal *float64
	if rawMax != "" {
		mv, _ := strconv.ParseFloat(rawMax, 64)
		if minVal > mv {
			return false, f.notify(ctx, NoticeError, f.tr.Sprintf("Minimum amount can't be greater than maximum amount."))
		}
		maxVal = &mv
	}

	minAmount := int64(minVal)
	for _, rw := range rewards {
		rw.MinAmount = &minAmount
		if maxVal != nil {
			maxAmount := int64(*maxVal)
			rw.MaxAmount = &maxAmount
		}
	}

	var nerr error
	if maxVal != nil {
		nerr = f.notify(ctx, NoticeSuccess, f.tr.Sprintf("Reward amount set to %v/%v.", trimFloat(minVal), trimFloat(*maxVal)))
	} else {
		nerr = f.notify(ctx, NoticeSuccess, f.tr.Sprintf("Reward amount set to %v.", trimFloat(minVal)))
	}
	return true, nerr
}

func (r *RewardPackField) removeReward(ctx context.Context, f *Form) error {
	rewards := r.pack.Rewards
	choices := make([]*Choice, len(rewards))
	lines := make([]string, len(rewards))
	for i, rw := range rewards {
		choices[i] = NewChoice(rw.Display(f.tr), i)
		lines[i] = rw.Display(f.tr)
	}
	set, err := NewOptionSet(choices)
	if err != nil {
		return err
	}

	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptSelect,
		Title:       f.tr.Sprintf("Select the rewards you want to remove in the list below.") + "\n\n" + strings.Join(lines, "\n"),
		Label:       r.label,
		Placeholder: f.tr.Sprintf("Select rewards to remove in the list"),
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

	var drop []*Reward
	for _, tok := range reply.Tokens {
		if c, ok := set.Resolve(tok); ok {
			if idx, ok := c.Value.(int); ok && idx < len(rewards) {
				drop = append(drop, rewards[idx])
			}
		}
	}
	r.pack.RemoveRewards(drop...)
	return nil
}

// deletePack confirms and removes this pack's field from the form. The
// first remaining field becomes current.
func (r *RewardPackField) deletePack(ctx context.Context, f *Form) (bool, error) {
	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:  PromptConfirm,
		Title: r.Display(f.tr) + "\n\n" + f.tr.Sprintf("__**Are you sure you want to delete this pack?**__"),
		Label: r.label,
	})
	if err != nil {
		return false, err
	}
	if !reply.Confirmed() {
		return false, nil
	}

	f.removeField(r.name)
	if fields := f.Fields(); len(fields) > 0 {
		f.makeCurrent(fields[0])
	}
	return true, f.notify(ctx, NoticeInfo, f.tr.Sprintf("The pack has been deleted."))
}

func (r *RewardPackField) Display(tr Translator) string {
	if len(r.pack.Rewards) == 0 {
		return tr.Sprintf("*No rewards*")
	}
	lines := make([]string, len(r.pack.Rewards))
	for i, rw := range r.pack.Rewards {
		lines[i] = rw.Display(tr)
	}
	return strings.Join(lines, "\n")
}
