package forms

import (
	"context"
	"strings"
)

// menuToken labels an editor menu action. Defined as its own string type so
// the wire tokens of menu options are the action names themselves.
type menuToken string

const (
	menuAdd    menuToken = "add"
	menuRemove menuToken = "remove"
	menuDelete menuToken = "delete"
	menuFinish menuToken = "finish"

	menuAllow menuToken = "True"
	menuDeny  menuToken = "False"
)

// AccessRule grants or denies one role access to the thing being created.
type AccessRule struct {
	Allow bool   `json:"allow"`
	Role  any    `json:"role"`
	Label string `json:"label"`
}

// Display renders the rule with its access marker.
func (r AccessRule) Display(tr Translator) string {
	if r.Allow {
		return tr.Sprintf("✅ %s", r.Label)
	}
	return tr.Sprintf("❌ %s", r.Label)
}

// AccessRules edits a list of access rules through a menu loop: add rules
// for roles that have none yet, remove existing ones, finish to commit. The
// value starts as an empty rule list, not nil, so an access field never
// blocks completion by itself.
type AccessRules struct {
	Base
}

// NewAccessRules builds an access rule editor field.
func NewAccessRules(name, label string, opts ...FieldOption) *AccessRules {
	a := &AccessRules{Base: newBase(name, label, opts)}
	if a.value == nil {
		a.value = []AccessRule{}
	}
	return a
}

func (a *AccessRules) rules() []AccessRule {
	r, _ := a.value.([]AccessRule)
	return r
}

func (a *AccessRules) setRules(f *Form, rules []AccessRule) {
	f.mu.Lock()
	a.value = rules
	f.mu.Unlock()
}

func (a *AccessRules) Ask(ctx context.Context, f *Form) (AskStatus, error) {
	var roles []*Choice
	if f.lookup != nil {
		var err error
		roles, err = f.lookup.Roles(ctx)
		if err != nil {
			if nerr := f.notify(ctx, NoticeError, err.Error()); nerr != nil {
				return AskRefresh, nerr
			}
			return AskRefresh, nil
		}
	}
	if len(roles) == 0 && len(a.rules()) == 0 {
		if nerr := f.notify(ctx, NoticeInfo, f.tr.Sprintf("There are no roles configured, so you can't create an access rule.")); nerr != nil {
			return AskRefresh, nerr
		}
		return AskRefresh, nil
	}

	for {
		choices := []*Choice{NewChoice(f.tr.Sprintf("Add a rule"), menuAdd)}
		if len(a.rules()) > 0 {
			choices = append(choices, NewChoice(f.tr.Sprintf("Remove a rule"), menuRemove))
		}
		choices = append(choices, NewChoice(f.tr.Sprintf("Finish"), menuFinish))

		action, err := pickOne(ctx, f, PromptRequest{
			Kind:        PromptSelect,
			Title:       a.content(f.tr),
			Label:       a.label,
			Placeholder: f.tr.Sprintf("What do you want to do?"),
			Options:     promptOptions(choices),
			MinValues:   1,
			MaxValues:   1,
		}, choices)
		if err != nil {
			return AskRefresh, err
		}
		if action == nil {
			// Dismissed: keep whatever was edited so far.
			return AskRefresh, nil
		}

		switch action.Value {
		case menuAdd:
			if err := a.addFlow(ctx, f, roles); err != nil {
				return AskRefresh, err
			}
		case menuRemove:
			if err := a.removeFlow(ctx, f); err != nil {
				return AskRefresh, err
			}
		case menuFinish:
			if _, err := f.setValue(ctx, a, a.rules()); err != nil {
				return AskRefresh, err
			}
			return AskRefresh, nil
		}
	}
}

// addFlow asks for an access type and the roles to apply it to, then
// appends the new rules.
func (a *AccessRules) addFlow(ctx context.Context, f *Form, roles []*Choice) error {
	rules := a.rules()
	avail := make([]*Choice, 0, len(roles))
	for _, role := range roles {
		covered := false
		for _, r := range rules {
			if looseEqual(r.Role, role.Value) {
				covered = true
				break
			}
		}
		if !covered {
			avail = append(avail, NewChoice(role.Label, role.Value))
		}
	}
	if len(avail) == 0 {
		return f.notify(ctx, NoticeInfo, f.tr.Sprintf("There are no roles with no access rule yet."))
	}

	kinds := []*Choice{
		NewChoice(f.tr.Sprintf("Have access"), menuAllow).WithEmoji("✅"),
		NewChoice(f.tr.Sprintf("Do not have access"), menuDeny).WithEmoji("❌"),
	}
	kind, err := pickOne(ctx, f, PromptRequest{
		Kind:        PromptSelect,
		Title:       a.content(f.tr),
		Label:       a.label,
		Placeholder: f.tr.Sprintf("Entities will have access to it or not?"),
		Options:     promptOptions(kinds),
		MinValues:   1,
		MaxValues:   1,
	}, kinds)
	if err != nil {
		return err
	}
	if kind == nil {
		return nil
	}
	allow := kind.Value == menuAllow

	set, err := NewOptionSet(avail)
	if err != nil {
		return err
	}
	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptSelect,
		Title:       a.content(f.tr),
		Label:       a.label,
		Placeholder: f.tr.Sprintf("Pick roles in the lists."),
		Options:     promptOptions(avail),
		MinValues:   1,
		MaxValues:   len(avail),
	})
	if err != nil {
		return err
	}
	if reply.Dismissed {
		return nil
	}

	for _, tok := range reply.Tokens {
		c, ok := set.Resolve(tok)
		if !ok {
			continue
		}
		rules = append(rules, AccessRule{Allow: allow, Role: c.Value, Label: c.Label})
	}
	a.setRules(f, rules)
	return nil
}

// removeFlow asks which rules to drop and removes them.
func (a *AccessRules) removeFlow(ctx context.Context, f *Form) error {
	rules := a.rules()
	choices := make([]*Choice, len(rules))
	for i, r := range rules {
		marker := "❌"
		if r.Allow {
			marker = "✅"
		}
		choices[i] = NewChoice(r.Label, i).WithEmoji(marker)
	}
	set, err := NewOptionSet(choices)
	if err != nil {
		return err
	}

	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = r.Display(f.tr)
	}
	reply, err := f.sess.Prompt(ctx, PromptRequest{
		Kind:        PromptSelect,
		Title:       f.tr.Sprintf("Select the rules you want to remove in the list below.") + "\n\n" + strings.Join(lines, "\n"),
		Label:       a.label,
		Placeholder: f.tr.Sprintf("Select rules to remove in the list"),
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
	kept := rules[:0:0]
	for i, r := range rules {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	a.setRules(f, kept)
	return nil
}

// content renders the editor's header with the current rule list.
func (a *AccessRules) content(tr Translator) string {
	rules := a.rules()
	var list string
	if len(rules) == 0 {
		list = tr.Sprintf("**No rules have been set yet.**")
	} else {
		lines := make([]string, len(rules))
		for i, r := range rules {
			lines[i] = r.Display(tr)
		}
		list = strings.Join(lines, "\n")
	}
	return tr.Sprintf("The access is a list of roles that can/cannot "+
		"use what you are creating.\n\n"+
		"%s\n\n"+
		"You can add roles to the access list by selecting "+
		"the **Add roles to the list** option, then selecting "+
		"the type of access, and the roles you want.", list)
}

func (a *AccessRules) Display(tr Translator) string {
	rules := a.rules()
	if len(rules) == 0 {
		return tr.Sprintf("*Unanswered*")
	}
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = r.Display(tr)
	}
	out := strings.Join(lines, "\n")
	if runes := []rune(out); len(runes) > 1048 {
		out = string(runes[:1045]) + "..."
	}
	return out
}

// pickOne runs a single-pick select prompt and resolves the reply to its
// choice. A dismissed prompt resolves to nil.
func pickOne(ctx context.Context, f *Form, req PromptRequest, choices []*Choice) (*Choice, error) {
	set, err := NewOptionSet(choices)
	if err != nil {
		return nil, err
	}
	reply, err := f.sess.Prompt(ctx, req)
	if err != nil {
		return nil, err
	}
	if reply.Dismissed || len(reply.Tokens) == 0 {
		return nil, nil
	}
	c, ok := set.Resolve(reply.Tokens[0])
	if !ok {
		return nil, nil
	}
	return c, nil
}
