// Package policy decides whether an actor may open a form and whether an
// actor passes the access rules a finished form produced. Definitions carry
// a flat list of admitted role names; the access editor produces per-role
// allow and deny rules with deny taking precedence.
package policy

import (
	"fmt"

	"github.com/hearthbot/hearth/forms"
)

// Denial is the error produced when an actor fails an access check.
type Denial struct {
	Form  string
	Actor string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("actor %q may not open form %q", d.Actor, d.Form)
}

// Allowed reports whether roles satisfies a definition access list. An
// empty list admits everyone; otherwise holding any listed role admits.
func Allowed(access, roles []string) bool {
	if len(access) == 0 {
		return true
	}
	for _, want := range access {
		for _, have := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Check is Allowed as an error carrying the denied form and actor.
func Check(form, actor string, access, roles []string) error {
	if Allowed(access, roles) {
		return nil
	}
	return &Denial{Form: form, Actor: actor}
}

// Evaluate applies editor-built access rules to an actor's roles. A
// matching deny rule always denies. When allow rules exist one of them
// must match; a list with only deny rules admits anyone not denied. An
// empty list admits everyone.
func Evaluate(rules []forms.AccessRule, roles []string) bool {
	allowed, sawAllow := false, false
	for _, rule := range rules {
		match := holdsRole(roles, rule.Role)
		if !rule.Allow {
			if match {
				return false
			}
			continue
		}
		sawAllow = true
		if match {
			allowed = true
		}
	}
	if sawAllow {
		return allowed
	}
	return true
}

// holdsRole matches a rule's role value against held role names. Rule
// values come back from choice tokens, so non-strings are compared by
// their printed form.
func holdsRole(roles []string, role any) bool {
	want, ok := role.(string)
	if !ok {
		want = fmt.Sprint(role)
	}
	for _, have := range roles {
		if have == want {
			return true
		}
	}
	return false
}
