// Package emoji validates and parses the emoji values form fields accept:
// plain unicode emoji, :shortcode: aliases, and custom guild emoji
// references of the form <:name:id> or <a:name:id>.
package emoji

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/forPelevin/gomoji"
)

// customRE matches custom guild emoji references. Angle brackets and the
// leading colon are optional, matching what chat clients paste.
var customRE = regexp.MustCompile(`^<?(a)?:?([A-Za-z0-9_~]+):([0-9]{13,20})>?$`)

// shortcodeRE matches :alias: shortcodes inside a string.
var shortcodeRE = regexp.MustCompile(`:([-+\w]+):`)

// Emoji is a parsed emoji value. Custom emoji carry an ID; unicode emoji
// only a name (the character itself).
type Emoji struct {
	Name     string `json:"name"`
	ID       int64  `json:"id,omitempty"`
	Animated bool   `json:"animated,omitempty"`
}

// Custom reports whether the emoji is a custom guild emoji.
func (e Emoji) Custom() bool { return e.ID != 0 }

// String renders the emoji the way chat messages carry it.
func (e Emoji) String() string {
	if !e.Custom() {
		return e.Name
	}
	if e.Animated {
		return fmt.Sprintf("<a:%s:%d>", e.Name, e.ID)
	}
	return fmt.Sprintf("<:%s:%d>", e.Name, e.ID)
}

var (
	aliasOnce  sync.Once
	aliasIndex map[string]string
)

// aliases maps shortcode names to their unicode character. Keys come from
// the emoji slugs, registered in both hyphenated and underscored form.
func aliases() map[string]string {
	aliasOnce.Do(func() {
		all := gomoji.AllEmojis()
		aliasIndex = make(map[string]string, len(all)*2)
		for _, e := range all {
			slug := strings.ToLower(e.Slug)
			aliasIndex[slug] = e.Character
			aliasIndex[strings.ReplaceAll(slug, "-", "_")] = e.Character
		}
	})
	return aliasIndex
}

// Encode replaces known :shortcode: aliases in s with their unicode
// character. Unknown shortcodes are left as-is.
func Encode(s string) string {
	return shortcodeRE.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.ToLower(strings.Trim(m, ":"))
		if ch, ok := aliases()[name]; ok {
			return ch
		}
		return m
	})
}

// Valid reports whether s holds an emoji: a unicode emoji anywhere in the
// string (after shortcode expansion), or a custom emoji reference.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	if gomoji.ContainsEmoji(Encode(s)) {
		return true
	}
	return customRE.MatchString(s)
}

// Parse extracts the first emoji from s. It reports false when s holds no
// emoji at all.
func Parse(s string) (Emoji, bool) {
	if s == "" {
		return Emoji{}, false
	}
	if found := gomoji.FindAll(Encode(s)); len(found) > 0 {
		return Emoji{Name: found[0].Character}, true
	}
	m := customRE.FindStringSubmatch(s)
	if m == nil {
		return Emoji{}, false
	}
	id, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Emoji{}, false
	}
	return Emoji{Name: m[2], ID: id, Animated: m[1] == "a"}, true
}
