// Package i18n renders the engine's user-facing strings per locale. It
// wraps an x/text message printer so format strings double as catalog
// keys: untranslated strings fall back to English as written.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// supported lists the locales with catalog entries. English is the
// fallback and must stay first.
var supported = []language.Tag{
	language.English,
	language.French,
}

var matcher = language.NewMatcher(supported)

// Printer renders strings for one locale. It satisfies the form engine's
// Translator interface.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New builds a printer for the given tag.
func New(tag language.Tag) *Printer {
	return &Printer{tag: tag, p: message.NewPrinter(tag)}
}

// ForLocale builds a printer for a BCP 47 locale string like "fr" or
// "en-US", snapped to the nearest supported locale. Unknown or empty
// locales get English.
func ForLocale(locale string) *Printer {
	if locale == "" {
		return New(language.English)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return New(language.English)
	}
	matched, _, _ := matcher.Match(tag)
	return New(matched)
}

// Locale returns the printer's locale tag.
func (p *Printer) Locale() language.Tag { return p.tag }

// Sprintf formats the message keyed by format in the printer's locale.
func (p *Printer) Sprintf(format string, args ...any) string {
	return p.p.Sprintf(format, args...)
}
