package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestForLocale(t *testing.T) {
	assert.Equal(t, language.English, ForLocale("").Locale())
	assert.Equal(t, language.English, ForLocale("not a locale").Locale())
	assert.Equal(t, "La valeur est requise.", ForLocale("fr").Sprintf("The value is required."))
	assert.Equal(t, "La valeur est requise.", ForLocale("fr-BE").Sprintf("The value is required."))
}

func TestSprintfFallsBackToKey(t *testing.T) {
	p := New(language.English)
	assert.Equal(t, "The value is required.", p.Sprintf("The value is required."))
	assert.Equal(t, "no such key 7", p.Sprintf("no such key %d", 7))
}

func TestSprintfArgs(t *testing.T) {
	p := ForLocale("fr")
	assert.Equal(t, "La valeur doit contenir au moins 3 caractères.", p.Sprintf("The value must be at least %d characters long.", 3))
}
