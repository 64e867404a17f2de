package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// French catalog for the engine-owned strings. Field labels and custom
// descriptions come from form definitions and are rendered as given.
var french = map[string]string{
	"The value is required.":                          "La valeur est requise.",
	"The value must be at least %d characters long.":  "La valeur doit contenir au moins %d caractères.",
	"The value must be at most %d characters long.":   "La valeur doit contenir au plus %d caractères.",
	"The value must be a number.":                     "La valeur doit être un nombre.",
	"The value must be an integer.":                   "La valeur doit être un nombre entier.",
	"The value must be a valid emoji.":                "La valeur doit être un émoji valide.",
	"The value must be at least %v.":                  "La valeur doit être au moins %v.",
	"The value must be at most %v.":                   "La valeur doit être au plus %v.",
	"The value %v is forbidden.":                      "La valeur %v est interdite.",
	"*Unanswered*":                                    "*Sans réponse*",
	"Infinite":                                        "Infini",
	"Successfully set value to: %s":                   "Valeur définie avec succès : %s",
	"Select a value":                                  "Sélectionnez une valeur",
	"Enter a value":                                   "Entrez une valeur",
	"Please enter an emoji":                           "Veuillez entrer un émoji",
	"No choices available.":                           "Aucun choix disponible.",
	"Too many choices":                                "Trop de choix",
	"Select between %d and %d values.":                "Sélectionnez entre %d et %d valeurs.",
	"The field **%s** has been updated.":              "Le champ **%s** a été mis à jour.",
	"The field **%s** has not been updated.":          "Le champ **%s** n'a pas été mis à jour.",
	"What do you want to do?":                         "Que voulez-vous faire ?",
	"Finish":                                          "Terminer",
	"Please fill out the form below.\nYou can use the buttons below to navigate the form.\nA title with `*` indicates a required field.": "Veuillez remplir le formulaire ci-dessous.\nVous pouvez utiliser les boutons ci-dessous pour naviguer dans le formulaire.\nUn titre avec `*` indique un champ requis.",
}

func init() {
	for key, msg := range french {
		if err := message.SetString(language.French, key, msg); err != nil {
			panic(err)
		}
	}
}
