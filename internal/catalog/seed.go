package catalog

// Seed builds a catalog with demo data for local runs and tests, so no
// catalog file is required.
func Seed() *Catalog {
	c := New()

	// Errors are impossible here: the literals below carry unique ids.
	_ = c.Add(KindCurrency,
		Entry{ID: "gold", Name: "Gold", Emoji: "🪙", Description: "The cluster's main coin"},
		Entry{ID: "gems", Name: "Gems", Emoji: "💎", Description: "Premium currency"},
	)
	_ = c.Add(KindItem,
		Entry{ID: "iron-sword", Name: "Iron Sword", Emoji: "🗡️"},
		Entry{ID: "healing-potion", Name: "Healing Potion", Emoji: "🧪", Description: "Restores 50 HP"},
		Entry{ID: "leather-satchel", Name: "Leather Satchel", Emoji: "🎒"},
	)
	_ = c.Add(KindRole,
		Entry{ID: "adventurer", Name: "Adventurer"},
		Entry{ID: "merchant", Name: "Merchant"},
		Entry{ID: "guild-master", Name: "Guild Master"},
	)
	_ = c.Add(KindStat,
		Entry{ID: "strength", Name: "Strength", Emoji: "💪"},
		Entry{ID: "agility", Name: "Agility"},
		Entry{ID: "mana", Name: "Mana", Emoji: "🔮"},
	)
	return c
}
