package model

// All lists every persisted model in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Vineyard{},
		&Wine{},
		&FoodPairing{},
		&User{},
		&Rating{},
		&CellarEntry{},
		&SearchPrompt{},
		&AIResponse{},
	}
}
