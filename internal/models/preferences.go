package models

// UserPreferences drive the personalized feed. They are owned by the
// preference store; the aggregator only reads them.
type UserPreferences struct {
	PreferredSources    []ProviderID `json:"preferredSources"`
	PreferredCategories []string     `json:"preferredCategories"`
	PreferredAuthors    []string     `json:"preferredAuthors"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredSources:    []ProviderID{},
		PreferredCategories: []string{},
		PreferredAuthors:    []string{},
	}
}

// IsEmpty reports whether no preference of any kind is set.
func (p UserPreferences) IsEmpty() bool {
	return len(p.PreferredSources) == 0 && len(p.PreferredCategories) == 0 && len(p.PreferredAuthors) == 0
}
