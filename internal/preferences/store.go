// Package preferences persists the user preferences that drive the
// personalized feed. The aggregator only ever receives values read here.
package preferences

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/johnrirwin/newsfeed/internal/categories"
	"github.com/johnrirwin/newsfeed/internal/models"
)

// Store reads and writes the preferences of one profile. Read returns the
// defaults when nothing has been saved yet.
type Store interface {
	Read(ctx context.Context) (models.UserPreferences, error)
	Write(ctx context.Context, prefs models.UserPreferences) error
}

// DefaultProfile is used when no profile name is configured.
const DefaultProfile = "default"

// Normalize trims and de-duplicates every list. Categories are case folded.
// When known is non-empty, provider ids outside it are dropped.
func Normalize(prefs models.UserPreferences, known ...models.ProviderID) models.UserPreferences {
	out := models.DefaultPreferences()

	for _, id := range prefs.PreferredSources {
		id = models.ProviderID(strings.TrimSpace(string(id)))
		if id == "" || lo.Contains(out.PreferredSources, id) {
			continue
		}
		if len(known) > 0 && !lo.Contains(known, id) {
			continue
		}
		out.PreferredSources = append(out.PreferredSources, id)
	}

	for _, c := range prefs.PreferredCategories {
		c = categories.Normalize(c)
		if c == "" || lo.Contains(out.PreferredCategories, c) {
			continue
		}
		out.PreferredCategories = append(out.PreferredCategories, c)
	}

	fold := cases.Fold()
	seen := make(map[string]bool)
	for _, a := range prefs.PreferredAuthors {
		a = strings.Join(strings.Fields(a), " ")
		key := fold.String(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.PreferredAuthors = append(out.PreferredAuthors, a)
	}

	return out
}

// MemoryStore keeps preferences for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs models.UserPreferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: models.DefaultPreferences()}
}

func (s *MemoryStore) Read(_ context.Context) (models.UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.prefs), nil
}

func (s *MemoryStore) Write(_ context.Context, prefs models.UserPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = Normalize(prefs)
	return nil
}

func clone(p models.UserPreferences) models.UserPreferences {
	return models.UserPreferences{
		PreferredSources:    append([]models.ProviderID{}, p.PreferredSources...),
		PreferredCategories: append([]string{}, p.PreferredCategories...),
		PreferredAuthors:    append([]string{}, p.PreferredAuthors...),
	}
}

var _ Store = (*MemoryStore)(nil)
