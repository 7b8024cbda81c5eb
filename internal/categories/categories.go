// Package categories translates the internal category vocabulary into each
// provider's own topic or section names.
package categories

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	General       = "general"
	Business      = "business"
	Technology    = "technology"
	Science       = "science"
	Health        = "health"
	Sports        = "sports"
	Entertainment = "entertainment"
)

var internal = []string{General, Business, Technology, Science, Health, Sports, Entertainment}

// Vocabulary is one provider's translation table plus the value used for
// anything it does not know.
type Vocabulary struct {
	Name     string
	Default  string
	mappings map[string]string
}

func NewVocabulary(name, fallback string, mappings map[string]string) Vocabulary {
	normalized := make(map[string]string, len(mappings))
	for k, v := range mappings {
		normalized[Normalize(k)] = v
	}
	return Vocabulary{Name: name, Default: fallback, mappings: normalized}
}

// Translate never returns an empty string.
func (v Vocabulary) Translate(category string) string {
	if mapped, ok := v.mappings[Normalize(category)]; ok && mapped != "" {
		return mapped
	}
	return v.Default
}

var (
	GNews = NewVocabulary("gnews", "world", map[string]string{
		General:       "world",
		Business:      "business",
		Technology:    "technology",
		Science:       "science",
		Health:        "health",
		Sports:        "sports",
		Entertainment: "entertainment",
	})

	NYTimes = NewVocabulary("nytimes", "U.S.", map[string]string{
		General:       "U.S.",
		Business:      "Business",
		Technology:    "Technology",
		Science:       "Science",
		Health:        "Health",
		Sports:        "Sports",
		Entertainment: "Arts",
	})

	NewsAPI = NewVocabulary("newsapi", General, map[string]string{
		General:       General,
		Business:      Business,
		Technology:    Technology,
		Science:       Science,
		Health:        Health,
		Sports:        Sports,
		Entertainment: Entertainment,
	})
)

func ToGNewsTopic(category string) string {
	return GNews.Translate(category)
}

func ToNYTimesSection(category string) string {
	return NYTimes.Translate(category)
}

func ToNewsAPICategory(category string) string {
	return NewsAPI.Translate(category)
}

// Normalize folds case and composes the value so lookups ignore how the
// caller spelled it.
func Normalize(category string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(category)))
}

func IsKnown(category string) bool {
	c := Normalize(category)
	for _, known := range internal {
		if known == c {
			return true
		}
	}
	return false
}

// All returns the internal vocabulary in display order.
func All() []string {
	out := make([]string, len(internal))
	copy(out, internal)
	return out
}
