// Package articles holds the provider-independent helpers applied to
// normalized articles: identity, de-duplication, ordering and filtering.
package articles

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
	"golang.org/x/text/cases"

	"github.com/johnrirwin/newsfeed/internal/models"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/johnrirwin/newsfeed/articles"))

// GenerateID derives a stable identifier for an article from its provider
// and canonical URL.
func GenerateID(provider models.ProviderID, url string) string {
	return string(provider) + "-" + uuid.NewSHA1(idNamespace, []byte(url)).String()
}

// Deduplicate keeps the first article seen for each canonical URL.
func Deduplicate(items []models.Article) []models.Article {
	if len(items) == 0 {
		return []models.Article{}
	}
	return lo.UniqBy(items, func(a models.Article) string {
		return a.URL
	})
}

// SortByDate returns a copy ordered newest first. Equal timestamps keep
// their input order.
func SortByDate(items []models.Article) []models.Article {
	sorted := slices.Clone(items)
	if sorted == nil {
		sorted = []models.Article{}
	}
	slices.SortStableFunc(sorted, func(a, b models.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return sorted
}

// FilterByAuthors keeps articles whose author and one of the preferred
// names contain each other, ignoring case. Articles without an author never
// match. An empty preference list returns the input unchanged.
func FilterByAuthors(items []models.Article, authors []string) []models.Article {
	fold := cases.Fold()
	wanted := lo.FilterMap(authors, func(a string, _ int) (string, bool) {
		a = strings.TrimSpace(a)
		return fold.String(a), a != ""
	})
	if len(wanted) == 0 {
		return items
	}

	return lo.Filter(items, func(a models.Article, _ int) bool {
		author := strings.TrimSpace(a.Author)
		if author == "" {
			return false
		}
		author = fold.String(author)
		return lo.ContainsBy(wanted, func(w string) bool {
			return strings.Contains(author, w) || strings.Contains(w, author)
		})
	})
}

// FilterByCategories keeps articles whose category is one of categories,
// ignoring case. An empty list returns the input unchanged.
func FilterByCategories(items []models.Article, categories []string) []models.Article {
	if len(categories) == 0 {
		return items
	}
	fold := cases.Fold()
	wanted := set.New(lo.Map(categories, func(c string, _ int) string {
		return fold.String(strings.TrimSpace(c))
	})...)

	return lo.Filter(items, func(a models.Article, _ int) bool {
		return wanted.Contains(fold.String(strings.TrimSpace(a.Category)))
	})
}

// FindByID returns the article with the given id from an already loaded set.
func FindByID(items []models.Article, id string) (models.Article, bool) {
	return lo.Find(items, func(a models.Article) bool {
		return a.ID == id
	})
}

// CleanText flattens an HTML fragment to plain text with collapsed
// whitespace. Plain text passes through unchanged apart from spacing.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// SourceSlug builds a source id from a display name: lower case with runs
// of whitespace replaced by a dash.
func SourceSlug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
