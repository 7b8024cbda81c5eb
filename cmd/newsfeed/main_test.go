package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/johnrirwin/newsfeed/internal/models"
)

// run executes the CLI with keyless providers and a private preferences
// file, so no command reaches the network.
func run(t *testing.T, prefsPath string, args ...string) string {
	t.Helper()
	for _, key := range []string{"NEWSAPI_KEY", "GNEWS_KEY", "NYTIMES_KEY", "PREFERENCES_BACKEND", "PREFERENCES_PATH", "CACHE_BACKEND", "NEWSFEED_PROVIDERS_CONFIG"} {
		t.Setenv(key, "")
	}

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	base := []string{
		"--env-file", "",
		"--preferences-backend", "file",
		"--preferences-path", prefsPath,
		"--cache-backend", "none",
		"--log-level", "error",
	}
	cmd.SetArgs(append(args, base...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("newsfeed %v: %v", args, err)
	}
	return out.String()
}

func TestProvidersCommand(t *testing.T) {
	out := run(t, filepath.Join(t.TempDir(), "p.json"), "providers")

	for _, want := range []string{"newsapi", "NewsAPI", "gnews", "nytimes", "NY Times"} {
		if !strings.Contains(out, want) {
			t.Errorf("providers output missing %q:\n%s", want, out)
		}
	}
}

func TestPrefsSetAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")

	run(t, path, "prefs", "set", "--source", "nytimes,bogus", "--category", "Business", "--author", "Jane Doe")
	run(t, path, "prefs", "set", "--author", "John Roe")

	out := run(t, path, "prefs", "show", "--json")
	var prefs models.UserPreferences
	if err := json.Unmarshal([]byte(out), &prefs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}

	if len(prefs.PreferredSources) != 1 || prefs.PreferredSources[0] != models.ProviderNYTimes {
		t.Errorf("sources = %v, want [nytimes]", prefs.PreferredSources)
	}
	if len(prefs.PreferredCategories) != 1 || prefs.PreferredCategories[0] != "business" {
		t.Errorf("categories = %v, want untouched [business]", prefs.PreferredCategories)
	}
	if len(prefs.PreferredAuthors) != 1 || prefs.PreferredAuthors[0] != "John Roe" {
		t.Errorf("authors = %v, want replaced [John Roe]", prefs.PreferredAuthors)
	}

	run(t, path, "prefs", "set", "--reset")
	if out := run(t, path, "prefs", "show"); !strings.Contains(out, "(any)") {
		t.Errorf("reset preferences should show (any):\n%s", out)
	}
}

func TestSearchWithoutKeys(t *testing.T) {
	out := run(t, filepath.Join(t.TempDir(), "p.json"), "search", "golang", "--pages", "3")

	if !strings.Contains(out, "No articles found.") {
		t.Errorf("search output = %q", out)
	}
	if strings.Count(out, "Page ") != 1 {
		t.Errorf("exhausted providers should stop after one page:\n%s", out)
	}
}

func TestWritePage(t *testing.T) {
	var buf bytes.Buffer
	writePage(&buf, models.AggregatedResult{
		Page:        2,
		HasNextPage: true,
		Items: []models.Article{
			{
				Title:       "Headline",
				Author:      "Jane Doe",
				Source:      models.ArticleSource{Name: "Wire"},
				Category:    "business",
				PublishedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
				URL:         "https://example.com/a",
			},
			{Title: "Undated", Source: models.ArticleSource{Name: "Blog"}, URL: "https://example.com/b"},
		},
	})

	out := buf.String()
	for _, want := range []string{
		"Page 2 (2 articles, more available)",
		"2024-03-01 09:30 | Jane Doe, Wire | business",
		"unknown date | Blog",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
