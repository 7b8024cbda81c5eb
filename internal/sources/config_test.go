package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadProvidersConfig_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "providers.json", `{
	  "feeds": [
	    {"name": "Hacker News", "url": "https://hnrss.org/frontpage", "category": "technology", "enabled": true},
	    {"name": "Disabled", "url": "https://example.com/rss", "enabled": false}
	  ],
	  "endpoints": {"newsapi": "http://localhost:8080/v2"}
	}`)

	config, err := LoadProvidersConfig(path)
	if err != nil {
		t.Fatalf("LoadProvidersConfig() error = %v", err)
	}
	if len(config.Feeds) != 2 {
		t.Fatalf("got %d feeds, want 2", len(config.Feeds))
	}
	if config.Endpoints[models.ProviderNewsAPI] != "http://localhost:8080/v2" {
		t.Errorf("endpoint override = %q", config.Endpoints[models.ProviderNewsAPI])
	}

	adapters := CreateAdaptersFromConfig(config, nil, DefaultConfig(), testutil.NullLogger())
	if len(adapters) != 1 || adapters[0].ID() != "rss-hacker-news" {
		t.Errorf("CreateAdaptersFromConfig() = %v, want only the enabled feed", adapters)
	}
}

func TestLoadProvidersConfig_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "providers.yaml", `
feeds:
  - name: Go Blog
    url: https://go.dev/blog/feed.atom
    category: technology
    enabled: true
endpoints:
  gnews: http://localhost:9090
`)

	config, err := LoadProvidersConfig(path)
	if err != nil {
		t.Fatalf("LoadProvidersConfig() error = %v", err)
	}
	if len(config.Feeds) != 1 || config.Feeds[0].Name != "Go Blog" || !config.Feeds[0].Enabled {
		t.Errorf("Feeds = %+v", config.Feeds)
	}
	if config.Endpoints[models.ProviderGNews] != "http://localhost:9090" {
		t.Errorf("Endpoints = %v", config.Endpoints)
	}
}

func TestLoadProvidersConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadProvidersConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadProvidersConfig(writeFile(t, dir, "bad.json", `{"feeds": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := LoadProvidersConfig(writeFile(t, dir, "nameless.json", `{"feeds": [{"url": "https://x"}]}`)); err == nil {
		t.Error("expected error for feed without a name")
	}
}

func TestFindProvidersConfig_Env(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", "feeds: []\n")
	t.Setenv("NEWSFEED_PROVIDERS_CONFIG", path)

	if got := FindProvidersConfig(); got != path {
		t.Errorf("FindProvidersConfig() = %q, want %q", got, path)
	}
}

func TestBuiltinAdapters(t *testing.T) {
	config := &ProvidersConfig{Endpoints: map[models.ProviderID]string{models.ProviderNYTimes: "http://localhost/nyt"}}
	adapters := BuiltinAdapters(APIKeys{NewsAPI: "a"}, config, nil, DefaultConfig(), testutil.NullLogger())

	if len(adapters) != 3 {
		t.Fatalf("got %d adapters, want 3", len(adapters))
	}
	for i, info := range models.KnownProviders {
		if adapters[i].ID() != info.ID || adapters[i].Name() != info.Name {
			t.Errorf("adapter %d = %s/%s, want %s/%s", i, adapters[i].ID(), adapters[i].Name(), info.ID, info.Name)
		}
	}
	if nyt := adapters[2].(*NYTimesAdapter); nyt.baseURL != "http://localhost/nyt" {
		t.Errorf("NY Times base URL = %q", nyt.baseURL)
	}
	if news := adapters[0].(*NewsAPIAdapter); news.baseURL != newsAPIBaseURL {
		t.Errorf("NewsAPI base URL = %q", news.baseURL)
	}
}
