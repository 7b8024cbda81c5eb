package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/johnrirwin/newsfeed/internal/config"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/testutil"
)

const newsAPIPage = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {"source": {"name": "Wire"}, "author": "Jane Doe", "title": "Older", "url": "https://example.com/older", "publishedAt": "2024-03-01T08:00:00Z"},
    {"source": {"name": "Wire"}, "author": "John Roe", "title": "Newer", "url": "https://example.com/newer", "publishedAt": "2024-03-02T08:00:00Z"}
  ]
}`

func testConfig(t *testing.T, newsAPIURL string) *config.Config {
	t.Helper()

	providers := filepath.Join(t.TempDir(), "providers.json")
	body := fmt.Sprintf(`{"endpoints": {"newsapi": %q}}`, newsAPIURL)
	if err := os.WriteFile(providers, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	return &config.Config{
		APIKeys:     config.APIKeysConfig{NewsAPI: "test-key"},
		Feed:        config.FeedConfig{PageSize: 12, ProvidersConfig: providers},
		HTTP:        config.HTTPConfig{Timeout: 5 * time.Second},
		Cache:       config.CacheConfig{Backend: "memory", TTL: time.Minute},
		Preferences: config.PreferencesConfig{Backend: "memory", Profile: "default"},
		Logging:     config.LoggingConfig{Level: "error"},
	}
}

func newTestApp(t *testing.T, calls *atomic.Int32) *App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(newsAPIPage))
	}))
	t.Cleanup(srv.Close)

	a, err := NewWithLogger(testConfig(t, srv.URL), testutil.NullLogger())
	if err != nil {
		t.Fatalf("NewWithLogger() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_RegistersBuiltinProviders(t *testing.T) {
	var calls atomic.Int32
	a := newTestApp(t, &calls)

	ids := a.Registry.IDs()
	want := []models.ProviderID{models.ProviderNewsAPI, models.ProviderGNews, models.ProviderNYTimes}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestApp_SearchSession(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	a := newTestApp(t, &calls)

	s := a.SearchSession(models.SearchFilters{Keyword: "markets"})
	result, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	if len(result.Items) != 2 || result.Items[0].Title != "Newer" {
		t.Errorf("Items = %+v, want two articles newest first", result.Items)
	}
	if result.HasNextPage || s.HasMore() {
		t.Error("single page from the only keyed provider should end the session")
	}

	again := a.SearchSession(models.SearchFilters{Keyword: "markets"})
	if _, err := again.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1 with the result cache", calls.Load())
	}
}

func TestApp_PersonalizedSessionUsesStoredPreferences(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	a := newTestApp(t, &calls)

	if err := a.Preferences.Write(ctx, models.UserPreferences{PreferredAuthors: []string{"Doe"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	s, err := a.PersonalizedSession(ctx, models.PageHints{})
	if err != nil {
		t.Fatalf("PersonalizedSession() error = %v", err)
	}
	result, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Author != "Jane Doe" {
		t.Errorf("Items = %+v, want only the Doe article", result.Items)
	}
}

func TestNew_UnreachablePreferencesBackendFails(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Preferences.Backend = "redis"
	cfg.Cache.RedisAddr = "127.0.0.1:1"

	if _, err := NewWithLogger(cfg, testutil.NullLogger()); err == nil {
		t.Error("expected an error for an unreachable preferences backend")
	}
}
