package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/ratelimit"
)

// FeedSource is an extra RSS provider declared in the providers file.
type FeedSource struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

// ProvidersConfig is the optional providers file. Endpoints overrides the
// base URL of a built-in provider, keyed by provider id.
type ProvidersConfig struct {
	Feeds     []FeedSource                 `json:"feeds" yaml:"feeds"`
	Endpoints map[models.ProviderID]string `json:"endpoints" yaml:"endpoints"`
}

// APIKeys holds the credentials of the built-in providers.
type APIKeys struct {
	NewsAPI string
	GNews   string
	NYTimes string
}

// LoadProvidersConfig reads a providers file. Files ending in .yaml or .yml
// are parsed as YAML, anything else as JSON.
func LoadProvidersConfig(configPath string) (*ProvidersConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read providers config: %w", err)
	}

	var config ProvidersConfig
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse providers config: %w", err)
	}

	for i, feed := range config.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return nil, fmt.Errorf("providers config: feed %d needs both name and url", i)
		}
	}

	return &config, nil
}

// FindProvidersConfig searches for a providers file in common locations and
// returns its absolute path, or "" when there is none.
func FindProvidersConfig() string {
	locations := []string{
		"providers.json",
		"providers.yaml",
		"providers.yml",
		"config/providers.json",
		"config/providers.yaml",
		"/app/providers.json",
	}

	if envPath := os.Getenv("NEWSFEED_PROVIDERS_CONFIG"); envPath != "" {
		locations = append([]string{envPath}, locations...)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			absPath, _ := filepath.Abs(loc)
			return absPath
		}
	}

	return ""
}

// BuiltinAdapters creates the NewsAPI, GNews and NY Times adapters in their
// canonical order. Providers without a key are still registered; they
// report empty results.
func BuiltinAdapters(keys APIKeys, config *ProvidersConfig, limiter *ratelimit.Limiter, fetcherConfig FetcherConfig, logger *logging.Logger) []Adapter {
	endpoint := func(id models.ProviderID) string {
		if config == nil {
			return ""
		}
		return config.Endpoints[id]
	}

	return []Adapter{
		NewNewsAPIAdapter(APIOptions{APIKey: keys.NewsAPI, BaseURL: endpoint(models.ProviderNewsAPI)}, limiter, fetcherConfig, logger),
		NewGNewsAdapter(APIOptions{APIKey: keys.GNews, BaseURL: endpoint(models.ProviderGNews)}, limiter, fetcherConfig, logger),
		NewNYTimesAdapter(APIOptions{APIKey: keys.NYTimes, BaseURL: endpoint(models.ProviderNYTimes)}, limiter, fetcherConfig, logger),
	}
}

// CreateAdaptersFromConfig creates an RSS adapter for every enabled feed.
func CreateAdaptersFromConfig(config *ProvidersConfig, limiter *ratelimit.Limiter, fetcherConfig FetcherConfig, logger *logging.Logger) []Adapter {
	if config == nil {
		return nil
	}

	adapters := make([]Adapter, 0, len(config.Feeds))
	for _, feed := range config.Feeds {
		if !feed.Enabled {
			continue
		}
		adapters = append(adapters, NewRSSAdapter(feed.Name, feed.URL, feed.Category, limiter, fetcherConfig, logger))
	}
	return adapters
}
