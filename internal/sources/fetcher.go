package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/ratelimit"
)

// Adapter fetches one page from a single provider and normalizes it.
// Fetch never fails: every problem is logged and reported as an empty
// result with no further pages.
type Adapter interface {
	ID() models.ProviderID
	Name() string
	Fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) models.AdapterResult
}

var (
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrMissingAPIKey    = errors.New("api key not configured")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
	Language  string
}

func DefaultConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:   30 * time.Second,
		UserAgent: "NewsFeedAggregator/1.0",
		Language:  "en",
	}
}

// APIOptions carries the credential and endpoint of a keyed provider.
// An empty BaseURL selects the provider's public endpoint.
type APIOptions struct {
	APIKey  string
	BaseURL string
}

func (o APIOptions) baseURL(fallback string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return fallback
}

// httpSource is the transport shared by the JSON API adapters.
type httpSource struct {
	id      models.ProviderID
	name    string
	limiter *ratelimit.Limiter
	config  FetcherConfig
	client  *http.Client
	logger  *logging.Logger
}

func newHTTPSource(id models.ProviderID, name string, limiter *ratelimit.Limiter, config FetcherConfig, logger *logging.Logger) httpSource {
	if logger == nil {
		logger = logging.New(logging.LevelError)
	}
	defaults := DefaultConfig()
	if config.Language == "" {
		config.Language = defaults.Language
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	return httpSource{
		id:      id,
		name:    name,
		limiter: limiter,
		config:  config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

func (s *httpSource) ID() models.ProviderID {
	return s.id
}

func (s *httpSource) Name() string {
	return s.name
}

func (s *httpSource) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	u.RawQuery = params.Encode()

	if s.limiter != nil {
		if err := s.limiter.WaitContext(ctx, u.Host); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return fmt.Errorf("%s returned %w %d", s.name, ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", s.name, err)
	}
	return nil
}

// settle converts the outcome of an internal fetch into the adapter
// contract, logging whatever went wrong.
func (s *httpSource) settle(result models.AdapterResult, err error) models.AdapterResult {
	if err == nil {
		if result.Articles == nil {
			result.Articles = []models.Article{}
		}
		return result
	}

	if errors.Is(err, ErrMissingAPIKey) {
		s.logger.Warn("Provider API key not configured", logging.WithField("provider", string(s.id)))
	} else {
		s.logger.Warn("Failed to fetch from provider", logging.WithFields(map[string]interface{}{
			"provider": string(s.id),
			"error":    err.Error(),
		}))
	}
	return models.EmptyResult()
}

func clampPageSize(pageSize, limit int) int {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return min(pageSize, limit)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// parsePublished reads the RFC 3339 timestamps the providers send. An
// unparseable value yields the zero time, which sorts last.
func parsePublished(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02T15:04:05Z0700"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func articleCategory(filters models.SearchFilters, fallback string) string {
	if c := filters.PrimaryCategory(); c != "" {
		return c
	}
	if fallback != "" {
		return fallback
	}
	return "general"
}
