// Package feed threads pagination state through successive aggregator
// calls so callers can page through a merged multi-provider feed.
package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/johnrirwin/newsfeed/internal/articles"
	"github.com/johnrirwin/newsfeed/internal/cache"
	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
)

// DefaultCacheTTL is how long a cached page stays fresh.
const DefaultCacheTTL = 5 * time.Minute

// ErrNoMorePages is returned by Next once every requested provider is
// exhausted.
var ErrNoMorePages = errors.New("feed: no more pages")

// Fetcher is the aggregator surface a session needs.
type Fetcher interface {
	InitialState() models.PaginationState
	FetchArticles(ctx context.Context, filters models.SearchFilters, state models.PaginationState) models.AggregatedResult
	FetchPersonalizedFeed(ctx context.Context, prefs models.UserPreferences, hints models.PageHints, state models.PaginationState) models.AggregatedResult
}

type kind string

const (
	kindSearch       kind = "search"
	kindPersonalized kind = "personalized"
)

type Option func(*Session)

// WithCache serves pages from c when the same query and cursor were fetched
// within ttl. A ttl of zero uses DefaultCacheTTL.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Session) {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cache = c
		s.ttl = ttl
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is one "load more" sequence over a fixed query. It is not safe
// for concurrent use; pages must be requested one after another.
type Session struct {
	fetcher Fetcher
	kind    kind
	filters models.SearchFilters
	prefs   models.UserPreferences
	hints   models.PageHints

	cache  cache.Cache
	ttl    time.Duration
	logger *logging.Logger

	state models.PaginationState
	pages []models.AggregatedResult
	done  bool
}

func NewSearchSession(f Fetcher, filters models.SearchFilters, opts ...Option) *Session {
	filters.Page = 0
	return newSession(f, kindSearch, opts, func(s *Session) {
		s.filters = filters
	})
}

func NewPersonalizedSession(f Fetcher, prefs models.UserPreferences, hints models.PageHints, opts ...Option) *Session {
	return newSession(f, kindPersonalized, opts, func(s *Session) {
		s.prefs = prefs
		s.hints = hints
	})
}

func newSession(f Fetcher, k kind, opts []Option, init func(*Session)) *Session {
	s := &Session{
		fetcher: f,
		kind:    k,
		logger:  logging.New(logging.LevelError),
		state:   f.InitialState(),
	}
	init(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next fetches the following page and advances the session cursor.
func (s *Session) Next(ctx context.Context) (models.AggregatedResult, error) {
	if s.done {
		return models.AggregatedResult{}, ErrNoMorePages
	}
	if err := ctx.Err(); err != nil {
		return models.AggregatedResult{}, err
	}

	number := len(s.pages) + 1
	key := s.cacheKey()

	result, hit := s.fromCache(ctx, key)
	if !hit {
		result = s.fetch(ctx, number)
		if err := ctx.Err(); err != nil {
			// an abandoned call keeps the previous cursor
			return models.AggregatedResult{}, err
		}
		s.toCache(ctx, key, result)
	}

	s.pages = append(s.pages, result)
	s.state = result.PaginationState
	s.done = !result.HasNextPage
	return result, nil
}

func (s *Session) fetch(ctx context.Context, number int) models.AggregatedResult {
	switch s.kind {
	case kindPersonalized:
		hints := s.hints
		hints.Page = number
		return s.fetcher.FetchPersonalizedFeed(ctx, s.prefs, hints, s.state)
	default:
		filters := s.filters
		filters.Page = number
		return s.fetcher.FetchArticles(ctx, filters, s.state)
	}
}

// HasMore reports whether Next may return another page.
func (s *Session) HasMore() bool {
	return !s.done
}

// State returns the cursor the next call will use.
func (s *Session) State() models.PaginationState {
	return s.state.Clone()
}

func (s *Session) Pages() []models.AggregatedResult {
	return append([]models.AggregatedResult{}, s.pages...)
}

// Items flattens every loaded page, dropping articles already seen on an
// earlier page.
func (s *Session) Items() []models.Article {
	all := make([]models.Article, 0)
	for _, p := range s.pages {
		all = append(all, p.Items...)
	}
	return articles.Deduplicate(all)
}

type cacheIdentity struct {
	Kind        kind                    `json:"kind"`
	Filters     *models.SearchFilters   `json:"filters,omitempty"`
	Preferences *models.UserPreferences `json:"preferences,omitempty"`
	Hints       *models.PageHints       `json:"hints,omitempty"`
	State       models.PaginationState  `json:"state"`
}

func (s *Session) cacheKey() string {
	id := cacheIdentity{Kind: s.kind, State: s.state}
	if s.kind == kindPersonalized {
		id.Preferences = &s.prefs
		id.Hints = &s.hints
	} else {
		id.Filters = &s.filters
	}

	// encoding/json sorts map keys, so equal states give equal keys
	data, err := json.Marshal(id)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return "feed:" + hex.EncodeToString(sum[:])
}

func (s *Session) fromCache(ctx context.Context, key string) (models.AggregatedResult, bool) {
	if s.cache == nil || key == "" {
		return models.AggregatedResult{}, false
	}
	result, ok := cache.GetJSON[models.AggregatedResult](ctx, s.cache, key)
	if ok {
		s.logger.Debug("Serving feed page from cache", logging.WithField("key", key))
	}
	return result, ok
}

func (s *Session) toCache(ctx context.Context, key string, result models.AggregatedResult) {
	if s.cache == nil || key == "" {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, result, s.ttl); err != nil {
		s.logger.Warn("Failed to cache feed page", logging.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}))
	}
}
