package aggregator

import (
	"context"

	"github.com/samber/lo"

	"github.com/johnrirwin/newsfeed/internal/articles"
	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/sources"
)

// Aggregator merges one page of articles from several providers while
// keeping an independent cursor per provider. It holds no per-session
// state: callers pass the pagination state in and get a new one back.
type Aggregator struct {
	registry        *sources.Registry
	logger          *logging.Logger
	defaultPageSize int
}

type Option func(*Aggregator)

// WithDefaultPageSize sets the page size used when filters carry none.
func WithDefaultPageSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.defaultPageSize = n
		}
	}
}

func New(registry *sources.Registry, logger *logging.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = logging.New(logging.LevelError)
	}
	a := &Aggregator{
		registry:        registry,
		logger:          logger,
		defaultPageSize: models.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// InitialState puts every registered provider at page 1.
func (a *Aggregator) InitialState() models.PaginationState {
	return models.InitialPaginationState(a.registry.IDs()...)
}

// Providers lists the registered providers.
func (a *Aggregator) Providers() []models.ProviderInfo {
	return a.registry.Info()
}

// FetchArticles fetches the next page from every requested provider that is
// not yet exhausted. Provider failures never surface as errors; they only
// reduce the merged page. A nil or empty state starts a new session.
func (a *Aggregator) FetchArticles(ctx context.Context, filters models.SearchFilters, state models.PaginationState) models.AggregatedResult {
	if len(state) == 0 {
		state = a.InitialState()
	}
	pageSize := a.pageSize(filters.PageSize)
	page := max(filters.Page, 1)

	targets := filters.Sources
	if len(targets) == 0 {
		targets = a.registry.IDs()
	}
	targets = lo.Uniq(targets)

	next := state.Clone()
	for _, id := range targets {
		if _, ok := next[id]; !ok {
			next[id] = models.SourcePaginationState{Page: 1}
		}
		// a provider nobody registered can never produce a page
		if a.registry.Get(id) == nil {
			next[id] = models.SourcePaginationState{Page: next.PageFor(id), Exhausted: true}
		}
	}

	active := lo.Filter(targets, func(id models.ProviderID, _ int) bool {
		return !next.IsExhausted(id)
	})

	if len(active) == 0 {
		a.logger.Debug("All requested providers exhausted", logging.WithField("requested", len(targets)))
		return models.AggregatedResult{
			Items:           []models.Article{},
			Page:            page,
			PageSize:        pageSize,
			HasNextPage:     false,
			PaginationState: next,
		}
	}

	requests := lo.Map(active, func(id models.ProviderID, _ int) sources.Request {
		return sources.Request{Provider: id, Page: next.PageFor(id)}
	})
	outcomes := a.registry.Fetch(ctx, requests, filters, pageSize)

	merged := make([]models.Article, 0)
	for _, o := range outcomes {
		if o.Err != nil {
			a.logger.Warn("Provider task failed", logging.WithFields(map[string]interface{}{
				"provider": string(o.Provider),
				"error":    o.Err.Error(),
			}))
			continue
		}
		next[o.Provider] = models.SourcePaginationState{
			Page:      o.Page + 1,
			Exhausted: !o.Result.HasMore,
		}
		merged = append(merged, o.Result.Articles...)
	}

	items := articles.SortByDate(articles.Deduplicate(merged))

	hasNext := lo.ContainsBy(targets, func(id models.ProviderID) bool {
		return !next.IsExhausted(id)
	})

	if len(items) == 0 && !hasNext {
		a.logger.Warn("No articles returned by any provider", logging.WithField("providers", len(active)))
	}

	a.logger.Info("Aggregated page", logging.WithFields(map[string]interface{}{
		"requested": len(targets),
		"active":    len(active),
		"items":     len(items),
		"has_next":  hasNext,
	}))

	return models.AggregatedResult{
		Items:           items,
		TotalCount:      len(items),
		Page:            page,
		PageSize:        pageSize,
		HasNextPage:     hasNext,
		PaginationState: next,
	}
}

// FetchPersonalizedFeed builds filters from the preferences and narrows the
// merged page to preferred authors. Author filtering never changes the
// pagination outcome.
func (a *Aggregator) FetchPersonalizedFeed(ctx context.Context, prefs models.UserPreferences, hints models.PageHints, state models.PaginationState) models.AggregatedResult {
	result := a.FetchArticles(ctx, PersonalizedFilters(prefs, hints), state)

	if len(prefs.PreferredAuthors) > 0 {
		result.Items = articles.FilterByAuthors(result.Items, prefs.PreferredAuthors)
		result.TotalCount = len(result.Items)
	}
	return result
}

// PersonalizedFilters maps preferences onto search filters.
func PersonalizedFilters(prefs models.UserPreferences, hints models.PageHints) models.SearchFilters {
	filters := models.SearchFilters{
		Page:     hints.Page,
		PageSize: hints.PageSize,
	}
	if len(prefs.PreferredSources) > 0 {
		filters.Sources = append([]models.ProviderID{}, prefs.PreferredSources...)
	}
	if len(prefs.PreferredCategories) > 0 {
		filters.Categories = append([]string{}, prefs.PreferredCategories...)
	}
	return filters
}

func (a *Aggregator) pageSize(requested int) int {
	if requested > 0 {
		return requested
	}
	return a.defaultPageSize
}
