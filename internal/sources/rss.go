package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/johnrirwin/newsfeed/internal/articles"
	"github.com/johnrirwin/newsfeed/internal/categories"
	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/ratelimit"
)

const rssMaxPageSize = 100

// RSSAdapter exposes a single RSS or Atom feed as a provider. Feeds have no
// server-side search, so filters and paging are applied to the parsed items.
type RSSAdapter struct {
	id       models.ProviderID
	name     string
	url      string
	category string
	parser   *gofeed.Parser
	limiter  *ratelimit.Limiter
	config   FetcherConfig
	logger   *logging.Logger
}

func NewRSSAdapter(name, feedURL, category string, limiter *ratelimit.Limiter, config FetcherConfig, logger *logging.Logger) *RSSAdapter {
	if logger == nil {
		logger = logging.New(logging.LevelError)
	}
	parser := gofeed.NewParser()
	if config.UserAgent != "" {
		parser.UserAgent = config.UserAgent
	}
	if category == "" {
		category = categories.General
	}
	return &RSSAdapter{
		id:       RSSProviderID(name),
		name:     name,
		url:      feedURL,
		category: categories.Normalize(category),
		parser:   parser,
		limiter:  limiter,
		config:   config,
		logger:   logger,
	}
}

// RSSProviderID derives the provider id of a configured feed from its name.
func RSSProviderID(name string) models.ProviderID {
	return models.ProviderID("rss-" + articles.SourceSlug(name))
}

func (a *RSSAdapter) ID() models.ProviderID {
	return a.id
}

func (a *RSSAdapter) Name() string {
	return a.name
}

func (a *RSSAdapter) Fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) models.AdapterResult {
	result, err := a.fetch(ctx, filters, page, pageSize)
	if err != nil {
		a.logger.Warn("Failed to fetch from provider", logging.WithFields(map[string]interface{}{
			"provider": string(a.id),
			"error":    err.Error(),
		}))
		return models.EmptyResult()
	}
	return result
}

func (a *RSSAdapter) fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) (models.AdapterResult, error) {
	if a.limiter != nil {
		host := a.url
		if u, err := url.Parse(a.url); err == nil && u.Host != "" {
			host = u.Host
		}
		if err := a.limiter.WaitContext(ctx, host); err != nil {
			return models.AdapterResult{}, err
		}
	}

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	feed, err := a.parser.ParseURLWithContext(a.url, ctx)
	if err != nil {
		return models.AdapterResult{}, fmt.Errorf("failed to parse RSS feed %s: %w", a.url, err)
	}

	matched := a.filter(lo.FilterMap(feed.Items, func(item *gofeed.Item, _ int) (models.Article, bool) {
		if item == nil || item.Link == "" {
			return models.Article{}, false
		}
		return a.normalize(item, feed.Title), true
	}), filters)

	size := clampPageSize(pageSize, rssMaxPageSize)
	page = normalizePage(page)
	total := len(matched)

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return models.AdapterResult{
		Articles:     append([]models.Article{}, matched[start:end]...),
		TotalResults: &total,
		HasMore:      page*size < total,
	}, nil
}

func (a *RSSAdapter) filter(items []models.Article, filters models.SearchFilters) []models.Article {
	items = articles.FilterByCategories(items, filters.CategoryList())

	if keyword := strings.TrimSpace(filters.Keyword); keyword != "" {
		fold := cases.Fold()
		keyword = fold.String(keyword)
		items = lo.Filter(items, func(item models.Article, _ int) bool {
			return strings.Contains(fold.String(item.Title), keyword) ||
				strings.Contains(fold.String(item.Description), keyword)
		})
	}

	from, to := filters.DateRange()
	if !from.IsZero() || !to.IsZero() {
		items = lo.Filter(items, func(item models.Article, _ int) bool {
			if !from.IsZero() && item.PublishedAt.Before(from) {
				return false
			}
			if !to.IsZero() && item.PublishedAt.After(to) {
				return false
			}
			return true
		})
	}

	return articles.SortByDate(items)
}

func (a *RSSAdapter) normalize(item *gofeed.Item, feedTitle string) models.Article {
	var article models.Article
	article.ID = articles.GenerateID(a.id, item.Link)
	article.Title = articles.CleanText(item.Title)
	article.Description = articles.CleanText(item.Description)
	article.Content = articles.CleanText(item.Content)
	article.URL = item.Link
	article.Category = a.category

	if item.PublishedParsed != nil {
		article.PublishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		article.PublishedAt = item.UpdatedParsed.UTC()
	}

	if item.Author != nil {
		article.Author = item.Author.Name
	}
	if item.Image != nil {
		article.ImageURL = item.Image.URL
	}

	sourceName := a.name
	if sourceName == "" {
		sourceName = feedTitle
	}
	article.Source = models.ArticleSource{
		ID:       articles.SourceSlug(sourceName),
		Name:     sourceName,
		Provider: a.id,
	}
	return article
}
