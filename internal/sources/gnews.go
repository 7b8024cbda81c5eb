package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/johnrirwin/newsfeed/internal/articles"
	"github.com/johnrirwin/newsfeed/internal/categories"
	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/ratelimit"
)

const (
	gnewsBaseURL     = "https://gnews.io/api/v4"
	gnewsMaxPageSize = 100
)

type GNewsAdapter struct {
	httpSource
	apiKey  string
	baseURL string
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
	Errors        []string       `json:"errors"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

func NewGNewsAdapter(opts APIOptions, limiter *ratelimit.Limiter, config FetcherConfig, logger *logging.Logger) *GNewsAdapter {
	return &GNewsAdapter{
		httpSource: newHTTPSource(models.ProviderGNews, "GNews", limiter, config, logger),
		apiKey:     opts.APIKey,
		baseURL:    opts.baseURL(gnewsBaseURL),
	}
}

func (a *GNewsAdapter) Fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) models.AdapterResult {
	return a.settle(a.fetch(ctx, filters, page, pageSize))
}

func (a *GNewsAdapter) fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) (models.AdapterResult, error) {
	if a.apiKey == "" {
		return models.AdapterResult{}, ErrMissingAPIKey
	}

	endpoint, params := a.buildQuery(filters, page, pageSize)

	var data gnewsResponse
	if err := a.getJSON(ctx, endpoint, params, &data); err != nil {
		return models.AdapterResult{}, err
	}
	if len(data.Errors) > 0 {
		return models.AdapterResult{}, fmt.Errorf("gnews error: %s", strings.Join(data.Errors, "; "))
	}

	items := make([]models.Article, 0, len(data.Articles))
	for _, raw := range data.Articles {
		if raw.URL == "" {
			continue
		}
		items = append(items, a.normalize(raw, filters))
	}

	total := data.TotalArticles
	fetched := normalizePage(page) * clampPageSize(pageSize, gnewsMaxPageSize)

	return models.AdapterResult{
		Articles:     items,
		TotalResults: &total,
		HasMore:      fetched < total,
	}, nil
}

// buildQuery uses /search when a keyword is present. GNews accepts a
// single topic, so only the first requested category is sent.
func (a *GNewsAdapter) buildQuery(filters models.SearchFilters, page, pageSize int) (string, url.Values) {
	params := url.Values{}
	params.Set("apikey", a.apiKey)
	params.Set("lang", a.config.Language)
	params.Set("max", strconv.Itoa(clampPageSize(pageSize, gnewsMaxPageSize)))
	params.Set("page", strconv.Itoa(normalizePage(page)))

	endpoint := a.baseURL + "/top-headlines"
	if filters.Keyword != "" {
		endpoint = a.baseURL + "/search"
		params.Set("q", filters.Keyword)
	}

	if from, ok := models.FormatDateFilter(filters.DateFrom, "2006-01-02"); ok {
		params.Set("from", from+"T00:00:00Z")
	}
	if to, ok := models.FormatDateFilter(filters.DateTo, "2006-01-02"); ok {
		params.Set("to", to+"T23:59:59Z")
	}

	if c := filters.PrimaryCategory(); c != "" {
		params.Set("topic", categories.ToGNewsTopic(c))
	}

	return endpoint, params
}

func (a *GNewsAdapter) normalize(raw gnewsArticle, filters models.SearchFilters) models.Article {
	return models.Article{
		ID:          articles.GenerateID(a.id, raw.URL),
		Title:       raw.Title,
		Description: articles.CleanText(raw.Description),
		Content:     articles.CleanText(raw.Content),
		Source: models.ArticleSource{
			ID:       articles.SourceSlug(raw.Source.Name),
			Name:     raw.Source.Name,
			Provider: a.id,
		},
		Category:    articleCategory(filters, ""),
		PublishedAt: parsePublished(raw.PublishedAt),
		ImageURL:    raw.Image,
		URL:         raw.URL,
	}
}
