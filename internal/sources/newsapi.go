package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/johnrirwin/newsfeed/internal/articles"
	"github.com/johnrirwin/newsfeed/internal/categories"
	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/ratelimit"
)

const (
	newsAPIBaseURL     = "https://newsapi.org/v2"
	newsAPIMaxPageSize = 100
)

type NewsAPIAdapter struct {
	httpSource
	apiKey  string
	baseURL string
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

// Nullable upstream fields decode to "" and are treated as absent.
type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func NewNewsAPIAdapter(opts APIOptions, limiter *ratelimit.Limiter, config FetcherConfig, logger *logging.Logger) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		httpSource: newHTTPSource(models.ProviderNewsAPI, "NewsAPI", limiter, config, logger),
		apiKey:     opts.APIKey,
		baseURL:    opts.baseURL(newsAPIBaseURL),
	}
}

func (a *NewsAPIAdapter) Fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) models.AdapterResult {
	return a.settle(a.fetch(ctx, filters, page, pageSize))
}

func (a *NewsAPIAdapter) fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) (models.AdapterResult, error) {
	if a.apiKey == "" {
		return models.AdapterResult{}, ErrMissingAPIKey
	}

	endpoint, params := a.buildQuery(filters, page, pageSize)

	var data newsAPIResponse
	if err := a.getJSON(ctx, endpoint, params, &data); err != nil {
		return models.AdapterResult{}, err
	}
	if data.Status == "error" {
		return models.AdapterResult{}, fmt.Errorf("newsapi error %s: %s", data.Code, data.Message)
	}

	items := make([]models.Article, 0, len(data.Articles))
	for _, raw := range data.Articles {
		if raw.URL == "" {
			continue
		}
		items = append(items, a.normalize(raw, filters))
	}

	total := data.TotalResults
	fetched := normalizePage(page) * clampPageSize(pageSize, newsAPIMaxPageSize)

	return models.AdapterResult{
		Articles:     items,
		TotalResults: &total,
		HasMore:      fetched < total,
	}, nil
}

// buildQuery picks /everything for keyword searches and /top-headlines
// otherwise. Categories are only honoured in headline mode.
func (a *NewsAPIAdapter) buildQuery(filters models.SearchFilters, page, pageSize int) (string, url.Values) {
	params := url.Values{}
	params.Set("apiKey", a.apiKey)
	params.Set("pageSize", strconv.Itoa(clampPageSize(pageSize, newsAPIMaxPageSize)))
	params.Set("page", strconv.Itoa(normalizePage(page)))

	endpoint := a.baseURL + "/everything"
	if filters.Keyword != "" {
		params.Set("q", filters.Keyword)
	} else {
		endpoint = a.baseURL + "/top-headlines"
		params.Set("language", a.config.Language)
		if c := filters.PrimaryCategory(); c != "" {
			params.Set("category", categories.ToNewsAPICategory(c))
		}
	}

	if from, ok := models.FormatDateFilter(filters.DateFrom, "2006-01-02"); ok {
		params.Set("from", from)
	}
	if to, ok := models.FormatDateFilter(filters.DateTo, "2006-01-02"); ok {
		params.Set("to", to)
	}

	return endpoint, params
}

func (a *NewsAPIAdapter) normalize(raw newsAPIArticle, filters models.SearchFilters) models.Article {
	sourceID := raw.Source.ID
	if sourceID == "" {
		sourceID = articles.SourceSlug(raw.Source.Name)
	}

	return models.Article{
		ID:          articles.GenerateID(a.id, raw.URL),
		Title:       raw.Title,
		Description: articles.CleanText(raw.Description),
		Content:     articles.CleanText(raw.Content),
		Author:      raw.Author,
		Source: models.ArticleSource{
			ID:       sourceID,
			Name:     raw.Source.Name,
			Provider: a.id,
		},
		Category:    articleCategory(filters, ""),
		PublishedAt: parsePublished(raw.PublishedAt),
		ImageURL:    raw.URLToImage,
		URL:         raw.URL,
	}
}
