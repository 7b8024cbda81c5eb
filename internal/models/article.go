package models

import "time"

// ProviderID identifies one upstream news provider.
type ProviderID string

const (
	ProviderNewsAPI ProviderID = "newsapi"
	ProviderGNews   ProviderID = "gnews"
	ProviderNYTimes ProviderID = "nytimes"
)

// DefaultPageSize is used when neither the caller nor the config sets one.
const DefaultPageSize = 12

// ProviderInfo describes a registered provider for display.
type ProviderInfo struct {
	ID   ProviderID `json:"id"`
	Name string     `json:"name"`
}

// KnownProviders lists the built-in providers in their canonical order.
var KnownProviders = []ProviderInfo{
	{ID: ProviderNewsAPI, Name: "NewsAPI"},
	{ID: ProviderGNews, Name: "GNews"},
	{ID: ProviderNYTimes, Name: "NY Times"},
}

// Article is the provider-agnostic normalized article record.
type Article struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Content     string        `json:"content"`
	Author      string        `json:"author,omitempty"`
	Source      ArticleSource `json:"source"`
	Category    string        `json:"category"`
	PublishedAt time.Time     `json:"publishedAt"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	URL         string        `json:"url"`
}

type ArticleSource struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Provider ProviderID `json:"provider"`
}

// SearchFilters are the normalized criteria handed to every adapter.
type SearchFilters struct {
	Keyword    string       `json:"keyword,omitempty"`
	DateFrom   string       `json:"dateFrom,omitempty"`
	DateTo     string       `json:"dateTo,omitempty"`
	Category   string       `json:"category,omitempty"`
	Categories []string     `json:"categories,omitempty"`
	Sources    []ProviderID `json:"sources,omitempty"`
	Page       int          `json:"page,omitempty"`
	PageSize   int          `json:"pageSize,omitempty"`
}

// PrimaryCategory returns the category used by providers that accept only one.
func (f SearchFilters) PrimaryCategory() string {
	if len(f.Categories) > 0 {
		return f.Categories[0]
	}
	return f.Category
}

// CategoryList returns every requested category, falling back to the single one.
func (f SearchFilters) CategoryList() []string {
	if len(f.Categories) > 0 {
		return f.Categories
	}
	if f.Category != "" {
		return []string{f.Category}
	}
	return nil
}

// AdapterResult is one page returned by a single provider.
type AdapterResult struct {
	Articles     []Article `json:"articles"`
	TotalResults *int      `json:"totalResults,omitempty"`
	HasMore      bool      `json:"hasMore"`
}

// EmptyResult is what adapters return on any failure.
func EmptyResult() AdapterResult {
	return AdapterResult{Articles: []Article{}, HasMore: false}
}

// AggregatedResult is one merged page of the multi-provider feed.
type AggregatedResult struct {
	Items           []Article       `json:"items"`
	TotalCount      int             `json:"totalCount"`
	Page            int             `json:"page"`
	PageSize        int             `json:"pageSize"`
	HasNextPage     bool            `json:"hasNextPage"`
	PaginationState PaginationState `json:"paginationState"`
}

// PageHints carries optional paging parameters for the personalized feed.
type PageHints struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}
