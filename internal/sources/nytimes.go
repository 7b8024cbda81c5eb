package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/johnrirwin/newsfeed/internal/articles"
	"github.com/johnrirwin/newsfeed/internal/categories"
	"github.com/johnrirwin/newsfeed/internal/logging"
	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/ratelimit"
)

const (
	nytimesBaseURL = "https://api.nytimes.com/svc/search/v2/articlesearch.json"
	// Article Search always returns 10 docs and refuses pages past 200.
	nytimesPageSize = 10
	nytimesMaxPage  = 200
	nytimesImageURL = "https://www.nytimes.com/"
)

var bylinePrefix = regexp.MustCompile(`(?i)^By\s+`)

type NYTimesAdapter struct {
	httpSource
	apiKey  string
	baseURL string
}

type nytimesResponse struct {
	Fault *struct {
		FaultString string `json:"faultstring"`
	} `json:"fault"`
	Response struct {
		Docs []nytimesDoc `json:"docs"`
	} `json:"response"`
}

type nytimesDoc struct {
	ID       string `json:"_id"`
	Headline struct {
		Main string `json:"main"`
	} `json:"headline"`
	Abstract      string `json:"abstract"`
	LeadParagraph string `json:"lead_paragraph"`
	Byline        struct {
		Original string `json:"original"`
		Person   []struct {
			FirstName string `json:"firstname"`
			LastName  string `json:"lastname"`
		} `json:"person"`
	} `json:"byline"`
	SectionName string            `json:"section_name"`
	PubDate     string            `json:"pub_date"`
	Multimedia  nytimesMultimedia `json:"multimedia"`
	WebURL      string            `json:"web_url"`
}

type nytimesImage struct {
	URL string `json:"url"`
}

type nytimesRendition struct {
	URL     string `json:"url"`
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
}

// nytimesMultimedia accepts both shapes the API has used: the legacy array
// of typed renditions and the newer object with default/thumbnail crops.
type nytimesMultimedia struct {
	Items     []nytimesRendition
	Default   *nytimesImage
	Thumbnail *nytimesImage
}

func (m *nytimesMultimedia) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		return json.Unmarshal(data, &m.Items)
	case data[0] == '{':
		var obj struct {
			Default   *nytimesImage `json:"default"`
			Thumbnail *nytimesImage `json:"thumbnail"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		m.Default, m.Thumbnail = obj.Default, obj.Thumbnail
		return nil
	default:
		return nil
	}
}

func (m nytimesMultimedia) imageURL() string {
	if len(m.Items) > 0 {
		image, ok := lo.Find(m.Items, func(item nytimesRendition) bool {
			return item.Type == "image" && item.Subtype == "xlarge"
		})
		if ok && image.URL != "" {
			return nytimesImageURL + strings.TrimPrefix(image.URL, "/")
		}
		return ""
	}
	if m.Default != nil && m.Default.URL != "" {
		return m.Default.URL
	}
	if m.Thumbnail != nil && m.Thumbnail.URL != "" {
		return m.Thumbnail.URL
	}
	return ""
}

func NewNYTimesAdapter(opts APIOptions, limiter *ratelimit.Limiter, config FetcherConfig, logger *logging.Logger) *NYTimesAdapter {
	return &NYTimesAdapter{
		httpSource: newHTTPSource(models.ProviderNYTimes, "NY Times", limiter, config, logger),
		apiKey:     opts.APIKey,
		baseURL:    opts.baseURL(nytimesBaseURL),
	}
}

// Fetch ignores pageSize; the API page size is fixed.
func (a *NYTimesAdapter) Fetch(ctx context.Context, filters models.SearchFilters, page, pageSize int) models.AdapterResult {
	return a.settle(a.fetch(ctx, filters, page))
}

func (a *NYTimesAdapter) fetch(ctx context.Context, filters models.SearchFilters, page int) (models.AdapterResult, error) {
	if a.apiKey == "" {
		return models.AdapterResult{}, ErrMissingAPIKey
	}

	nytPage := min(normalizePage(page)-1, nytimesMaxPage)
	params := a.buildQuery(filters, nytPage)

	var data nytimesResponse
	if err := a.getJSON(ctx, a.baseURL, params, &data); err != nil {
		return models.AdapterResult{}, err
	}
	if data.Fault != nil {
		return models.AdapterResult{}, fmt.Errorf("nytimes fault: %s", data.Fault.FaultString)
	}

	docs := data.Response.Docs
	items := make([]models.Article, 0, len(docs))
	for _, doc := range docs {
		if doc.WebURL == "" {
			continue
		}
		items = append(items, a.normalize(doc, filters))
	}

	return models.AdapterResult{
		Articles: items,
		HasMore:  len(docs) == nytimesPageSize && nytPage < nytimesMaxPage,
	}, nil
}

func (a *NYTimesAdapter) buildQuery(filters models.SearchFilters, nytPage int) url.Values {
	params := url.Values{}
	params.Set("api-key", a.apiKey)
	params.Set("page", strconv.Itoa(nytPage))

	if filters.Keyword != "" {
		params.Set("q", filters.Keyword)
	}
	if from, ok := models.FormatDateFilter(filters.DateFrom, "20060102"); ok {
		params.Set("begin_date", from)
	}
	if to, ok := models.FormatDateFilter(filters.DateTo, "20060102"); ok {
		params.Set("end_date", to)
	}

	if cats := filters.CategoryList(); len(cats) > 0 {
		sections := lo.Map(cats, func(c string, _ int) string {
			return strconv.Quote(categories.ToNYTimesSection(c))
		})
		params.Set("fq", "section.name:("+strings.Join(lo.Uniq(sections), " ")+")")
	}

	return params
}

func (a *NYTimesAdapter) normalize(doc nytimesDoc, filters models.SearchFilters) models.Article {
	author := ""
	if doc.Byline.Original != "" {
		author = strings.TrimSpace(bylinePrefix.ReplaceAllString(doc.Byline.Original, ""))
	} else if len(doc.Byline.Person) > 0 {
		p := doc.Byline.Person[0]
		author = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	return models.Article{
		ID:          articles.GenerateID(a.id, doc.WebURL),
		Title:       doc.Headline.Main,
		Description: articles.CleanText(doc.Abstract),
		Content:     articles.CleanText(doc.LeadParagraph),
		Author:      author,
		Source: models.ArticleSource{
			ID:       string(models.ProviderNYTimes),
			Name:     "The New York Times",
			Provider: a.id,
		},
		Category:    articleCategory(filters, strings.ToLower(doc.SectionName)),
		PublishedAt: parsePublished(doc.PubDate),
		ImageURL:    doc.Multimedia.imageURL(),
		URL:         doc.WebURL,
	}
}
