package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/testutil"
)

func nytDoc(i int, extra string) string {
	return fmt.Sprintf(`{
	  "_id": "nyt://article/%d",
	  "headline": {"main": "Headline %d"},
	  "abstract": "Abstract %d",
	  "lead_paragraph": "Lead %d",
	  "section_name": "Business Day",
	  "pub_date": "2024-01-%02dT10:00:00+0000",
	  "web_url": "https://www.nytimes.com/2024/01/%d/story.html"%s
	}`, i, i, i, i, i+1, i, extra)
}

func nytFixture(docs ...string) string {
	return `{"status":"OK","response":{"docs":[` + strings.Join(docs, ",") + `]}}`
}

func TestNYTimesAdapter_Query(t *testing.T) {
	var got url.URL
	srv := newTestServer(t, nytFixture(), http.StatusOK, &got, nil)
	adapter := NewNYTimesAdapter(APIOptions{APIKey: "nyt", BaseURL: srv.URL}, nil, DefaultConfig(), testutil.NullLogger())

	filters := models.SearchFilters{
		Keyword:    "election",
		DateFrom:   "2024-01-01",
		DateTo:     "2024-01-31",
		Categories: []string{"business", "entertainment", "unknown-category"},
	}
	adapter.Fetch(context.Background(), filters, 3, 50)

	q := got.Query()
	checks := map[string]string{
		"api-key":    "nyt",
		"page":       "2",
		"q":          "election",
		"begin_date": "20240101",
		"end_date":   "20240131",
		"fq":         `section.name:("Business" "Arts" "U.S.")`,
	}
	for key, want := range checks {
		if q.Get(key) != want {
			t.Errorf("query %s = %q, want %q", key, q.Get(key), want)
		}
	}
}

func TestNYTimesAdapter_PageCeiling(t *testing.T) {
	docs := make([]string, 10)
	for i := range docs {
		docs[i] = nytDoc(i, "")
	}

	tests := []struct {
		name     string
		page     int
		body     string
		wantPage string
		wantMore bool
	}{
		{"full page", 1, nytFixture(docs...), "0", true},
		{"short page", 1, nytFixture(docs[:4]...), "0", false},
		{"last allowed page", 201, nytFixture(docs...), "200", false},
		{"beyond ceiling", 500, nytFixture(docs...), "200", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got url.URL
			srv := newTestServer(t, tt.body, http.StatusOK, &got, nil)
			adapter := NewNYTimesAdapter(APIOptions{APIKey: "nyt", BaseURL: srv.URL}, nil, DefaultConfig(), testutil.NullLogger())

			result := adapter.Fetch(context.Background(), models.SearchFilters{}, tt.page, 12)
			if got.Query().Get("page") != tt.wantPage {
				t.Errorf("page param = %q, want %q", got.Query().Get("page"), tt.wantPage)
			}
			if result.HasMore != tt.wantMore {
				t.Errorf("HasMore = %v, want %v", result.HasMore, tt.wantMore)
			}
			if result.TotalResults != nil {
				t.Error("NY Times reports no total")
			}
		})
	}
}

func TestNYTimesAdapter_Normalization(t *testing.T) {
	body := nytFixture(
		nytDoc(1, `, "byline": {"original": "By JANE DOE and JOHN ROE"}, "multimedia": [
			{"url": "images/thumb.jpg", "type": "image", "subtype": "thumbnail"},
			{"url": "images/large.jpg", "type": "image", "subtype": "xlarge"}
		]`),
		nytDoc(2, `, "byline": {"original": null, "person": [{"firstname": "Ann", "lastname": "Lee"}]},
			"multimedia": {"default": {"url": "https://static01.nyt.com/default.jpg"}, "thumbnail": {"url": "https://static01.nyt.com/thumb.jpg"}}`),
		nytDoc(3, `, "multimedia": {"thumbnail": {"url": "https://static01.nyt.com/only-thumb.jpg"}}`),
		nytDoc(4, `, "multimedia": null`),
	)
	srv := newTestServer(t, body, http.StatusOK, nil, nil)
	adapter := NewNYTimesAdapter(APIOptions{APIKey: "nyt", BaseURL: srv.URL}, nil, DefaultConfig(), testutil.NullLogger())

	result := adapter.Fetch(context.Background(), models.SearchFilters{}, 1, 12)
	if len(result.Articles) != 4 {
		t.Fatalf("got %d articles, want 4", len(result.Articles))
	}

	tests := []struct {
		author string
		image  string
	}{
		{"JANE DOE and JOHN ROE", "https://www.nytimes.com/images/large.jpg"},
		{"Ann Lee", "https://static01.nyt.com/default.jpg"},
		{"", "https://static01.nyt.com/only-thumb.jpg"},
		{"", ""},
	}
	for i, tt := range tests {
		a := result.Articles[i]
		if a.Author != tt.author {
			t.Errorf("article %d Author = %q, want %q", i, a.Author, tt.author)
		}
		if a.ImageURL != tt.image {
			t.Errorf("article %d ImageURL = %q, want %q", i, a.ImageURL, tt.image)
		}
		if a.Source.ID != "nytimes" || a.Source.Name != "The New York Times" {
			t.Errorf("article %d Source = %+v", i, a.Source)
		}
		if a.Category != "business day" {
			t.Errorf("article %d Category = %q, want section name", i, a.Category)
		}
		if a.PublishedAt.IsZero() {
			t.Errorf("article %d PublishedAt not parsed", i)
		}
	}
}

func TestNYTimesAdapter_RequestedCategoryWins(t *testing.T) {
	srv := newTestServer(t, nytFixture(nytDoc(1, "")), http.StatusOK, nil, nil)
	adapter := NewNYTimesAdapter(APIOptions{APIKey: "nyt", BaseURL: srv.URL}, nil, DefaultConfig(), testutil.NullLogger())

	result := adapter.Fetch(context.Background(), models.SearchFilters{Category: "business"}, 1, 12)
	if len(result.Articles) != 1 || result.Articles[0].Category != "business" {
		t.Errorf("articles = %+v, want category business", result.Articles)
	}
}

func TestNYTimesAdapter_Fault(t *testing.T) {
	srv := newTestServer(t, `{"fault":{"faultstring":"Rate limit quota violation"}}`, http.StatusOK, nil, nil)
	adapter := NewNYTimesAdapter(APIOptions{APIKey: "nyt", BaseURL: srv.URL}, nil, DefaultConfig(), testutil.NullLogger())

	result := adapter.Fetch(context.Background(), models.SearchFilters{}, 1, 12)
	if len(result.Articles) != 0 || result.HasMore {
		t.Errorf("result = %+v, want empty", result)
	}
}
