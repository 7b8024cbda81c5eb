package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/johnrirwin/newsfeed/internal/models"
)

const dateLayout = "2006-01-02 15:04"

func writeLine(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePage(w io.Writer, result models.AggregatedResult) {
	more := ""
	if result.HasNextPage {
		more = ", more available"
	}
	writeLine(w, "Page %d (%d articles%s)", result.Page, len(result.Items), more)

	for _, a := range result.Items {
		published := "unknown date"
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.Format(dateLayout)
		}
		byline := a.Source.Name
		if a.Author != "" {
			byline = a.Author + ", " + byline
		}
		writeLine(w, "  %s", a.Title)
		writeLine(w, "    %s | %s | %s", published, byline, a.Category)
		writeLine(w, "    %s", a.URL)
	}
}

func writePreferences(w io.Writer, prefs models.UserPreferences) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	sources := make([]string, len(prefs.PreferredSources))
	for i, id := range prefs.PreferredSources {
		sources[i] = string(id)
	}
	fmt.Fprintf(tw, "sources:\t%s\n", listOrAll(sources))
	fmt.Fprintf(tw, "categories:\t%s\n", listOrAll(prefs.PreferredCategories))
	fmt.Fprintf(tw, "authors:\t%s\n", listOrAll(prefs.PreferredAuthors))
	tw.Flush()
}

func writeProviders(w io.Writer, info []models.ProviderInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, p := range info {
		fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Name)
	}
	tw.Flush()
}

func listOrAll(items []string) string {
	if len(items) == 0 {
		return "(any)"
	}
	return strings.Join(items, ", ")
}
