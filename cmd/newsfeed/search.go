package main

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/johnrirwin/newsfeed/internal/feed"
	"github.com/johnrirwin/newsfeed/internal/models"
)

func (c *cli) searchCmd() *cobra.Command {
	var (
		from       string
		to         string
		categories []string
		sources    []string
		pages      int
	)

	cmd := &cobra.Command{
		Use:   "search [keyword...]",
		Short: "Search every provider and print the merged results",
		Long: `Search all registered providers (or those named with --source) and
print the merged, de-duplicated results newest first.

Dates accept YYYY-MM-DD or MM/DD/YYYY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := models.SearchFilters{
				Keyword:    strings.Join(args, " "),
				DateFrom:   from,
				DateTo:     to,
				Categories: categories,
				Sources: lo.Map(sources, func(s string, _ int) models.ProviderID {
					return models.ProviderID(strings.TrimSpace(s))
				}),
			}
			session := c.app.SearchSession(filters)
			return c.printPages(cmd, session, pages)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "earliest publication date")
	cmd.Flags().StringVar(&to, "to", "", "latest publication date")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "category filter (repeatable)")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "provider id to query (repeatable)")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

func (c *cli) feedCmd() *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the personalized feed built from saved preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.app.PersonalizedSession(cmd.Context(), models.PageHints{})
			if err != nil {
				return err
			}
			return c.printPages(cmd, session, pages)
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

// printPages loads up to n pages, stopping early once the feed runs out.
func (c *cli) printPages(cmd *cobra.Command, session *feed.Session, n int) error {
	ctx := cmd.Context()
	var loaded []models.AggregatedResult

	for i := 0; i < max(n, 1) && session.HasMore(); i++ {
		result, err := session.Next(ctx)
		if err != nil {
			return err
		}
		loaded = append(loaded, result)
		if !c.jsonOut {
			writePage(c.out, result)
		}
	}

	if c.jsonOut {
		return writeJSON(c.out, loaded)
	}
	if len(session.Items()) == 0 {
		writeLine(c.out, "No articles found.")
	}
	return nil
}
