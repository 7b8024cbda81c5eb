package main

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/johnrirwin/newsfeed/internal/models"
	"github.com/johnrirwin/newsfeed/internal/preferences"
)

func (c *cli) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the preferences behind the personalized feed",
	}
	cmd.AddCommand(c.prefsShowCmd(), c.prefsSetCmd())
	return cmd
}

func (c *cli) prefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print saved preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := c.app.Preferences.Read(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(c.out, prefs)
			}
			writePreferences(c.out, prefs)
			return nil
		},
	}
}

func (c *cli) prefsSetCmd() *cobra.Command {
	var (
		sources    []string
		categories []string
		authors    []string
		reset      bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the preference lists that are given",
		Long: `Replace each preference list passed on the command line. Lists that are
not mentioned keep their saved values; --reset clears everything first.
Unknown provider ids are dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prefs := models.DefaultPreferences()
			if !reset {
				saved, err := c.app.Preferences.Read(ctx)
				if err != nil {
					return err
				}
				prefs = saved
			}

			if cmd.Flags().Changed("source") {
				prefs.PreferredSources = lo.Map(sources, func(s string, _ int) models.ProviderID {
					return models.ProviderID(s)
				})
			}
			if cmd.Flags().Changed("category") {
				prefs.PreferredCategories = categories
			}
			if cmd.Flags().Changed("author") {
				prefs.PreferredAuthors = authors
			}

			prefs = preferences.Normalize(prefs, c.app.Registry.IDs()...)
			if err := c.app.Preferences.Write(ctx, prefs); err != nil {
				return err
			}

			if c.jsonOut {
				return writeJSON(c.out, prefs)
			}
			writePreferences(c.out, prefs)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&sources, "source", nil, "preferred provider ids")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "preferred categories")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "preferred authors (substring match)")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear saved preferences before applying flags")
	return cmd
}
