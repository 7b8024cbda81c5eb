package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/johnrirwin/newsfeed/internal/app"
	"github.com/johnrirwin/newsfeed/internal/config"
)

// cli carries the state shared by every subcommand.
type cli struct {
	out     io.Writer
	flags   *config.Flags
	jsonOut bool
	app     *app.App
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:          "newsfeed",
		Short:        "Multi-provider news aggregator",
		Long:         "newsfeed merges articles from NewsAPI, GNews, The New York Times and configured RSS feeds into one paged feed.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	root.SetOut(out)

	c.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		c.searchCmd(),
		c.feedCmd(),
		c.prefsCmd(),
		c.providersCmd(),
	)
	return root
}

func (c *cli) open() error {
	cfg, err := c.flags.Resolve()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}
