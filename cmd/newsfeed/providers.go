package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := c.app.Aggregator.Providers()
			if c.jsonOut {
				return writeJSON(c.out, info)
			}
			writeProviders(c.out, info)
			return nil
		},
	}
}
