package main

import (
	"github.com/spf13/cobra"

	hemoform "github.com/goliatone/go-hemoform"
)

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <password>",
		Short: "Print the strength score of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := hemoform.Score(args[0])
			printf(cmd.OutOrStdout(), "%d %s (%s)\n", result.Score, result.Tier, result.Label())
			if !result.Eligible() {
				return errNotReady
			}
			return nil
		},
	}
}
