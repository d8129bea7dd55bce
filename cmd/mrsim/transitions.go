package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mrsim/internal/cli"
)

var transitionsCmd = &cobra.Command{
	Use:   "transitions FILE",
	Short: "List the transition pathways selected by a document's method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd, args)
		opts.Output, _ = cmd.Flags().GetString("out")
		return cli.Transitions(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(transitionsCmd)
	transitionsCmd.Flags().StringP("out", "o", cli.OutputText, "Output format: text, json or mermaid")
}
