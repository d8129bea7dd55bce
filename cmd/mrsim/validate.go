package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mrsim/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a simulation document",
	Long:  `Parses the document, converts its units and validates the method and every spin system without simulating.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.Validate(args[0], cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
