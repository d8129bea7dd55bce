package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mrsim"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mrsim",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mrsim version %s\n", strings.TrimSpace(mrsim.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
