package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mrsim/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:           "mrsim",
	Short:         "mrsim simulates solid-state NMR spectra of powders",
	Long:          `mrsim resolves the transition pathways selected by an NMR method and averages their frequencies over crystallite orientations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Log run events at debug level on stderr")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// commonOptions reads the persistent flags and the document argument.
func commonOptions(cmd *cobra.Command, args []string) cli.Options {
	debug, _ := cmd.Flags().GetBool("debug")
	level, _ := cmd.Flags().GetString("log-level")
	opts := cli.Options{Debug: debug, LogLevel: level}
	if len(args) > 0 {
		opts.File = args[0]
	}
	return opts
}
