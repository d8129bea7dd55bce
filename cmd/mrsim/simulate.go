package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mrsim/internal/cli"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate FILE",
	Short: "Simulate the spectrum of a document",
	Long: `Loads a YAML or JSON simulation document, averages every spin system over
the orientation grid and prints the spectrum.

Output formats:
- text (default): run summary and peak position, rendered on a terminal.
- json: the full result including resolved pathways.
- csv: one row per bin with its frequency in Hz.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd, args)
		opts.Output, _ = cmd.Flags().GetString("out")
		opts.Workers, _ = cmd.Flags().GetInt("workers")
		opts.Density, _ = cmd.Flags().GetInt("density")
		opts.Sidebands, _ = cmd.Flags().GetInt("sidebands")
		opts.StoreKey, _ = cmd.Flags().GetString("store-key")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")
		opts.RedisPassword, _ = cmd.Flags().GetString("redis-password")
		opts.RedisDB, _ = cmd.Flags().GetInt("redis-db")
		return cli.Simulate(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringP("out", "o", cli.OutputText, "Output format: text, json or csv")
	simulateCmd.Flags().Int("workers", 0, "Override the number of engine workers")
	simulateCmd.Flags().Int("density", 0, "Override the orientation integration density")
	simulateCmd.Flags().Int("sidebands", 0, "Override the number of spinning sidebands")
	simulateCmd.Flags().String("store-key", "", "Store the spectrum under this key (requires --redis)")
	simulateCmd.Flags().String("redis", "", "Redis address of the spectrum store, e.g. localhost:6379")
	simulateCmd.Flags().String("redis-password", "", "Redis password")
	simulateCmd.Flags().Int("redis-db", 0, "Redis database")
}
