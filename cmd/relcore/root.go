package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "relcore",
	Short: "Drive the relcore relational-over-KV engine from the command line",
	Long: `relcore is a CLI over the relcore engine: a small relational layer
that decomposes rows into per-field cells in a Redis-compatible store and
enforces functional dependencies on insert.

Connection settings are read from the environment (RELCORE_HOST,
RELCORE_PORT, RELCORE_POOL_SIZE, RELCORE_DIAL_TIMEOUT, ...); see
"relcore demo --help" for a runnable example schema.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(demoCmd)
}
