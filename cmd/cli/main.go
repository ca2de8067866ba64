package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host   string
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:          "standings-cli",
	Short:        "Operate a running storm-standings server",
	Long:         "standings-cli triggers cycles and stat refreshes and reads leaderboards, members and counters over the server's operator endpoints.",
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&host, "host", envOr("STANDINGS_HOST", "http://localhost:8080"), "base URL of the server")
	flags.BoolVar(&dryRun, "dry-run", false, "compute everything but skip posts and role changes")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
