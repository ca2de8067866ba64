package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	leaderboardCmd.Flags().StringP("period", "p", "season", "daily, weekly, season or lifetime")
	leaderboardCmd.Flags().IntP("limit", "n", 10, "Number of entries, 0 for all")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Publish every bound leaderboard and synchronize roles now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/cycle", nil)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch fresh stats for every registered player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/refresh", nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show a ranked leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		limit, _ := cmd.Flags().GetInt("limit")
		return performRequest(http.MethodGet, "/leaderboard", url.Values{
			"period": {period},
			"limit":  {strconv.Itoa(limit)},
		})
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/members", nil)
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Get the persistent operation counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/counters", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

func performRequest(method, endpoint string, query url.Values) error {
	if query == nil {
		query = url.Values{}
	}
	if dryRun {
		query.Set("dry_run", "true")
	}
	target := host + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	fmt.Printf("Making request to %s\n", target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
