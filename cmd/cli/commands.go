package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(cacheTimesCmd)
	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(expireInvitesCmd)
	rootCmd.AddCommand(metricsCmd)
	gateCmd.AddCommand(gateStatusCmd, gateEnableCmd, gateDisableCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drain all pending writes to the spreadsheet backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/flush")
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show the pending write count per worksheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/pending")
	},
}

var cacheTimesCmd = &cobra.Command{
	Use:   "cache-times",
	Short: "Show the snapshot fetch time per worksheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/cache-times")
	},
}

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Inspect and toggle command gates",
}

var gateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List explicit command locks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/gate/status")
	},
}

var gateEnableCmd = &cobra.Command{
	Use:   "enable <command>",
	Short: "Allow a command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/gate/enable?command=" + url.QueryEscape(args[0]))
	},
}

var gateDisableCmd = &cobra.Command{
	Use:   "disable <command>",
	Short: "Block a command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/gate/disable?command=" + url.QueryEscape(args[0]))
	},
}

var rosterCmd = &cobra.Command{
	Use:   "roster [team]",
	Short: "Show the denormalized roster view",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/roster"
		if len(args) == 1 {
			endpoint += "?team=" + url.QueryEscape(args[0])
		}
		return performGetRequest(endpoint)
	},
}

var expireInvitesCmd = &cobra.Command{
	Use:   "expire-invites",
	Short: "Revoke pending team invites past their expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/invites/expire")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "text/plain", nil)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
