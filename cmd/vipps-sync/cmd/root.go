// Package cmd provides CLI commands for vipps-sync.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dagskassen/vipps-accounting/pkg/config"
	"github.com/dagskassen/vipps-accounting/pkg/keys"
	"github.com/dagskassen/vipps-accounting/pkg/vipps"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vipps-sync",
	Short: "Sync Vipps-MobilePay settlement data to ledger files",
	Long: `vipps-sync is a CLI tool that pulls settlement transactions from the
Vipps-MobilePay accounting (Report) API and writes them to plain-text
ledger files.

It supports:
- Fetching historic transactions per complete ledger day
- Draining the funds feed with a durable cursor
- Preventing duplicate writes with SQLite history
- Dry-run mode for testing

Example:
  vipps-sync sync --from 2024-01-01 --to 2024-01-31
  vipps-sync feed
  vipps-sync stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(statsCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "" // Will use default .env loading
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// newReportClient builds a Report API client from configuration.
// Partner keys come from the configured JSON key file (with backup
// fallback) when one is set, otherwise from the environment.
func newReportClient(cfg *config.Config) (*vipps.Client, error) {
	clientID := cfg.Vipps.ClientID
	clientSecret := cfg.Vipps.ClientSecret

	if cfg.HasKeyFile() {
		apiKeys, err := keys.LoadWithFallback(cfg.Vipps.KeysFile, cfg.Vipps.KeysBackupFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load partner keys: %w", err)
		}
		clientID = apiKeys.ClientID
		clientSecret = apiKeys.ClientSecret
	}

	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("partner keys are not configured")
	}

	return vipps.NewClient(vipps.ClientConfig{
		APIURL:       cfg.Vipps.APIURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		MyshopNumber: cfg.Vipps.MyshopNumber,
		Country:      cfg.Vipps.Country,
	}), nil
}
