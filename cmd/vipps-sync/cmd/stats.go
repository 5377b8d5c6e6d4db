package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dagskassen/vipps-accounting/pkg/config"
	"github.com/dagskassen/vipps-accounting/pkg/db"
	"github.com/dagskassen/vipps-accounting/pkg/pathutil"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display sync statistics",
	Long: `Display statistics about synced fund entries.

Shows:
- Total number of recorded entries
- Breakdown per entry type
- Last sync timestamp

Example:
  vipps-sync stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate([]string{"ledger", "root"}); err != nil {
		exitOnError(err, "invalid configuration")
	}

	pathResolver := pathutil.New(pathutil.Config{
		LedgerRoot:   cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
	})

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewReportHistory(conn)

	stats, err := history.GetStats()
	exitOnError(err, "failed to get statistics")

	printStats(stats)
}
