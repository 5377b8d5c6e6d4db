package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dagskassen/vipps-accounting/pkg/config"
	"github.com/dagskassen/vipps-accounting/pkg/db"
	"github.com/dagskassen/vipps-accounting/pkg/pathutil"
	"github.com/dagskassen/vipps-accounting/pkg/report"
)

var (
	feedDryRun      bool
	feedMappingFile string
)

// feedCmd represents the feed command.
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Drain the funds feed for recent transactions",
	Long: `Fetch recent settlement transactions from the funds feed.

The feed serves transactions ahead of a cursor, including entries for
days that are not complete yet. The cursor is persisted in the sync
database, so consecutive runs only see new entries.

Example:
  vipps-sync feed
  vipps-sync feed --dry-run`,
	Run: runFeed,
}

func init() {
	feedCmd.Flags().BoolVar(&feedDryRun, "dry-run", false, "Dry run mode (no file or db writes, cursor not advanced)")
	feedCmd.Flags().StringVar(&feedMappingFile, "mapping", "config/account-mapping.yaml", "Account mapping file")
}

func runFeed(cmd *cobra.Command, args []string) {
	slog.Info("Draining funds feed", "dry_run", feedDryRun)

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		[]string{"vipps", "apiUrl"},
		[]string{"vipps", "myshopNumber"},
		[]string{"ledger", "root"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	pathResolver := pathutil.New(pathutil.Config{
		LedgerRoot:   cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
	})

	conn, err := db.Open(pathResolver.GetDatabasePath())
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewReportHistory(conn)

	client, err := newReportClient(cfg)
	exitOnError(err, "failed to build API client")

	// Resume from the durable cursor
	cursor, err := history.GetFeedCursor()
	exitOnError(err, "failed to load feed cursor")
	client.SetCursor(cursor)

	ledgerInfo, err := client.LedgerInfo()
	exitOnError(err, "failed to fetch ledger info")

	mapper, err := report.NewMapper(feedMappingFile)
	exitOnError(err, "failed to load account mapping")

	converter := report.NewConverter(mapper, ledgerInfo.Currency)
	ledgerRepo := report.NewFileSystemRepository(pathResolver)

	entries, err := client.TransactionsFromFeed()
	exitOnError(err, "failed to drain funds feed")
	slog.Info("Fetched feed entries", "count", len(entries))

	recordedKeys, err := history.RecordedKeys()
	exitOnError(err, "failed to get recorded entries")

	newEntries := filterEntries(entries, recordedKeys)
	slog.Info("New entries from feed",
		"new", len(newEntries),
		"skipped", len(entries)-len(newEntries),
	)

	if len(newEntries) == 0 {
		fmt.Println("No new entries in the feed")
	} else {
		writeEntries(newEntries, converter, ledgerRepo, history, feedDryRun)
	}

	if !feedDryRun {
		if err := history.SetFeedCursor(client.Cursor()); err != nil {
			exitOnError(err, "failed to persist feed cursor")
		}
		slog.Debug("Persisted feed cursor", "cursor", client.Cursor())
	}

	slog.Info("Feed drain completed", "new_entries", len(newEntries))
}
