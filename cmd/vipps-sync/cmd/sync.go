package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dagskassen/vipps-accounting/pkg/config"
	"github.com/dagskassen/vipps-accounting/pkg/db"
	"github.com/dagskassen/vipps-accounting/pkg/pathutil"
	"github.com/dagskassen/vipps-accounting/pkg/report"
	"github.com/dagskassen/vipps-accounting/pkg/vipps"
)

var (
	dateFrom    string
	dateTo      string
	dryRun      bool
	mappingFile string
)

// syncCmd represents the sync command.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync historic settlement days to ledger files",
	Long: `Sync settlement transactions from the Report API to ledger files.

This command:
1. Fetches fund entries for every complete day in the range
2. Filters out entries already recorded in the SQLite history
3. Converts them to ledger transactions
4. Appends to monthly ledger files
5. Records the entries in the history

Only complete days can be fetched; the range must end before today.

Example:
  vipps-sync sync --from 2024-01-01 --to 2024-01-31
  vipps-sync sync --from 2024-01-01 --to 2024-01-31 --dry-run`,
	Run: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&dateFrom, "from", "", "Start date (YYYY-MM-DD) (required)")
	syncCmd.Flags().StringVar(&dateTo, "to", "", "End date (YYYY-MM-DD) (required)")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no file or db writes)")
	syncCmd.Flags().StringVar(&mappingFile, "mapping", "config/account-mapping.yaml", "Account mapping file")

	syncCmd.MarkFlagRequired("from")
	syncCmd.MarkFlagRequired("to")
}

func runSync(cmd *cobra.Command, args []string) {
	slog.Info("Starting sync", "from", dateFrom, "to", dateTo, "dry_run", dryRun)

	from, err := time.Parse("2006-01-02", dateFrom)
	exitOnError(err, "invalid --from date")

	to, err := time.Parse("2006-01-02", dateTo)
	exitOnError(err, "invalid --to date")

	if to.Before(from) {
		exitOnError(fmt.Errorf("--to %s is before --from %s", dateTo, dateFrom), "invalid date range")
	}

	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		[]string{"vipps", "apiUrl"},
		[]string{"vipps", "myshopNumber"},
		[]string{"ledger", "root"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	// Initialize components
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

	client, err := newReportClient(cfg)
	exitOnError(err, "failed to build API client")

	// The ledger carries the currency every entry settles in
	ledgerInfo, err := client.LedgerInfo()
	exitOnError(err, "failed to fetch ledger info")

	mapper, err := report.NewMapper(mappingFile)
	exitOnError(err, "failed to load account mapping")

	converter := report.NewConverter(mapper, ledgerInfo.Currency)
	ledgerRepo := report.NewFileSystemRepository(pathResolver)

	// Fetch entries day by day
	var allEntries []vipps.FundEntry
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		slog.Info("Fetching fund entries", "date", day.Format("2006-01-02"))
		entries, err := client.TransactionsByDate(day)
		exitOnError(err, fmt.Sprintf("failed to fetch entries for %s", day.Format("2006-01-02")))
		allEntries = append(allEntries, entries...)
	}
	slog.Info("Fetched fund entries", "count", len(allEntries))

	// Filter out already recorded entries
	recordedKeys, err := history.RecordedKeys()
	exitOnError(err, "failed to get recorded entries")

	newEntries := filterEntries(allEntries, recordedKeys)
	slog.Info("New entries to sync",
		"new", len(newEntries),
		"skipped", len(allEntries)-len(newEntries),
	)

	if len(newEntries) == 0 {
		fmt.Println("No new entries to sync")
		return
	}

	written := writeEntries(newEntries, converter, ledgerRepo, history, dryRun)

	if !dryRun {
		stats, err := history.GetStats()
		if err == nil {
			printStats(stats)
		}
	}

	slog.Info("Sync completed", "new_entries", len(newEntries), "files_written", written)
}

// writeEntries converts entries month by month and appends them to the
// ledger files, recording each in the history. Returns the number of
// files touched. In dry-run mode it only prints the transactions.
func writeEntries(entries []vipps.FundEntry, converter *report.Converter, ledgerRepo report.Repository, history *db.ReportHistory, dryRun bool) int {
	byMonth := groupByMonth(entries)

	written := 0
	for _, monthKey := range sortedMonths(byMonth) {
		monthEntries := byMonth[monthKey]

		if dryRun {
			fmt.Printf("[DRY RUN] Would append to %s\n", monthKey)
			for _, entry := range monthEntries {
				txn := converter.Convert(entry)
				fmt.Println(converter.FormatTransaction(txn))
			}
			continue
		}

		if err := ledgerRepo.EnsureMonthFile(monthKey); err != nil {
			slog.Error("Failed to ensure month file", "month", monthKey, "error", err)
			continue
		}

		for _, entry := range monthEntries {
			txn := converter.Convert(entry)
			formatted := converter.FormatTransaction(txn)

			if err := ledgerRepo.AppendTransaction(monthKey, formatted); err != nil {
				slog.Error("Failed to append entry", "psp_reference", entry.PSPReference, "error", err)
				continue
			}

			if err := history.Record(db.ReportRecord{
				EntryType:    entry.EntryType,
				PSPReference: entry.PSPReference,
				LedgerDate:   entry.LedgerDate,
				Amount:       entry.Amount,
				Currency:     entry.Currency,
				LedgerFile:   monthKey,
			}); err != nil {
				slog.Error("Failed to record entry", "psp_reference", entry.PSPReference, "error", err)
			}
		}

		written++
		slog.Info("Updated file", "month", monthKey, "entries", len(monthEntries))
	}

	return written
}

// Helper functions

func filterEntries(entries []vipps.FundEntry, recorded map[string]bool) []vipps.FundEntry {
	var result []vipps.FundEntry
	for _, entry := range entries {
		if !recorded[db.RecordKey(entry.EntryType, entry.PSPReference)] {
			result = append(result, entry)
		}
	}
	return result
}

func groupByMonth(entries []vipps.FundEntry) map[string][]vipps.FundEntry {
	groups := make(map[string][]vipps.FundEntry)
	for _, entry := range entries {
		if len(entry.LedgerDate) < 7 {
			slog.Error("Entry has invalid ledger date", "psp_reference", entry.PSPReference, "ledger_date", entry.LedgerDate)
			continue
		}
		monthKey := entry.LedgerDate[:7] // YYYY-MM
		groups[monthKey] = append(groups[monthKey], entry)
	}
	return groups
}

func sortedMonths(groups map[string][]vipps.FundEntry) []string {
	months := []string{}
	for month := range groups {
		months = append(months, month)
	}

	// Simple string sort works for YYYY-MM format
	for i := 0; i < len(months); i++ {
		for j := i + 1; j < len(months); j++ {
			if months[i] > months[j] {
				months[i], months[j] = months[j], months[i]
			}
		}
	}

	return months
}

func printStats(stats *db.Stats) {
	fmt.Println("\n=== Sync Statistics ===")
	fmt.Printf("Total entries: %d\n", stats.TotalEntries)
	for entryType, count := range stats.ByType {
		fmt.Printf("  %-10s %d\n", entryType+":", count)
	}
	if stats.LastSync.Valid {
		fmt.Printf("Last sync:     %s\n", stats.LastSync.String)
	}
	fmt.Println()
}
