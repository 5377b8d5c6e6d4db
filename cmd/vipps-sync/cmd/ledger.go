package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dagskassen/vipps-accounting/pkg/config"
)

// ledgerCmd represents the ledger command.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Display settlement ledger info",
	Long: `Display the settlement ledger that settles for the configured
MyShop number: ledger ID, currency, payout bank account and owner.

Example:
  vipps-sync ledger`,
	Run: runLedger,
}

func runLedger(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		[]string{"vipps", "apiUrl"},
		[]string{"vipps", "myshopNumber"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	client, err := newReportClient(cfg)
	exitOnError(err, "failed to build API client")

	slog.Info("Fetching ledger info", "recipient_handle", client.RecipientHandle())
	info, err := client.LedgerInfo()
	exitOnError(err, "failed to fetch ledger info")

	fmt.Println("\n=== Settlement Ledger ===")
	fmt.Printf("Ledger ID:      %s\n", info.LedgerID)
	fmt.Printf("Currency:       %s\n", info.Currency)
	fmt.Printf("Payout account: %s %s\n", info.PayoutBankAccount.Scheme, info.PayoutBankAccount.ID)
	fmt.Printf("Owner:          %s %s\n", info.Owner.Scheme, info.Owner.ID)
	fmt.Printf("Settles for:    %s\n", strings.Join(info.SettlesForRecipientHandles, ", "))
	fmt.Println()
}
