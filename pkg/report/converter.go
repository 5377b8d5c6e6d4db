package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dagskassen/vipps-accounting/pkg/vipps"
)

// Transaction represents a plain-text ledger transaction.
type Transaction struct {
	Date      string // YYYY-MM-DD
	Payee     string
	Narration string
	Tags      []string
	Postings  []Posting
}

// Posting represents a posting in a ledger transaction.
type Posting struct {
	Account  string
	Amount   decimal.Decimal
	Currency string
	Comment  string
}

// Converter converts Report API fund entries to ledger transactions.
type Converter struct {
	mapper   *Mapper
	currency string
}

// NewConverter creates a new Converter. currency is the ledger currency
// used when an entry carries none, normally taken from the settlement
// ledger info.
func NewConverter(mapper *Mapper, currency string) *Converter {
	if currency == "" {
		currency = "DKK"
	}
	return &Converter{
		mapper:   mapper,
		currency: currency,
	}
}

// Convert converts a fund entry to a balanced ledger transaction.
//
// Every entry moves its net amount through the settlement account, books
// any withheld fee on the fee account, and counters the gross amount on
// the account mapped for the entry type. Net plus fee always equals
// gross, so the postings sum to zero.
func (c *Converter) Convert(entry vipps.FundEntry) Transaction {
	currency := entry.Currency
	if currency == "" {
		currency = c.currency
	}

	net := minorToDecimal(entry.Amount)
	gross := minorToDecimal(entry.GrossAmount)
	fee := minorToDecimal(entry.Fee)

	postings := []Posting{
		{
			Account:  c.mapper.SettlementAccount(),
			Amount:   net,
			Currency: currency,
		},
	}

	if !fee.IsZero() {
		postings = append(postings, Posting{
			Account:  c.mapper.FeeAccount(),
			Amount:   fee,
			Currency: currency,
			Comment:  "transaction fee",
		})
	}

	postings = append(postings, Posting{
		Account:  c.mapper.AccountFor(entry.EntryType),
		Amount:   gross.Neg(),
		Currency: currency,
	})

	return Transaction{
		Date:      entry.LedgerDate,
		Payee:     entry.Name,
		Narration: buildNarration(entry),
		Tags:      buildTags(entry),
		Postings:  postings,
	}
}

// FormatTransaction formats a ledger transaction as a string.
func (c *Converter) FormatTransaction(txn Transaction) string {
	var sb strings.Builder

	// Transaction header
	sb.WriteString(txn.Date)
	sb.WriteString(" *")
	if txn.Payee != "" {
		sb.WriteString(fmt.Sprintf(" %q", txn.Payee))
	}
	sb.WriteString(fmt.Sprintf(" %q", txn.Narration))
	if len(txn.Tags) > 0 {
		sb.WriteString(" #")
		sb.WriteString(strings.Join(txn.Tags, " #"))
	}
	sb.WriteString("\n")

	// Postings, amounts right-aligned
	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		spaces := 60 - len(posting.Account)
		if spaces < 1 {
			spaces = 1
		}
		sb.WriteString(strings.Repeat(" ", spaces))

		sb.WriteString(posting.Amount.StringFixed(2))
		sb.WriteString(" ")
		sb.WriteString(posting.Currency)

		if posting.Comment != "" {
			sb.WriteString(fmt.Sprintf(" ; %s", posting.Comment))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// minorToDecimal converts an amount in minor units (øre) to a decimal
// with two fractional digits.
func minorToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func buildNarration(entry vipps.FundEntry) string {
	if entry.Reference != "" {
		return fmt.Sprintf("Vipps %s %s", entry.EntryType, entry.Reference)
	}
	return fmt.Sprintf("Vipps %s", entry.EntryType)
}

func buildTags(entry vipps.FundEntry) []string {
	if entry.PSPReference == "" {
		return nil
	}
	return []string{entry.PSPReference}
}
