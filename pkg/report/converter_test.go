package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dagskassen/vipps-accounting/pkg/vipps"
)

func testMapper(t *testing.T) *Mapper {
	t.Helper()
	mapper, err := NewMapperFromConfig(MappingConfig{
		SettlementAccount: "Assets:Vipps:Settlement",
		FeeAccount:        "Expenses:Fees:Vipps",
		FallbackAccount:   "Income:Uncategorized",
		EntryTypes: []EntryTypeMapping{
			{Type: "payment", Account: "Income:Sales:Vipps"},
			{Type: "payout", Account: "Assets:Bank:Checking"},
		},
	})
	if err != nil {
		t.Fatalf("NewMapperFromConfig() error = %v", err)
	}
	return mapper
}

func postingSum(postings []Posting) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range postings {
		sum = sum.Add(p.Amount)
	}
	return sum
}

func TestConvertPayment(t *testing.T) {
	converter := NewConverter(testMapper(t), "DKK")

	txn := converter.Convert(vipps.FundEntry{
		PSPReference: "psp-1",
		LedgerDate:   "2024-02-29",
		EntryType:    "payment",
		Reference:    "order-42",
		Currency:     "DKK",
		Amount:       2455,
		GrossAmount:  2500,
		Fee:          45,
	})

	if txn.Date != "2024-02-29" {
		t.Errorf("Date = %q", txn.Date)
	}
	if len(txn.Postings) != 3 {
		t.Fatalf("got %d postings, expected 3", len(txn.Postings))
	}

	if txn.Postings[0].Account != "Assets:Vipps:Settlement" {
		t.Errorf("settlement account = %q", txn.Postings[0].Account)
	}
	if txn.Postings[0].Amount.StringFixed(2) != "24.55" {
		t.Errorf("net = %s, expected 24.55", txn.Postings[0].Amount)
	}
	if txn.Postings[1].Account != "Expenses:Fees:Vipps" {
		t.Errorf("fee account = %q", txn.Postings[1].Account)
	}
	if txn.Postings[2].Amount.StringFixed(2) != "-25.00" {
		t.Errorf("counter = %s, expected -25.00", txn.Postings[2].Amount)
	}

	if !postingSum(txn.Postings).IsZero() {
		t.Errorf("postings sum to %s, expected zero", postingSum(txn.Postings))
	}
}

func TestConvertPayoutNoFee(t *testing.T) {
	converter := NewConverter(testMapper(t), "DKK")

	txn := converter.Convert(vipps.FundEntry{
		PSPReference: "psp-2",
		LedgerDate:   "2024-03-01",
		EntryType:    "payout",
		Currency:     "DKK",
		Amount:       -2455,
		GrossAmount:  -2455,
		Fee:          0,
	})

	// No fee posting when the fee is zero
	if len(txn.Postings) != 2 {
		t.Fatalf("got %d postings, expected 2", len(txn.Postings))
	}
	if txn.Postings[1].Account != "Assets:Bank:Checking" {
		t.Errorf("counter account = %q", txn.Postings[1].Account)
	}
	if txn.Postings[1].Amount.StringFixed(2) != "24.55" {
		t.Errorf("counter = %s, expected 24.55", txn.Postings[1].Amount)
	}
	if !postingSum(txn.Postings).IsZero() {
		t.Errorf("postings sum to %s, expected zero", postingSum(txn.Postings))
	}
}

func TestConvertUnmappedEntryType(t *testing.T) {
	converter := NewConverter(testMapper(t), "DKK")

	txn := converter.Convert(vipps.FundEntry{
		EntryType:   "adjustment",
		LedgerDate:  "2024-03-01",
		Amount:      100,
		GrossAmount: 100,
	})

	last := txn.Postings[len(txn.Postings)-1]
	if last.Account != "Income:Uncategorized" {
		t.Errorf("counter account = %q, expected the fallback", last.Account)
	}

	// Entry without its own currency falls back to the ledger currency
	if last.Currency != "DKK" {
		t.Errorf("currency = %q, expected DKK", last.Currency)
	}
}

func TestFormatTransaction(t *testing.T) {
	converter := NewConverter(testMapper(t), "DKK")

	txn := converter.Convert(vipps.FundEntry{
		PSPReference: "psp-1",
		LedgerDate:   "2024-02-29",
		EntryType:    "payment",
		Reference:    "order-42",
		Name:         "Jane Customer",
		Currency:     "DKK",
		Amount:       2455,
		GrossAmount:  2500,
		Fee:          45,
	})

	formatted := converter.FormatTransaction(txn)

	lines := strings.Split(strings.TrimRight(formatted, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, expected 4:\n%s", len(lines), formatted)
	}

	header := lines[0]
	if !strings.HasPrefix(header, `2024-02-29 * "Jane Customer" "Vipps payment order-42"`) {
		t.Errorf("unexpected header: %q", header)
	}
	if !strings.Contains(header, "#psp-1") {
		t.Errorf("header %q should tag the PSP reference", header)
	}

	if !strings.Contains(lines[1], "Assets:Vipps:Settlement") || !strings.Contains(lines[1], "24.55 DKK") {
		t.Errorf("unexpected settlement posting: %q", lines[1])
	}
	if !strings.Contains(lines[3], "-25.00 DKK") {
		t.Errorf("unexpected counter posting: %q", lines[3])
	}
}
