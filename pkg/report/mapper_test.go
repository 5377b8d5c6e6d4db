package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewMapperFromYAML(t *testing.T) {
	content := `
settlement_account: Assets:Vipps:Settlement
fee_account: Expenses:Fees:Vipps
fallback_account: Income:Uncategorized
entry_types:
  - type: payment
    account: Income:Sales:Vipps
  - type: payout
    account: Assets:Bank:Checking
`
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write mapping file: %v", err)
	}

	mapper, err := NewMapper(path)
	if err != nil {
		t.Fatalf("NewMapper() error = %v", err)
	}

	tests := []struct {
		entryType string
		expected  string
	}{
		{"payment", "Income:Sales:Vipps"},
		{"payout", "Assets:Bank:Checking"},
		{"adjustment", "Income:Uncategorized"},
	}

	for _, tt := range tests {
		t.Run(tt.entryType, func(t *testing.T) {
			if got := mapper.AccountFor(tt.entryType); got != tt.expected {
				t.Errorf("AccountFor(%q) = %q, expected %q", tt.entryType, got, tt.expected)
			}
		})
	}

	if mapper.SettlementAccount() != "Assets:Vipps:Settlement" {
		t.Errorf("SettlementAccount() = %q", mapper.SettlementAccount())
	}
	if mapper.HasMapping("adjustment") {
		t.Error("HasMapping(adjustment) = true, expected false")
	}
}

func TestNewMapperMissingFile(t *testing.T) {
	if _, err := NewMapper(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("NewMapper() expected error for missing file")
	}
}

func TestNewMapperFromConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config MappingConfig
	}{
		{"missing settlement account", MappingConfig{FallbackAccount: "Income:Uncategorized"}},
		{"missing fallback account", MappingConfig{SettlementAccount: "Assets:Vipps:Settlement"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMapperFromConfig(tt.config); err == nil {
				t.Error("NewMapperFromConfig() expected error")
			}
		})
	}
}
