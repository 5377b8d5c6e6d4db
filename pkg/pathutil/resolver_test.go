package pathutil

import (
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	resolver := New(Config{LedgerRoot: "/accounting/ledger"})

	expected := filepath.Join("/accounting/ledger", ".sync", "sync.db")
	if got := resolver.GetDatabasePath(); got != expected {
		t.Errorf("GetDatabasePath() = %q, expected %q", got, expected)
	}
}

func TestExplicitDatabasePath(t *testing.T) {
	resolver := New(Config{
		LedgerRoot:   "/accounting/ledger",
		DatabasePath: "/var/lib/vipps/sync.db",
	})

	if got := resolver.GetDatabasePath(); got != "/var/lib/vipps/sync.db" {
		t.Errorf("GetDatabasePath() = %q", got)
	}
}

func TestGetMonthFilePath(t *testing.T) {
	resolver := New(Config{LedgerRoot: "/accounting/ledger"})

	path, err := resolver.GetMonthFilePath("2024-01")
	if err != nil {
		t.Fatalf("GetMonthFilePath() error = %v", err)
	}

	expected := filepath.Join("/accounting/ledger", "2024", "2024-01.beancount")
	if path != expected {
		t.Errorf("GetMonthFilePath() = %q, expected %q", path, expected)
	}
}

func TestGetMonthFilePathInvalid(t *testing.T) {
	resolver := New(Config{LedgerRoot: "/accounting/ledger"})

	tests := []string{"2024", "2024-1", "24-01", "2024/01"}
	for _, yearMonth := range tests {
		t.Run(yearMonth, func(t *testing.T) {
			if _, err := resolver.GetMonthFilePath(yearMonth); err == nil {
				t.Errorf("GetMonthFilePath(%q) expected error", yearMonth)
			}
		})
	}
}
