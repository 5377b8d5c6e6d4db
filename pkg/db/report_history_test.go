package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRecordAndIsRecorded(t *testing.T) {
	history := NewReportHistory(openTestDB(t))

	record := ReportRecord{
		EntryType:    "payment",
		PSPReference: "psp-1",
		LedgerDate:   "2024-02-29",
		Amount:       2455,
		Currency:     "DKK",
		LedgerFile:   "2024-02",
	}

	if err := history.Record(record); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	recorded, err := history.IsRecorded("payment", "psp-1")
	if err != nil {
		t.Fatalf("IsRecorded() error = %v", err)
	}
	if !recorded {
		t.Error("IsRecorded() = false after Record()")
	}

	recorded, err = history.IsRecorded("refund", "psp-1")
	if err != nil {
		t.Fatalf("IsRecorded() error = %v", err)
	}
	if recorded {
		t.Error("IsRecorded() = true for a different entry type")
	}

	// Re-recording the same entry must not create a duplicate
	if err := history.Record(record); err != nil {
		t.Fatalf("Record() error on upsert = %v", err)
	}

	keys, err := history.RecordedKeys()
	if err != nil {
		t.Fatalf("RecordedKeys() error = %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("RecordedKeys() has %d keys, expected 1", len(keys))
	}
	if !keys[RecordKey("payment", "psp-1")] {
		t.Error("RecordedKeys() is missing the recorded entry")
	}
}

func TestFeedCursorRoundTrip(t *testing.T) {
	history := NewReportHistory(openTestDB(t))

	cursor, err := history.GetFeedCursor()
	if err != nil {
		t.Fatalf("GetFeedCursor() error = %v", err)
	}
	if cursor != "" {
		t.Errorf("initial cursor = %q, expected empty", cursor)
	}

	if err := history.SetFeedCursor("c42"); err != nil {
		t.Fatalf("SetFeedCursor() error = %v", err)
	}
	if err := history.SetFeedCursor("c43"); err != nil {
		t.Fatalf("SetFeedCursor() error on update = %v", err)
	}

	cursor, err = history.GetFeedCursor()
	if err != nil {
		t.Fatalf("GetFeedCursor() error = %v", err)
	}
	if cursor != "c43" {
		t.Errorf("cursor = %q, expected c43", cursor)
	}
}

func TestGetStats(t *testing.T) {
	history := NewReportHistory(openTestDB(t))

	records := []ReportRecord{
		{EntryType: "payment", PSPReference: "psp-1", LedgerDate: "2024-02-29", Amount: 2455, Currency: "DKK", LedgerFile: "2024-02"},
		{EntryType: "payment", PSPReference: "psp-2", LedgerDate: "2024-02-29", Amount: 1000, Currency: "DKK", LedgerFile: "2024-02"},
		{EntryType: "payout", PSPReference: "psp-3", LedgerDate: "2024-03-01", Amount: -3455, Currency: "DKK", LedgerFile: "2024-03"},
	}
	for _, record := range records {
		if err := history.Record(record); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	stats, err := history.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if stats.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, expected 3", stats.TotalEntries)
	}
	if stats.ByType["payment"] != 2 || stats.ByType["payout"] != 1 {
		t.Errorf("ByType = %v", stats.ByType)
	}
	if !stats.LastSync.Valid {
		t.Error("LastSync should be set")
	}
}

func TestDelete(t *testing.T) {
	history := NewReportHistory(openTestDB(t))

	if err := history.Record(ReportRecord{
		EntryType: "payment", PSPReference: "psp-1",
		LedgerDate: "2024-02-29", Amount: 2455, Currency: "DKK", LedgerFile: "2024-02",
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	deleted, err := history.Delete("payment", "psp-1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("Delete() = false for existing record")
	}

	deleted, err = history.Delete("payment", "psp-1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("Delete() = true for missing record")
	}
}
