package db

import (
	"database/sql"
	"fmt"
	"time"
)

// ReportRecord represents a report history record.
type ReportRecord struct {
	ID           int64
	EntryType    string
	PSPReference string
	LedgerDate   string
	Amount       int64
	Currency     string
	LedgerFile   string
	RecordedAt   time.Time
}

// Key returns the duplicate-suppression key for a record.
func (r ReportRecord) Key() string {
	return r.EntryType + "/" + r.PSPReference
}

// RecordKey builds the duplicate-suppression key for an entry.
func RecordKey(entryType, pspReference string) string {
	return entryType + "/" + pspReference
}

// ReportHistory manages report history operations.
type ReportHistory struct {
	conn *Connection
}

// NewReportHistory creates a new ReportHistory instance.
func NewReportHistory(conn *Connection) *ReportHistory {
	return &ReportHistory{conn: conn}
}

// Record records a written fund entry.
// If the record already exists (same entry_type + psp_reference), it updates it.
func (h *ReportHistory) Record(record ReportRecord) error {
	query := `
		INSERT INTO report_history (entry_type, psp_reference, ledger_date, amount, currency, ledger_file)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entry_type, psp_reference) DO UPDATE SET
			ledger_date = excluded.ledger_date,
			amount = excluded.amount,
			currency = excluded.currency,
			ledger_file = excluded.ledger_file,
			recorded_at = CURRENT_TIMESTAMP
	`

	_, err := h.conn.Exec(query,
		record.EntryType,
		record.PSPReference,
		record.LedgerDate,
		record.Amount,
		record.Currency,
		record.LedgerFile,
	)

	if err != nil {
		return fmt.Errorf("failed to record report entry: %w", err)
	}

	return nil
}

// IsRecorded checks if a fund entry has already been written.
func (h *ReportHistory) IsRecorded(entryType, pspReference string) (bool, error) {
	query := `
		SELECT COUNT(*) as count FROM report_history
		WHERE entry_type = ? AND psp_reference = ?
	`

	var count int
	err := h.conn.QueryRow(query, entryType, pspReference).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if recorded: %w", err)
	}

	return count > 0, nil
}

// RecordedKeys retrieves the duplicate-suppression keys of every
// recorded entry. Useful for bulk filtering before a sync.
func (h *ReportHistory) RecordedKeys() (map[string]bool, error) {
	query := `SELECT entry_type, psp_reference FROM report_history`

	rows, err := h.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get recorded keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var entryType, pspReference string
		if err := rows.Scan(&entryType, &pspReference); err != nil {
			return nil, fmt.Errorf("failed to scan recorded key: %w", err)
		}
		keys[RecordKey(entryType, pspReference)] = true
	}

	return keys, nil
}

// GetRecordsByDate retrieves all records for a ledger date.
func (h *ReportHistory) GetRecordsByDate(ledgerDate string) ([]ReportRecord, error) {
	query := `
		SELECT id, entry_type, psp_reference, ledger_date, amount, currency, ledger_file, recorded_at
		FROM report_history
		WHERE ledger_date = ?
		ORDER BY id
	`

	rows, err := h.conn.Query(query, ledgerDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get records by date: %w", err)
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		var record ReportRecord
		if err := rows.Scan(
			&record.ID,
			&record.EntryType,
			&record.PSPReference,
			&record.LedgerDate,
			&record.Amount,
			&record.Currency,
			&record.LedgerFile,
			&record.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// Delete deletes a report record.
// Use case: force re-sync of a specific fund entry.
func (h *ReportHistory) Delete(entryType, pspReference string) (bool, error) {
	query := `DELETE FROM report_history WHERE entry_type = ? AND psp_reference = ?`

	result, err := h.conn.Exec(query, entryType, pspReference)
	if err != nil {
		return false, fmt.Errorf("failed to delete report record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Stats represents sync statistics.
type Stats struct {
	TotalEntries int
	ByType       map[string]int
	LastSync     sql.NullString
}

// GetStats retrieves sync statistics.
func (h *ReportHistory) GetStats() (*Stats, error) {
	stats := &Stats{ByType: make(map[string]int)}

	err := h.conn.QueryRow(`SELECT COUNT(*) FROM report_history`).Scan(&stats.TotalEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry count: %w", err)
	}

	rows, err := h.conn.Query(`SELECT entry_type, COUNT(*) FROM report_history GROUP BY entry_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryType string
		var count int
		if err := rows.Scan(&entryType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan per-type count: %w", err)
		}
		stats.ByType[entryType] = count
	}

	err = h.conn.QueryRow(`SELECT MAX(recorded_at) FROM report_history`).Scan(&stats.LastSync)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last sync time: %w", err)
	}

	return stats, nil
}

// GetMetadata retrieves a metadata value.
func (h *ReportHistory) GetMetadata(key string) (string, error) {
	query := `SELECT value FROM sync_metadata WHERE key = ?`

	var value string
	err := h.conn.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (h *ReportHistory) SetMetadata(key, value string) error {
	query := `
		INSERT INTO sync_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := h.conn.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}

// GetFeedCursor returns the persisted funds feed cursor, or "" if the
// feed has never been drained.
func (h *ReportHistory) GetFeedCursor() (string, error) {
	return h.GetMetadata(MetadataKeyFeedCursor)
}

// SetFeedCursor persists the funds feed cursor.
func (h *ReportHistory) SetFeedCursor(cursor string) error {
	return h.SetMetadata(MetadataKeyFeedCursor, cursor)
}
