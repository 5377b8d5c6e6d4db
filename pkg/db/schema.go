// Package db provides SQLite storage for report sync history and
// durable sync metadata such as the funds feed cursor.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Report history table
-- Tracks which fund entries have been written to ledger files
CREATE TABLE IF NOT EXISTS report_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_type TEXT NOT NULL,          -- payment, refund, payout, fee
    psp_reference TEXT NOT NULL,       -- PSP reference from the Report API
    ledger_date TEXT NOT NULL,         -- YYYY-MM-DD
    amount INTEGER NOT NULL,           -- Net amount in minor units
    currency TEXT NOT NULL,            -- ISO currency code (DKK, NOK, EUR)
    ledger_file TEXT NOT NULL,         -- Path to the ledger file written
    recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(entry_type, psp_reference)
);

CREATE INDEX IF NOT EXISTS idx_report_history_type_ref
    ON report_history(entry_type, psp_reference);

CREATE INDEX IF NOT EXISTS idx_report_history_date
    ON report_history(ledger_date);

-- Sync metadata table
-- Stores key-value metadata about sync operations (e.g. feed cursor)
CREATE TABLE IF NOT EXISTS sync_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// MetadataKeyFeedCursor is the sync_metadata key holding the funds feed
// cursor between runs.
const MetadataKeyFeedCursor = "feed_cursor"

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
