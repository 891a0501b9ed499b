// Package snapshot exports the final account snapshot and the audit
// journal to an external store at the end of a run. The stores are
// write-only reporting sinks; the engine never reads them back.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tx-ledger/internal/engine"
	"github.com/example/tx-ledger/pkg/audit"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	client_id INTEGER PRIMARY KEY,
	available TEXT NOT NULL,
	held      TEXT NOT NULL,
	total     TEXT NOT NULL,
	locked    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_entries (
	id            TEXT PRIMARY KEY,
	seq           INTEGER NOT NULL,
	ts            TEXT NOT NULL,
	previous_hash TEXT NOT NULL,
	payload       TEXT NOT NULL,
	hash          TEXT NOT NULL
);
`

// SQLiteStore writes run results to a local SQLite file. Amounts are
// stored as exact decimal strings, never floats.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists. Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ExportSnapshot writes one row per account, replacing any earlier
// export of the same client id.
func (s *SQLiteStore) ExportSnapshot(ctx context.Context, accounts []engine.AccountView) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = `
		INSERT OR REPLACE INTO accounts (client_id, available, held, total, locked)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, acct := range accounts {
		_, err := tx.ExecContext(ctx, insert,
			acct.ClientID,
			acct.Available.String(),
			acct.Held.String(),
			acct.Total.String(),
			acct.Locked)
		if err != nil {
			return fmt.Errorf("inserting account %d: %w", acct.ClientID, err)
		}
	}

	return tx.Commit()
}

// ExportJournal writes the audit journal entries in chain order.
func (s *SQLiteStore) ExportJournal(ctx context.Context, entries []*audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = `
		INSERT OR REPLACE INTO audit_entries (id, seq, ts, previous_hash, payload, hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, insert,
			e.ID, e.Seq, e.Timestamp, e.PreviousHash, e.Payload, e.Hash)
		if err != nil {
			return fmt.Errorf("inserting audit entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
