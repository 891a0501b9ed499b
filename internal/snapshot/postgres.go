package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/tx-ledger/internal/engine"
	"github.com/example/tx-ledger/pkg/audit"
)

// DB is the subset of the pgxpool.Pool API the store uses; tests
// substitute a mock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore writes run results to Postgres.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a store backed by db.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the export tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			client_id INTEGER PRIMARY KEY,
			available NUMERIC(20,4) NOT NULL,
			held      NUMERIC(20,4) NOT NULL,
			total     NUMERIC(20,4) NOT NULL,
			locked    BOOLEAN NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id            TEXT PRIMARY KEY,
			seq           INTEGER NOT NULL,
			ts            TEXT NOT NULL,
			previous_hash TEXT NOT NULL,
			payload       TEXT NOT NULL,
			hash          TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// ExportSnapshot upserts one row per account.
func (s *PostgresStore) ExportSnapshot(ctx context.Context, accounts []engine.AccountView) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	const upsert = `
		INSERT INTO accounts (client_id, available, held, total, locked)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id) DO UPDATE SET
			available = EXCLUDED.available,
			held      = EXCLUDED.held,
			total     = EXCLUDED.total,
			locked    = EXCLUDED.locked
	`
	for _, acct := range accounts {
		_, err := s.db.Exec(ctx, upsert,
			int32(acct.ClientID),
			acct.Available.String(),
			acct.Held.String(),
			acct.Total.String(),
			acct.Locked)
		if err != nil {
			return fmt.Errorf("upserting account %d: %w", acct.ClientID, err)
		}
	}
	return nil
}

// ExportJournal inserts the audit journal entries in chain order.
func (s *PostgresStore) ExportJournal(ctx context.Context, entries []*audit.Entry) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	const insert = `
		INSERT INTO audit_entries (id, seq, ts, previous_hash, payload, hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	for _, e := range entries {
		_, err := s.db.Exec(ctx, insert,
			e.ID, e.Seq, e.Timestamp, e.PreviousHash, e.Payload, e.Hash)
		if err != nil {
			return fmt.Errorf("inserting audit entry %s: %w", e.ID, err)
		}
	}
	return nil
}
