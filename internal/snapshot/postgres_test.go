package snapshot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tx-ledger/internal/engine"
	"github.com/example/tx-ledger/pkg/audit"
)

type execCall struct {
	sql  string
	args []any
}

// mockDB records every Exec and optionally fails.
type mockDB struct {
	calls []execCall
	err   error
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.calls = append(m.calls, execCall{sql: sql, args: args})
	if m.err != nil {
		return pgconn.CommandTag{}, m.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func snapshotFixture(t *testing.T) []engine.AccountView {
	t.Helper()
	e := engine.New(nil)
	e.Apply(engine.Event{Kind: engine.Deposit, ClientID: 1, TxID: 1, Amount: mustDec(t, "10.0")})
	e.Apply(engine.Event{Kind: engine.Deposit, ClientID: 2, TxID: 2, Amount: mustDec(t, "3.25")})
	e.Apply(engine.Event{Kind: engine.Dispute, ClientID: 2, TxID: 2})
	return e.Snapshot()
}

func TestEnsureSchema(t *testing.T) {
	db := &mockDB{}
	store := NewPostgresStore(db)

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.Len(t, db.calls, 2)
	assert.Contains(t, db.calls[0].sql, "CREATE TABLE IF NOT EXISTS accounts")
	assert.Contains(t, db.calls[1].sql, "CREATE TABLE IF NOT EXISTS audit_entries")
}

func TestExportSnapshot(t *testing.T) {
	db := &mockDB{}
	store := NewPostgresStore(db)

	require.NoError(t, store.ExportSnapshot(context.Background(), snapshotFixture(t)))
	require.Len(t, db.calls, 2)

	assert.Contains(t, db.calls[0].sql, "INSERT INTO accounts")
	assert.Equal(t, int32(1), db.calls[0].args[0])
	assert.Equal(t, "10", db.calls[0].args[1])

	// Client 2 has its deposit under dispute: available 0, held 3.25.
	assert.Equal(t, int32(2), db.calls[1].args[0])
	assert.Equal(t, "0", db.calls[1].args[1])
	assert.Equal(t, "3.25", db.calls[1].args[2])
	assert.Equal(t, "3.25", db.calls[1].args[3])
	assert.Equal(t, false, db.calls[1].args[4])
}

func TestExportSnapshotPropagatesError(t *testing.T) {
	db := &mockDB{err: errors.New("connection reset")}
	store := NewPostgresStore(db)

	err := store.ExportSnapshot(context.Background(), snapshotFixture(t))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "upserting account"))
}

func TestExportJournal(t *testing.T) {
	journal := audit.NewChainLogger()
	journal.Append("deposit client=1 tx=1 outcome=applied")
	journal.Append("dispute client=1 tx=1 outcome=applied")

	db := &mockDB{}
	store := NewPostgresStore(db)

	require.NoError(t, store.ExportJournal(context.Background(), journal.Entries()))
	require.Len(t, db.calls, 2)

	for i, call := range db.calls {
		assert.Contains(t, call.sql, "INSERT INTO audit_entries")
		require.Len(t, call.args, 6)
		assert.Equal(t, i, call.args[1])
	}
}
