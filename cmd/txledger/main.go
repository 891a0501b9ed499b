// Command txledger replays a CSV transaction log through the ledger
// engine and prints the final per-client account snapshot as CSV on
// stdout.
//
// Usage:
//
//	txledger transactions.csv > accounts.csv
//
// Optional environment variables (see internal/config) select a log
// level and SQLite/Postgres targets for exporting the snapshot and the
// audit journal after the run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/tx-ledger/internal/config"
	"github.com/example/tx-ledger/internal/csvio"
	"github.com/example/tx-ledger/internal/engine"
	"github.com/example/tx-ledger/internal/snapshot"
	"github.com/example/tx-ledger/pkg/audit"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: txledger <transactions.csv>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "txledger: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "txledger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "txledger: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	f, err := os.Open(os.Args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	eng := engine.New(logger)
	journal := audit.NewChainLogger()
	reader := csvio.NewReader(f, logger)

	for {
		ev, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Structural input errors abort the whole run.
			return err
		}

		outcome := eng.Apply(ev)
		journal.Append(fmt.Sprintf("%s client=%d tx=%d outcome=%s",
			ev.Kind, ev.ClientID, ev.TxID, outcome))
	}

	accounts := eng.Snapshot()
	if err := csvio.NewWriter(os.Stdout).WriteSnapshot(accounts); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	logger.Info("run complete",
		zap.Int("accounts", len(accounts)),
		zap.Int("events", journal.Len()))

	return export(cfg, logger, accounts, journal.Entries())
}

// export writes the snapshot and journal to whichever stores are
// configured. The engine's own output is already on stdout by the time
// this runs.
func export(cfg *config.Config, logger *zap.Logger, accounts []engine.AccountView, entries []*audit.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.SQLitePath != "" {
		store, err := snapshot.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		defer store.Close()

		if err := store.ExportSnapshot(ctx, accounts); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		if err := store.ExportJournal(ctx, entries); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		logger.Info("snapshot exported", zap.String("target", "sqlite"), zap.String("path", cfg.SQLitePath))
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres export: %w", err)
		}
		defer pool.Close()

		store := snapshot.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("postgres export: %w", err)
		}
		if err := store.ExportSnapshot(ctx, accounts); err != nil {
			return fmt.Errorf("postgres export: %w", err)
		}
		if err := store.ExportJournal(ctx, entries); err != nil {
			return fmt.Errorf("postgres export: %w", err)
		}
		logger.Info("snapshot exported", zap.String("target", "postgres"))
	}

	return nil
}

// newLogger builds a console logger on stderr so diagnostics never mix
// with the snapshot CSV on stdout.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
