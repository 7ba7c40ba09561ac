// Package sqlite writes generated datasets into a single-file SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS generation_runs (
	run_id       TEXT PRIMARY KEY,
	seed         TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	summary      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	run_id     TEXT NOT NULL,
	account_id TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	owner_type TEXT NOT NULL,
	owner_name TEXT NOT NULL,
	bank_id    TEXT NOT NULL,
	currency   TEXT NOT NULL,
	launderer  INTEGER NOT NULL,
	PRIMARY KEY (run_id, account_id)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	run_id             TEXT NOT NULL,
	entry_id           TEXT NOT NULL,
	transaction_id     TEXT NOT NULL,
	ts                 TEXT NOT NULL,
	post_date          TEXT,
	account_id         TEXT NOT NULL,
	counterparty       TEXT NOT NULL,
	direction          TEXT NOT NULL CHECK (direction IN ('debit', 'credit')),
	amount             TEXT NOT NULL,
	currency           TEXT NOT NULL,
	payment_type       TEXT NOT NULL,
	is_laundering      INTEGER NOT NULL,
	source_description TEXT NOT NULL,
	channel            TEXT NOT NULL,
	atm_id             TEXT NOT NULL,
	atm_location       TEXT NOT NULL,
	wire_details       TEXT,
	PRIMARY KEY (run_id, entry_id)
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_ts ON ledger_entries (run_id, account_id, ts);
`

const (
	insertRun = `INSERT INTO generation_runs (run_id, seed, generated_at, summary) VALUES (?, ?, ?, ?)`

	insertAccount = `INSERT INTO accounts
	(run_id, account_id, owner_id, owner_type, owner_name, bank_id, currency, launderer)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	insertEntry = `INSERT INTO ledger_entries
	(run_id, entry_id, transaction_id, ts, post_date, account_id, counterparty, direction, amount,
	 currency, payment_type, is_laundering, source_description, channel, atm_id, atm_location, wire_details)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// DatasetSink writes a dataset into a SQLite file, replacing any earlier copy
// of the same run.
type DatasetSink struct {
	path   string
	logger zerolog.Logger
}

// NewDatasetSink creates a DatasetSink writing to path.
func NewDatasetSink(path string, logger zerolog.Logger) *DatasetSink {
	return &DatasetSink{path: path, logger: logger}
}

func (s *DatasetSink) Name() string { return "sqlite" }

// Write implements usecase.DatasetSink.
func (s *DatasetSink) Write(ctx context.Context, ds *domain.Dataset) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	db, err := Open(s.path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := writeDataset(ctx, db, ds); err != nil {
		return err
	}

	s.logger.Info().
		Str("path", s.path).
		Str("run_id", ds.RunID).
		Int("accounts", len(ds.Accounts)).
		Int("entries", len(ds.Entries)).
		Msg("dataset written to sqlite")

	return nil
}

// Open opens the database at path and creates the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

func writeDataset(ctx context.Context, db *sql.DB, ds *domain.Dataset) error {
	summary, err := json.Marshal(ds.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"ledger_entries", "accounts", "generation_runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", ds.RunID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, insertRun,
		ds.RunID, fmt.Sprint(ds.Seed), ds.GeneratedAt.Format(domain.TimestampLayout), string(summary),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	accStmt, err := tx.PrepareContext(ctx, insertAccount)
	if err != nil {
		return fmt.Errorf("prepare accounts: %w", err)
	}
	defer accStmt.Close()

	for _, a := range ds.Accounts {
		if _, err := accStmt.ExecContext(ctx,
			ds.RunID, a.ID, a.OwnerID, string(a.OwnerKind), a.OwnerName, a.BankID, a.Currency, a.Launderer,
		); err != nil {
			return fmt.Errorf("insert account %s: %w", a.ID, err)
		}
	}

	entryStmt, err := tx.PrepareContext(ctx, insertEntry)
	if err != nil {
		return fmt.Errorf("prepare entries: %w", err)
	}
	defer entryStmt.Close()

	for i := range ds.Entries {
		e := &ds.Entries[i]

		var postDate, wire any
		if !e.PostDate.IsZero() {
			postDate = e.PostDate.Format(domain.TimestampLayout)
		}
		if e.WireDetails != nil {
			data, err := json.Marshal(e.WireDetails)
			if err != nil {
				return fmt.Errorf("encode wire details of %s: %w", e.EntryID, err)
			}
			wire = string(data)
		}

		if _, err := entryStmt.ExecContext(ctx,
			ds.RunID, e.EntryID, e.TransactionID, e.Timestamp.Format(domain.TimestampLayout), postDate,
			e.AccountID, e.Counterparty, string(e.Direction), e.Amount.StringFixed(2),
			e.Currency, string(e.PaymentType), e.IsLaundering, e.SourceDescription,
			e.Channel, e.ATMID, e.ATMLocation, wire,
		); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.EntryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
