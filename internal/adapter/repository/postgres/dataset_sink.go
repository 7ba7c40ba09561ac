package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/amlsynth/internal/domain"
)

var accountColumns = []string{
	"run_id", "account_id", "owner_id", "owner_type", "owner_name", "bank_id", "currency", "launderer",
}

var entryColumns = []string{
	"run_id", "entry_id", "transaction_id", "ts", "post_date", "account_id", "counterparty",
	"direction", "amount", "currency", "payment_type", "is_laundering", "source_description",
	"channel", "atm_id", "atm_location", "wire_details",
}

// DatasetSink bulk-loads a dataset into PostgreSQL. A run is written in one
// transaction; writing the same run id again replaces the earlier copy.
type DatasetSink struct {
	tx      *TxManager
	retrier *Retrier
	logger  zerolog.Logger
}

// NewDatasetSink creates a DatasetSink over a pool.
func NewDatasetSink(pool pgxPool, retrier *Retrier, logger zerolog.Logger) *DatasetSink {
	return &DatasetSink{
		tx:      NewTxManager(pool),
		retrier: retrier,
		logger:  logger,
	}
}

func (s *DatasetSink) Name() string { return "postgres" }

// Write implements usecase.DatasetSink.
func (s *DatasetSink) Write(ctx context.Context, ds *domain.Dataset) error {
	summary, err := json.Marshal(ds.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	entryRows, err := entryRows(ds)
	if err != nil {
		return err
	}

	return s.retrier.Retry(ctx, func() error {
		return s.tx.InTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `DELETE FROM generation_runs WHERE run_id = $1`, ds.RunID); err != nil {
				return fmt.Errorf("clear run: %w", err)
			}

			if _, err := tx.Exec(ctx,
				`INSERT INTO generation_runs (run_id, seed, generated_at, summary) VALUES ($1, $2, $3, $4)`,
				ds.RunID, seedToNumeric(ds.Seed), ds.GeneratedAt, summary,
			); err != nil {
				return fmt.Errorf("insert run: %w", err)
			}

			n, err := tx.CopyFrom(ctx, pgx.Identifier{"accounts"}, accountColumns, pgx.CopyFromRows(accountRows(ds)))
			if err != nil {
				return fmt.Errorf("copy accounts: %w", err)
			}
			s.logger.Debug().Str("run_id", ds.RunID).Int64("rows", n).Msg("copied accounts")

			n, err = tx.CopyFrom(ctx, pgx.Identifier{"ledger_entries"}, entryColumns, pgx.CopyFromRows(entryRows))
			if err != nil {
				return fmt.Errorf("copy ledger entries: %w", err)
			}
			s.logger.Debug().Str("run_id", ds.RunID).Int64("rows", n).Msg("copied ledger entries")

			return nil
		})
	})
}

func accountRows(ds *domain.Dataset) [][]any {
	rows := make([][]any, len(ds.Accounts))
	for i, a := range ds.Accounts {
		rows[i] = []any{ds.RunID, a.ID, a.OwnerID, string(a.OwnerKind), a.OwnerName, a.BankID, a.Currency, a.Launderer}
	}
	return rows
}

func entryRows(ds *domain.Dataset) ([][]any, error) {
	rows := make([][]any, len(ds.Entries))
	for i := range ds.Entries {
		e := &ds.Entries[i]

		var wire []byte
		if e.WireDetails != nil {
			var err error
			if wire, err = json.Marshal(e.WireDetails); err != nil {
				return nil, fmt.Errorf("encode wire details of %s: %w", e.EntryID, err)
			}
		}

		rows[i] = []any{
			ds.RunID, e.EntryID, e.TransactionID, e.Timestamp, nullableTime(e.PostDate),
			e.AccountID, e.Counterparty, string(e.Direction), decimalToNumeric(e.Amount),
			e.Currency, string(e.PaymentType), e.IsLaundering, e.SourceDescription,
			e.Channel, e.ATMID, e.ATMLocation, wire,
		}
	}
	return rows, nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func seedToNumeric(seed uint64) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(strconv.FormatUint(seed, 10))

	return n
}

func nullableTime(t time.Time) pgtype.Timestamp {
	return pgtype.Timestamp{Time: t, Valid: !t.IsZero()}
}
