package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/iho/amlsynth/internal/domain"
)

const (
	sheetTransactions = "transactions"
	sheetAccounts     = "accounts"
	sheetEntities     = "entities"
	sheetSummary      = "summary"
)

// XLSXSink writes a workbook with one sheet each for entries, accounts,
// entities and the run summary.
type XLSXSink struct {
	path string
}

// NewXLSXSink creates an XLSXSink writing to path.
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path}
}

func (s *XLSXSink) Name() string { return "xlsx" }

// Write implements usecase.DatasetSink.
func (s *XLSXSink) Write(ctx context.Context, ds *domain.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetAccounts, sheetEntities, sheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeEntrySheet(ctx, f, ds.Entries); err != nil {
		return err
	}

	accounts := make([][]any, len(ds.Accounts))
	for i, a := range ds.Accounts {
		accounts[i] = toRow(accountRecord(a))
	}
	if err := writeSheet(f, sheetAccounts, accountColumns, accounts); err != nil {
		return err
	}

	entities := make([][]any, len(ds.Entities))
	for i, e := range ds.Entities {
		entities[i] = []any{e.ID, e.Name, string(e.Kind), e.Country, e.Address, string(e.Visibility), len(e.Accounts), e.Launderer}
	}
	if err := writeSheet(f, sheetEntities, []string{"entity_id", "name", "kind", "country", "address", "visibility", "accounts", "launderer"}, entities); err != nil {
		return err
	}

	if err := writeSheet(f, sheetSummary, []string{"metric", "value"}, summaryRows(ds)); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}

func writeEntrySheet(ctx context.Context, f *excelize.File, entries []domain.LedgerEntry) error {
	sw, err := f.NewStreamWriter(sheetTransactions)
	if err != nil {
		return fmt.Errorf("open %s: %w", sheetTransactions, err)
	}

	if err := sw.SetRow("A1", toRow(entryColumns)); err != nil {
		return err
	}

	amountCol := indexOf(entryColumns, "amount")
	launderingCol := indexOf(entryColumns, "is_laundering")

	for i := range entries {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		row := toRow(entryRecord(&entries[i]))
		row[amountCol] = entries[i].Amount.InexactFloat64()
		row[launderingCol] = entries[i].IsLaundering

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write entry %s: %w", entries[i].EntryID, err)
		}
	}

	return sw.Flush()
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open %s: %w", sheet, err)
	}

	if err := sw.SetRow("A1", toRow(header)); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	return sw.Flush()
}

func summaryRows(ds *domain.Dataset) [][]any {
	s := ds.Summary
	return [][]any{
		{"run_id", ds.RunID},
		{"seed", strconv.FormatUint(ds.Seed, 10)},
		{"generated_at", ds.GeneratedAt.Format(domain.TimestampLayout)},
		{"accounts", s.Accounts},
		{"known_accounts", s.KnownAccounts},
		{"accounts_eligible", s.AccountsEligible},
		{"legit_entries", s.LegitEntries},
		{"laundering_entries", s.LaunderingEntries},
		{"total_entries", s.TotalEntries},
		{"tainted_entries", s.TaintedEntries},
		{"propagation_passes", s.PropagationPasses},
		{"flagged_accounts", s.FlaggedAccounts},
		{"flagged_entities", s.FlaggedEntities},
		{"patterns_skipped", s.PatternsSkipped},
		{"transactions_gated", s.TransactionsGated},
	}
}

func toRow(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
