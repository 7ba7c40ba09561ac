package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iho/amlsynth/internal/domain"
)

// CSVSink writes entries to a CSV file and accounts to a sibling file named
// <base>_accounts.csv.
type CSVSink struct {
	path string
}

// NewCSVSink creates a CSVSink writing to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Name() string { return "csv" }

// Write implements usecase.DatasetSink.
func (s *CSVSink) Write(ctx context.Context, ds *domain.Dataset) error {
	if err := writeFile(s.path, func(w io.Writer) error {
		return WriteEntries(ctx, w, ds.Entries)
	}); err != nil {
		return err
	}

	return writeFile(AccountsPath(s.path), func(w io.Writer) error {
		return WriteAccounts(w, ds.Accounts)
	})
}

// AccountsPath returns the accounts file written next to an entries file.
func AccountsPath(entriesPath string) string {
	ext := filepath.Ext(entriesPath)
	return strings.TrimSuffix(entriesPath, ext) + "_accounts.csv"
}

// WriteEntries writes a header and one row per entry.
func WriteEntries(ctx context.Context, w io.Writer, entries []domain.LedgerEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(entryColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range entries {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := cw.Write(entryRecord(&entries[i])); err != nil {
			return fmt.Errorf("write entry %s: %w", entries[i].EntryID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteAccounts writes a header and one row per account.
func WriteAccounts(w io.Writer, accounts []*domain.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(accountColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range accounts {
		if err := cw.Write(accountRecord(a)); err != nil {
			return fmt.Errorf("write account %s: %w", a.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeFile(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := fn(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
