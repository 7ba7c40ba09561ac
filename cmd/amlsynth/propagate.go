package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iho/amlsynth/internal/adapter/export"
	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
)

func newPropagateCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Relabel an exported CSV by propagating laundering taint",
		Long: `Reads a transactions CSV written by "generate", spreads the laundering label
along every flow reached by tainted funds, and writes the relabeled CSV.
Running it twice on the same file changes nothing the second time. The
output may be the input file; it is replaced only once the write succeeds.`,
		Example: `  amlsynth propagate --input transactions.csv --output relabeled.csv
  amlsynth propagate -i transactions.csv -o transactions.csv
  amlsynth propagate -i - < transactions.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			entries, err := a.readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			relabeled := a.propagate(entries)

			if output == "" || output == "-" {
				return export.WriteEntries(ctx, cmd.OutOrStdout(), relabeled)
			}
			return writeFileAtomic(output, func(w io.Writer) error {
				return export.WriteEntries(ctx, w, relabeled)
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "Transactions CSV to read, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Relabeled CSV to write, empty or - for stdout")

	return cmd
}

// readInput reads every entry before any output is opened, so input and
// output may name the same file.
func (a *app) readInput(stdin io.Reader, input string) ([]domain.LedgerEntry, error) {
	in := stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	entries, stats, err := export.ReadEntries(in, a.logger)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	a.logger.Debug().Int("rows", stats.Rows).Int("skipped", stats.Skipped).Msg("entries read")
	return entries, nil
}

func (a *app) propagate(entries []domain.LedgerEntry) []domain.LedgerEntry {
	before := domain.LaunderingCount(entries)
	relabeled, stats := usecase.Propagate(entries)

	a.logger.Info().
		Int("entries", len(relabeled)).
		Int("laundering_before", before).
		Int("laundering_after", stats.Tainted).
		Int("relabeled", stats.Relabeled).
		Int("passes", stats.Passes).
		Msg("propagation complete")

	return relabeled
}

// writeFileAtomic writes to a temporary file next to path and renames it
// over path once write and close both succeed. On failure path is left
// untouched.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
