package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/adapter/export"
	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/infrastructure/config"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Individuals:       12,
		Companies:         4,
		Banks:             2,
		LegitTxns:         200,
		LaunderingChains:  2,
		KnownAccountRatio: 0.8,
		StartDate:         "2025-01-01",
		EndDate:           "2025-01-31",
		Seed:              42,
		MinStartBuffer:    time.Hour,
		Output:            filepath.Join(dir, "transactions.csv"),
		Format:            "csv",
		LogLevel:          "error",
		LogFormat:         "json",
	}
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd(cfg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readEntries(t *testing.T, path string) []domain.LedgerEntry {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	entries, _, err := export.ReadEntries(f, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return entries
}

func TestFlagsDefaultToConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())
	root := newRootCmd(cfg)

	generate, _, err := root.Find([]string{"generate"})
	if err != nil {
		t.Fatalf("generate command not found: %v", err)
	}

	defaults := map[string]string{
		"individuals": "12",
		"banks":       "2",
		"seed":        "42",
		"format":      "csv",
		"start-date":  "2025-01-01",
	}
	for name, want := range defaults {
		flag := generate.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("missing flag --%s", name)
		}
		if flag.DefValue != want {
			t.Fatalf("--%s: expected default %q, got %q", name, want, flag.DefValue)
		}
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())

	_, err := execute(t, cfg, "generate", "--individuals", "3", "--format", "parquet")
	if !errors.Is(err, domain.ErrUnknownSink) {
		t.Fatalf("expected unknown sink error, got %v", err)
	}

	if cfg.Individuals != 3 {
		t.Fatalf("expected flag to override individuals, got %d", cfg.Individuals)
	}
	if cfg.Companies != 4 {
		t.Fatalf("expected companies to keep config value, got %d", cfg.Companies)
	}
}

func TestGenerateCSV(t *testing.T) {
	cfg := testConfig(t.TempDir())

	out, err := execute(t, cfg, "generate")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	var result struct {
		RunID   string         `json:"run_id"`
		Seed    uint64         `json:"seed"`
		Format  string         `json:"format"`
		Summary domain.Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output %q: %v", out, err)
	}

	if result.RunID == "" || result.Seed != 42 || result.Format != "csv" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Summary.LegitEntries == 0 {
		t.Fatalf("expected legitimate entries, got %+v", result.Summary)
	}

	entries := readEntries(t, cfg.Output)
	if len(entries) != result.Summary.TotalEntries {
		t.Fatalf("expected %d rows, got %d", result.Summary.TotalEntries, len(entries))
	}
	if got := domain.LaunderingCount(entries); got != result.Summary.TaintedEntries {
		t.Fatalf("expected %d laundering rows, got %d", result.Summary.TaintedEntries, got)
	}

	if _, err := os.Stat(export.AccountsPath(cfg.Output)); err != nil {
		t.Fatalf("expected accounts file: %v", err)
	}
}

func TestGenerateXLSXRenamesDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	if _, err := execute(t, cfg, "generate", "--format", "xlsx"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "transactions.xlsx")); err != nil {
		t.Fatalf("expected xlsx output: %v", err)
	}
}

func TestPropagateIsIdempotentOnGeneratedData(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	if _, err := execute(t, cfg, "generate"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	relabeled := filepath.Join(dir, "relabeled.csv")
	if _, err := execute(t, cfg, "propagate", "--input", cfg.Output, "--output", relabeled); err != nil {
		t.Fatalf("propagate failed: %v", err)
	}

	before := readEntries(t, cfg.Output)
	after := readEntries(t, relabeled)

	if len(before) != len(after) {
		t.Fatalf("expected %d rows, got %d", len(before), len(after))
	}
	if domain.LaunderingCount(before) != domain.LaunderingCount(after) {
		t.Fatalf("labels changed: %d before, %d after", domain.LaunderingCount(before), domain.LaunderingCount(after))
	}
}

func TestPropagateInPlace(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	if _, err := execute(t, cfg, "generate"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	before := readEntries(t, cfg.Output)
	if len(before) == 0 {
		t.Fatalf("expected generated rows")
	}

	if _, err := execute(t, cfg, "propagate", "--input", cfg.Output, "--output", cfg.Output); err != nil {
		t.Fatalf("in-place propagate failed: %v", err)
	}

	after := readEntries(t, cfg.Output)
	if len(after) != len(before) {
		t.Fatalf("expected %d rows after in-place propagation, got %d", len(before), len(after))
	}
	if domain.LaunderingCount(after) != domain.LaunderingCount(before) {
		t.Fatalf("labels changed: %d before, %d after", domain.LaunderingCount(before), domain.LaunderingCount(after))
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}
}

func TestPropagateKeepsOutputOnReadFailure(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "keep.csv")
	if err := os.WriteFile(output, []byte("original"), 0o644); err != nil {
		t.Fatalf("failed to seed output: %v", err)
	}

	_, err := execute(t, testConfig(dir), "propagate", "--input", filepath.Join(dir, "missing.csv"), "--output", output)
	if err == nil {
		t.Fatalf("expected error for missing input")
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("output must be untouched, got %q", got)
	}
}

func TestPropagateStdout(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")

	at := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	seed := []domain.LedgerEntry{
		{EntryID: "1", Timestamp: at, PostDate: at.Add(time.Hour), AccountID: "A", Counterparty: "B", Direction: domain.DirectionDebit, IsLaundering: true},
		{EntryID: "2", Timestamp: at.Add(time.Hour), PostDate: at.Add(2 * time.Hour), AccountID: "B", Counterparty: "C", Direction: domain.DirectionDebit},
	}

	f, err := os.Create(input)
	if err != nil {
		t.Fatalf("failed to create input: %v", err)
	}
	if err := export.WriteEntries(context.Background(), f, seed); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	f.Close()

	out, err := execute(t, testConfig(dir), "propagate", "-i", input)
	if err != nil {
		t.Fatalf("propagate failed: %v", err)
	}

	entries, _, err := export.ReadEntries(bytes.NewBufferString(out), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if got := domain.LaunderingCount(entries); got != 2 {
		t.Fatalf("expected taint to reach B's outgoing debit, got %d laundering rows", got)
	}
}

func TestMigrateHasSubcommands(t *testing.T) {
	root := newRootCmd(testConfig(t.TempDir()))

	for _, name := range []string{"up", "down"} {
		if _, _, err := root.Find([]string{"migrate", name}); err != nil {
			t.Fatalf("migrate %s not found: %v", name, err)
		}
	}
}
