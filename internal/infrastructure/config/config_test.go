package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/amlsynth/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	unset(t, "AMLSYNTH_INDIVIDUALS", "AMLSYNTH_COMPANIES", "AMLSYNTH_BANKS", "REDIS_URL")

	cfg, err := config.LoadFrom("")
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.Individuals != 10 || cfg.Companies != 5 || cfg.Banks != 3 {
		t.Fatalf("unexpected population defaults: %+v", cfg)
	}

	if cfg.LegitTxns != 500 || cfg.LaunderingChains != 10 {
		t.Fatalf("unexpected transaction defaults: legit=%d chains=%d", cfg.LegitTxns, cfg.LaunderingChains)
	}

	if cfg.KnownAccountRatio != 0.5 {
		t.Fatalf("expected known account ratio 0.5, got %v", cfg.KnownAccountRatio)
	}

	if cfg.StartDate != "2025-01-01" || cfg.EndDate != "2025-01-31" {
		t.Fatalf("unexpected window %s..%s", cfg.StartDate, cfg.EndDate)
	}

	if cfg.MinStartBuffer != time.Hour {
		t.Fatalf("expected 1h min start buffer, got %s", cfg.MinStartBuffer)
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis disabled by default, got %q", cfg.RedisURL)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}
}

// unset clears variables for the duration of the test.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AMLSYNTH_INDIVIDUALS", "200")
	t.Setenv("AMLSYNTH_SEED", "42")
	t.Setenv("AMLSYNTH_FORMAT", "XLSX")
	t.Setenv("AMLSYNTH_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("AMLSYNTH_MIN_START_BUFFER", "30m")
	t.Setenv("DATABASE_URL", "postgres://example")

	cfg, err := config.LoadFrom("")
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.Individuals != 200 || cfg.Seed != 42 {
		t.Fatalf("expected overrides, got individuals=%d seed=%d", cfg.Individuals, cfg.Seed)
	}

	if cfg.Format != "xlsx" {
		t.Fatalf("expected format to be lower-cased, got %s", cfg.Format)
	}

	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}

	if cfg.MinStartBuffer != 30*time.Minute {
		t.Fatalf("expected 30m buffer, got %s", cfg.MinStartBuffer)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("AMLSYNTH_BANKS=7\nAMLSYNTH_COMPANIES=9\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// The environment wins over the file.
	unset(t, "AMLSYNTH_BANKS")
	t.Setenv("AMLSYNTH_COMPANIES", "1")

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.Banks != 7 {
		t.Fatalf("expected banks from .env, got %d", cfg.Banks)
	}
	if cfg.Companies != 1 {
		t.Fatalf("expected environment to win, got %d", cfg.Companies)
	}
}

func TestLoadMissingDotenv(t *testing.T) {
	if _, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.LoadFrom(""); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
