package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iho/amlsynth/internal/adapter/events/kafka"
	"github.com/iho/amlsynth/internal/adapter/export"
	postgresRepo "github.com/iho/amlsynth/internal/adapter/repository/postgres"
	sqliteRepo "github.com/iho/amlsynth/internal/adapter/repository/sqlite"
	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/infrastructure/config"
	"github.com/iho/amlsynth/internal/infrastructure/idgen"
	"github.com/iho/amlsynth/internal/infrastructure/postgres"
	"github.com/iho/amlsynth/internal/usecase"
)

func newIDGenerator(seed uint64) usecase.IDGenerator {
	return idgen.New(seed)
}

func newGenerateCmd(a *app) *cobra.Command {
	cfg := a.cfg

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a labeled dataset and export it",
		Example: `  amlsynth generate --patterns patterns.yaml --output out.csv
  amlsynth generate --format xlsx --output out.xlsx --seed 42
  amlsynth generate --format postgres --database-url postgres://localhost/amlsynth`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") && cfg.Format == "xlsx" {
				cfg.Output = strings.TrimSuffix(cfg.Output, filepath.Ext(cfg.Output)) + ".xlsx"
			}
			return a.runGenerate(cmd)
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Individuals, "individuals", cfg.Individuals, "Number of individuals")
	f.IntVar(&cfg.Companies, "companies", cfg.Companies, "Number of companies")
	f.IntVar(&cfg.Banks, "banks", cfg.Banks, "Number of banks")
	f.IntVar(&cfg.LegitTxns, "legit-txns", cfg.LegitTxns, "Legitimate transactions to attempt")
	f.IntVar(&cfg.LaunderingChains, "laundering-chains", cfg.LaunderingChains, "Laundering chains to generate")
	f.Float64Var(&cfg.KnownAccountRatio, "known-ratio", cfg.KnownAccountRatio, "Share of accounts held at the reporting bank")
	f.StringVar(&cfg.StartDate, "start-date", cfg.StartDate, "Window start (YYYY-MM-DD)")
	f.StringVar(&cfg.EndDate, "end-date", cfg.EndDate, "Window end (YYYY-MM-DD)")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 derives one from the clock")
	f.DurationVar(&cfg.MinStartBuffer, "min-start-buffer", cfg.MinStartBuffer, "Gap between legitimate history and the first laundering transfer")
	f.StringVar(&cfg.PatternFile, "patterns", cfg.PatternFile, "YAML or JSON laundering pattern file")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output file for csv and xlsx")
	f.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Export sink (csv, xlsx, postgres, sqlite, kafka)")
	f.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL URL for the postgres sink")
	f.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "Database file for the sqlite sink")
	f.StringSliceVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "Kafka brokers for the kafka sink")
	f.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for the kafka sink")

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := generateOptions(a.cfg)
	if err != nil {
		return err
	}

	// Open the sink first so a bad destination fails before generation.
	sink, closeSink, err := a.openSink(ctx, strings.ToLower(a.cfg.Format))
	if err != nil {
		return err
	}
	defer closeSink()

	ds, err := usecase.NewDatasetUseCase(newIDGenerator, nil, a.logger).Generate(ctx, opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if err := usecase.NewExportUseCase(nil, a.logger, sink).Export(ctx, sink.Name(), ds); err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), struct {
		RunID   string         `json:"run_id"`
		Seed    uint64         `json:"seed"`
		Format  string         `json:"format"`
		Summary domain.Summary `json:"summary"`
	}{ds.RunID, ds.Seed, sink.Name(), ds.Summary})
}

func generateOptions(cfg *config.Config) (usecase.GenerateOptions, error) {
	opts := usecase.GenerateOptions{
		Individuals:       cfg.Individuals,
		Companies:         cfg.Companies,
		Banks:             cfg.Banks,
		LegitTxns:         cfg.LegitTxns,
		LaunderingChains:  cfg.LaunderingChains,
		KnownAccountRatio: cfg.KnownAccountRatio,
		StartDate:         cfg.StartDate,
		EndDate:           cfg.EndDate,
		Seed:              cfg.Seed,
		MinStartBuffer:    cfg.MinStartBuffer,
	}

	if cfg.PatternFile != "" {
		patterns, err := config.LoadPatterns(cfg.PatternFile)
		if err != nil {
			return opts, fmt.Errorf("load patterns: %w", err)
		}
		opts.Patterns = patterns
	}

	return opts, nil
}

// openSink builds the one sink the run exports to. The returned func
// releases whatever connection the sink holds.
func (a *app) openSink(ctx context.Context, format string) (usecase.DatasetSink, func(), error) {
	noop := func() {}

	switch format {
	case "csv":
		return export.NewCSVSink(a.cfg.Output), noop, nil
	case "xlsx":
		return export.NewXLSXSink(a.cfg.Output), noop, nil
	case "sqlite":
		return sqliteRepo.NewDatasetSink(a.cfg.SQLitePath, a.logger), noop, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DatabaseURL: a.cfg.DatabaseURL,
			MaxConns:    a.cfg.DatabaseMaxConns,
			MinConns:    a.cfg.DatabaseMinConns,
			Timeout:     a.cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, noop, err
		}
		a.logger.Info().Msg("connected to postgres")
		sink := postgresRepo.NewDatasetSink(pool, postgresRepo.NewRetrier(a.logger), a.logger)
		return sink, pool.Close, nil
	case "kafka":
		sink := kafka.NewSink(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.logger)
		return sink, func() {
			if err := sink.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("failed to close kafka writer")
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", domain.ErrUnknownSink, format)
	}
}
