package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/amlsynth/internal/infrastructure/config"
	"github.com/iho/amlsynth/internal/infrastructure/logger"
)

// app carries what every subcommand needs. Flags write straight into cfg,
// so the environment supplies defaults and the command line overrides them.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "amlsynth",
		Short: "Synthetic AML transaction dataset generator",
		Long: `amlsynth fabricates a population of banks, people and companies, generates
legitimate ledger traffic between them, injects laundering patterns and chains,
and labels every entry reached by laundered funds.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logger.New(logger.Config{
				Level:  a.cfg.LogLevel,
				Format: a.cfg.LogFormat,
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json, console)")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newPropagateCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
	)

	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
