package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/domain"
)

// GenerateOptions configures one dataset generation run.
type GenerateOptions struct {
	Individuals       int
	Companies         int
	Banks             int
	LegitTxns         int
	LaunderingChains  int
	KnownAccountRatio float64
	StartDate         string
	EndDate           string
	Seed              uint64
	MinStartBuffer    time.Duration
	Patterns          []domain.PatternSpec
}

// IDGeneratorFactory builds an id source seeded for one run.
type IDGeneratorFactory func(seed uint64) IDGenerator

// DatasetUseCase runs the generation pipeline.
type DatasetUseCase struct {
	newIDs  IDGeneratorFactory
	metrics MetricsRecorder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewDatasetUseCase creates a new DatasetUseCase.
func NewDatasetUseCase(newIDs IDGeneratorFactory, metrics MetricsRecorder, logger zerolog.Logger) *DatasetUseCase {
	if metrics == nil {
		metrics = NopRecorder{}
	}

	return &DatasetUseCase{
		newIDs:  newIDs,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Generate fabricates a population, legitimate traffic and laundering
// activity gated by each account's history, then propagates and projects the
// laundering label. Failed pattern instances and gated transfers are skipped;
// only invalid options or an empty population fail the run.
func (uc *DatasetUseCase) Generate(ctx context.Context, opts GenerateOptions) (*domain.Dataset, error) {
	start, err := domain.ParseTimestamp(opts.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := domain.ParseTimestamp(opts.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s < %s", domain.ErrInvalidWindow, opts.EndDate, opts.StartDate)
	}

	if opts.MinStartBuffer <= 0 {
		opts.MinStartBuffer = DefaultMinStartBuffer
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(uc.now().UnixNano())
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	faker := gofakeit.New(int64(opts.Seed))
	ids := uc.newIDs(opts.Seed)
	log := uc.logger.With().Uint64("seed", opts.Seed).Logger()

	pop, err := NewPopulationGenerator(rng, faker, ids).Generate(PopulationOptions{
		Banks:       opts.Banks,
		Individuals: opts.Individuals,
		Companies:   opts.Companies,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("accounts", len(pop.Accounts)).Int("entities", len(pop.Entities)).Msg("population generated")

	known := NewPopulationGenerator(rng, faker, ids).SampleKnown(pop.Accounts, opts.KnownAccountRatio)
	splitter := NewSplitter(known)
	scheduler := NewScheduler(rng)
	describer := NewDescriptionGenerator(faker, NewCheckNumberAllocator(1001), pop.Banks)

	legit, _ := NewLegitGenerator(rng, ids, scheduler, describer, splitter, log).Generate(pop, opts.LegitTxns, start, end)
	uc.metrics.EntriesGenerated(SourceLegit, len(legit))
	log.Info().Int("entries", len(legit)).Msg("legitimate transactions generated")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	minStart := MinStartTime(EarliestTimestampsByAccount(legit), opts.MinStartBuffer)
	withHistory := AccountsWithHistory(pop.Accounts, minStart)

	summary := domain.Summary{
		Accounts:         len(pop.Accounts),
		KnownAccounts:    splitter.KnownCount(),
		AccountsEligible: len(withHistory),
		LegitEntries:     len(legit),
	}

	deps := LaunderingDeps{
		Rand:      rng,
		IDs:       ids,
		Scheduler: scheduler,
		Describer: describer,
		Splitter:  splitter,
		Metrics:   uc.metrics,
		Logger:    log,
	}

	var laundering []domain.LedgerEntry
	wantsLaundering := len(opts.Patterns) > 0 || opts.LaunderingChains > 0

	switch {
	case wantsLaundering && len(withHistory) == 0:
		uc.metrics.TransactionSkipped(SkipNoHistory)
		log.Warn().Msg("no legitimate transaction history, skipping laundering generation")
	case wantsLaundering:
		if len(opts.Patterns) > 0 {
			out, stats := NewPatternInjector(deps, minStart).Inject(opts.Patterns, withHistory)
			uc.metrics.EntriesGenerated(SourcePattern, len(out))
			summary.PatternsSkipped += stats.Skipped
			summary.TransactionsGated += stats.Gated
			laundering = append(laundering, out...)

			// Chains prefer accounts the patterns already compromised.
			FlagLaunderingAccounts(out, pop.Accounts, pop.Entities)

			log.Info().
				Int("instances", stats.Instances).
				Int("skipped", stats.Skipped).
				Int("entries", len(out)).
				Msg("laundering patterns injected")
		}

		if opts.LaunderingChains > 0 {
			out, stats := NewChainGenerator(deps, minStart).Generate(pop, withHistory, opts.LaunderingChains, start, end)
			uc.metrics.EntriesGenerated(SourceChain, len(out))
			summary.PatternsSkipped += stats.Skipped
			summary.TransactionsGated += stats.Gated
			laundering = append(laundering, out...)

			log.Info().
				Int("chains", stats.Generated).
				Int("skipped", stats.Skipped).
				Int("entries", len(out)).
				Msg("laundering chains generated")
		}
	}

	if len(laundering) == 0 && wantsLaundering {
		log.Warn().Msg("no laundering transactions were produced")
	}

	all := make([]domain.LedgerEntry, 0, len(legit)+len(laundering))
	all = append(all, legit...)
	all = append(all, laundering...)

	entries, pstats := Propagate(all)
	uc.metrics.Propagated(pstats.Passes, pstats.Tainted)

	FlagLaunderingAccounts(entries, pop.Accounts, pop.Entities)

	summary.LaunderingEntries = len(laundering)
	summary.TotalEntries = len(entries)
	summary.TaintedEntries = pstats.Tainted
	summary.PropagationPasses = pstats.Passes
	for _, a := range pop.Accounts {
		if a.Launderer {
			summary.FlaggedAccounts++
		}
	}
	for _, e := range pop.Entities {
		if e.Launderer {
			summary.FlaggedEntities++
		}
	}
	uc.metrics.AccountsFlagged(summary.FlaggedAccounts)

	log.Info().
		Int("entries", summary.TotalEntries).
		Int("tainted", summary.TaintedEntries).
		Int("relabeled", pstats.Relabeled).
		Int("passes", pstats.Passes).
		Int("flagged_accounts", summary.FlaggedAccounts).
		Msg("laundering labels propagated")

	return &domain.Dataset{
		RunID:       ids.Generate(uc.now()),
		Seed:        opts.Seed,
		GeneratedAt: uc.now().UTC(),
		Entries:     entries,
		Accounts:    pop.Accounts,
		Entities:    pop.Entities,
		Banks:       pop.Banks,
		Summary:     summary,
	}, nil
}
