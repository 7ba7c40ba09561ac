package dto

import (
	"fmt"

	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
)

// Limits on a single generation request served over HTTP.
const (
	MaxEntities  = 5000
	MaxBanks     = 100
	MaxLegitTxns = 200000
	MaxChains    = 1000
	MaxPatterns  = 100
	MaxInstances = 1000

	// MaxPatternWidth bounds every per-pattern account count.
	MaxPatternWidth = 1000
	// MaxTransactionsPerAccount bounds cash_structuring legs per account.
	MaxTransactionsPerAccount = 1000
	// MaxPatternTransfers bounds the transfers all patterns of one request
	// may schedule.
	MaxPatternTransfers = 1000000
)

// CreateRunRequest represents a request to generate a dataset. Omitted
// fields fall back to the server defaults.
type CreateRunRequest struct {
	Individuals       *int                 `json:"individuals,omitempty"`
	Companies         *int                 `json:"companies,omitempty"`
	Banks             *int                 `json:"banks,omitempty"`
	LegitTxns         *int                 `json:"legit_txns,omitempty"`
	LaunderingChains  *int                 `json:"laundering_chains,omitempty"`
	KnownAccountRatio *float64             `json:"known_account_ratio,omitempty"`
	StartDate         string               `json:"start_date,omitempty"`
	EndDate           string               `json:"end_date,omitempty"`
	Seed              *uint64              `json:"seed,omitempty"`
	Patterns          []domain.PatternSpec `json:"patterns,omitempty"`
}

// Validate checks the request against the per-request limits.
func (r *CreateRunRequest) Validate() error {
	checks := []struct {
		name  string
		value *int
		max   int
	}{
		{"individuals", r.Individuals, MaxEntities},
		{"companies", r.Companies, MaxEntities},
		{"banks", r.Banks, MaxBanks},
		{"legit_txns", r.LegitTxns, MaxLegitTxns},
		{"laundering_chains", r.LaunderingChains, MaxChains},
	}
	for _, c := range checks {
		if c.value != nil && (*c.value < 0 || *c.value > c.max) {
			return fmt.Errorf("%s must be between 0 and %d", c.name, c.max)
		}
	}

	if r.KnownAccountRatio != nil && (*r.KnownAccountRatio < 0 || *r.KnownAccountRatio > 1) {
		return fmt.Errorf("known_account_ratio must be between 0 and 1")
	}

	if len(r.Patterns) > MaxPatterns {
		return fmt.Errorf("at most %d patterns per request", MaxPatterns)
	}

	transfers := 0
	for i, p := range r.Patterns {
		if p.Type == "" {
			return fmt.Errorf("patterns[%d]: type is required", i)
		}
		if p.Instances < 0 || p.Instances > MaxInstances {
			return fmt.Errorf("patterns[%d]: instances must be between 0 and %d", i, MaxInstances)
		}
		if err := validatePatternParams(p); err != nil {
			return fmt.Errorf("patterns[%d]: %w", i, err)
		}

		// Each term is bounded above, so the sum cannot overflow.
		d := p.WithDefaults()
		transfers += d.Instances * patternTransfers(d)
		if transfers > MaxPatternTransfers {
			return fmt.Errorf("patterns schedule more than %d transfers", MaxPatternTransfers)
		}
	}

	return nil
}

func validatePatternParams(p domain.PatternSpec) error {
	params := []struct {
		name  string
		value int
		max   int
	}{
		{"accounts_per_cycle", p.AccountsPerCycle, MaxPatternWidth},
		{"targets_per_source", p.TargetsPerSource, MaxPatternWidth},
		{"sources_per_target", p.SourcesPerTarget, MaxPatternWidth},
		{"sources", p.Sources, MaxPatternWidth},
		{"intermediates", p.Intermediates, MaxPatternWidth},
		{"sinks", p.Sinks, MaxPatternWidth},
		{"accounts", p.Accounts, MaxPatternWidth},
		{"transactions_per_account", p.TransactionsPerAccount, MaxTransactionsPerAccount},
	}
	for _, c := range params {
		if c.value < 0 || c.value > c.max {
			return fmt.Errorf("%s must be between 0 and %d", c.name, c.max)
		}
	}
	return nil
}

// patternTransfers is how many transfers one instance of p schedules at most.
func patternTransfers(p domain.PatternSpec) int {
	switch p.Type {
	case domain.PatternCycle:
		return p.AccountsPerCycle
	case domain.PatternFanOut:
		return p.TargetsPerSource
	case domain.PatternFanIn:
		return p.SourcesPerTarget
	case domain.PatternScatterGather:
		return p.Sources*p.Intermediates + p.Intermediates*p.Sinks
	case domain.PatternCashStructuring:
		return p.Accounts * p.TransactionsPerAccount
	default:
		return 0
	}
}

// ToUseCaseInput overlays the request on defaults.
func (r *CreateRunRequest) ToUseCaseInput(defaults usecase.GenerateOptions) usecase.GenerateOptions {
	opts := defaults

	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&opts.Individuals, r.Individuals)
	set(&opts.Companies, r.Companies)
	set(&opts.Banks, r.Banks)
	set(&opts.LegitTxns, r.LegitTxns)
	set(&opts.LaunderingChains, r.LaunderingChains)

	if r.KnownAccountRatio != nil {
		opts.KnownAccountRatio = *r.KnownAccountRatio
	}
	if r.StartDate != "" {
		opts.StartDate = r.StartDate
	}
	if r.EndDate != "" {
		opts.EndDate = r.EndDate
	}
	if r.Seed != nil {
		opts.Seed = *r.Seed
	}
	if r.Patterns != nil {
		opts.Patterns = r.Patterns
	}

	return opts
}
