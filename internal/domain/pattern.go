package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PatternType names a laundering typology template.
type PatternType string

const (
	PatternCycle           PatternType = "cycle"
	PatternFanOut          PatternType = "fan_out"
	PatternFanIn           PatternType = "fan_in"
	PatternScatterGather   PatternType = "scatter_gather"
	PatternCashStructuring PatternType = "cash_structuring"
)

// ChainType names a chain-engine laundering sequence.
type ChainType string

const (
	ChainLayering ChainType = "layering"
	ChainCircular ChainType = "circular"
	ChainBurst    ChainType = "burst"
)

// PatternFile is the top-level shape of a pattern configuration file.
type PatternFile struct {
	Patterns []PatternSpec `yaml:"patterns" json:"patterns"`
}

// PatternSpec configures one pattern and how many instances of it to inject.
// Zero-valued numeric fields fall back to the per-type defaults.
type PatternSpec struct {
	Type      PatternType `yaml:"type" json:"type"`
	Instances int         `yaml:"instances" json:"instances"`
	StartDate string      `yaml:"start_date" json:"start_date"`
	EndDate   string      `yaml:"end_date" json:"end_date"`
	Currency  string      `yaml:"currency" json:"currency,omitempty"`

	// cycle
	AccountsPerCycle int     `yaml:"accounts_per_cycle" json:"accounts_per_cycle,omitempty"`
	Amount           float64 `yaml:"amount" json:"amount,omitempty"`

	// fan_out
	TargetsPerSource int     `yaml:"targets_per_source" json:"targets_per_source,omitempty"`
	AmountPerTarget  float64 `yaml:"amount_per_target" json:"amount_per_target,omitempty"`

	// fan_in
	SourcesPerTarget int     `yaml:"sources_per_target" json:"sources_per_target,omitempty"`
	AmountPerSource  float64 `yaml:"amount_per_source" json:"amount_per_source,omitempty"`

	// scatter_gather
	Sources       int     `yaml:"sources" json:"sources,omitempty"`
	Intermediates int     `yaml:"intermediates" json:"intermediates,omitempty"`
	Sinks         int     `yaml:"sinks" json:"sinks,omitempty"`
	TotalAmount   float64 `yaml:"total_amount" json:"total_amount,omitempty"`

	// cash_structuring
	Accounts               int      `yaml:"accounts" json:"accounts,omitempty"`
	TransactionsPerAccount int      `yaml:"transactions_per_account" json:"transactions_per_account,omitempty"`
	MaxDeposit             float64  `yaml:"max_deposit" json:"max_deposit,omitempty"`
	ATMRatio               *float64 `yaml:"atm_ratio" json:"atm_ratio,omitempty"`
}

// WithDefaults returns a copy of the spec with per-type defaults filled in.
func (p PatternSpec) WithDefaults() PatternSpec {
	if p.Instances <= 0 {
		p.Instances = 1
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}

	switch p.Type {
	case PatternCycle:
		p.AccountsPerCycle = orInt(p.AccountsPerCycle, 3)
		p.Amount = orFloat(p.Amount, 1000)
	case PatternFanOut:
		p.TargetsPerSource = orInt(p.TargetsPerSource, 3)
		p.AmountPerTarget = orFloat(p.AmountPerTarget, 500)
	case PatternFanIn:
		p.SourcesPerTarget = orInt(p.SourcesPerTarget, 5)
		p.AmountPerSource = orFloat(p.AmountPerSource, 200)
	case PatternScatterGather:
		p.Sources = orInt(p.Sources, 1)
		p.Intermediates = orInt(p.Intermediates, 3)
		p.Sinks = orInt(p.Sinks, 1)
		p.TotalAmount = orFloat(p.TotalAmount, 5000)
	case PatternCashStructuring:
		p.Accounts = orInt(p.Accounts, 1)
		p.TransactionsPerAccount = orInt(p.TransactionsPerAccount, 5)
		p.MaxDeposit = orFloat(p.MaxDeposit, 10000)
		if p.ATMRatio == nil {
			ratio := 0.5
			p.ATMRatio = &ratio
		}
	}

	return p
}

// Window parses the spec's start and end dates.
func (p PatternSpec) Window() (start, end time.Time, err error) {
	if p.StartDate == "" {
		return start, end, fmt.Errorf("%w: start_date", ErrMissingParameter)
	}
	if p.EndDate == "" {
		return start, end, fmt.Errorf("%w: end_date", ErrMissingParameter)
	}

	if start, err = ParseTimestamp(p.StartDate); err != nil {
		return start, end, err
	}
	if end, err = ParseTimestamp(p.EndDate); err != nil {
		return start, end, err
	}

	if end.Before(start) {
		return start, end, fmt.Errorf("%w: %s < %s", ErrInvalidWindow, p.EndDate, p.StartDate)
	}

	return start, end, nil
}

// Money rounds a configured float amount to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
