package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/iho/amlsynth/internal/domain"
)

var patternPaymentTypes = []domain.PaymentType{
	domain.PaymentWire,
	domain.PaymentACH,
	domain.PaymentCheck,
	domain.PaymentCard,
}

// InjectStats summarises a pattern injection run.
type InjectStats struct {
	Instances int
	Injected  int
	Skipped   int
	Gated     int
}

// PatternInjector instantiates configured laundering typologies.
type PatternInjector struct {
	gatedEmitter
}

// NewPatternInjector creates a PatternInjector gated by minStart.
func NewPatternInjector(deps LaunderingDeps, minStart map[string]time.Time) *PatternInjector {
	if deps.Metrics == nil {
		deps.Metrics = NopRecorder{}
	}
	return &PatternInjector{gatedEmitter{LaunderingDeps: deps, minStart: minStart}}
}

// Inject runs every instance of every spec against the accounts with
// history. Instances that fail are logged and skipped.
func (p *PatternInjector) Inject(specs []domain.PatternSpec, accounts []*domain.Account) ([]domain.LedgerEntry, InjectStats) {
	var (
		stats   InjectStats
		entries []domain.LedgerEntry
	)

	gatedBefore := p.gated
	for _, spec := range specs {
		spec = spec.WithDefaults()

		for range spec.Instances {
			stats.Instances++

			var eligible []*domain.Account
			if _, end, err := spec.Window(); err == nil {
				eligible = EligibleAccounts(accounts, p.minStart, end)
			}

			out, err := p.GeneratePattern(spec, eligible)
			if err != nil {
				stats.Skipped++
				outcome := patternOutcome(err)
				p.Metrics.PatternInstance(string(spec.Type), outcome)

				ev := p.Logger.Warn()
				if outcome == OutcomeUndersized {
					ev = p.Logger.Debug()
				}
				ev.Err(err).Str("pattern", string(spec.Type)).Msg("pattern instance skipped")
				continue
			}

			if len(out) == 0 {
				stats.Skipped++
				p.Metrics.PatternInstance(string(spec.Type), OutcomeEmpty)
				p.Logger.Debug().Str("pattern", string(spec.Type)).Msg("pattern instance produced no entries")
				continue
			}

			stats.Injected++
			p.Metrics.PatternInstance(string(spec.Type), OutcomeInjected)
			entries = append(entries, out...)
		}
	}
	stats.Gated = p.gated - gatedBefore

	return entries, stats
}

// GeneratePattern produces the ledger rows of one pattern instance. Every row
// is labeled laundering and every transfer is scheduled no earlier than the
// floors of both its accounts.
func (p *PatternInjector) GeneratePattern(spec domain.PatternSpec, eligible []*domain.Account) ([]domain.LedgerEntry, error) {
	spec = spec.WithDefaults()

	start, end, err := spec.Window()
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case domain.PatternCycle:
		return p.cycle(spec, eligible, start, end)
	case domain.PatternFanOut:
		return p.fanOut(spec, eligible, start, end)
	case domain.PatternFanIn:
		return p.fanIn(spec, eligible, start, end)
	case domain.PatternScatterGather:
		return p.scatterGather(spec, eligible, start, end)
	case domain.PatternCashStructuring:
		return p.cashStructuring(spec, eligible, start, end)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedPattern, spec.Type)
	}
}

func (p *PatternInjector) cycle(spec domain.PatternSpec, pool []*domain.Account, start, end time.Time) ([]domain.LedgerEntry, error) {
	if spec.AccountsPerCycle < 2 {
		return nil, fmt.Errorf("%w: accounts_per_cycle must be at least 2", domain.ErrMissingParameter)
	}

	ring, err := p.pick(pool, spec.AccountsPerCycle)
	if err != nil {
		return nil, err
	}

	var entries []domain.LedgerEntry
	for i, src := range ring {
		out, _, _ := p.emit(leg{
			src:         src,
			tgt:         ring[(i+1)%len(ring)],
			amount:      domain.Money(spec.Amount),
			currency:    spec.Currency,
			paymentType: p.pickPaymentType(patternPaymentTypes...),
			purpose:     "Cycle Transfer",
		}, start, end)
		entries = append(entries, out...)
	}

	return entries, nil
}

func (p *PatternInjector) fanOut(spec domain.PatternSpec, pool []*domain.Account, start, end time.Time) ([]domain.LedgerEntry, error) {
	picked, err := p.pick(pool, 1+spec.TargetsPerSource)
	if err != nil {
		return nil, err
	}

	source, targets := picked[0], picked[1:]

	var entries []domain.LedgerEntry
	for _, tgt := range targets {
		out, _, _ := p.emit(leg{
			src:         source,
			tgt:         tgt,
			amount:      domain.Money(spec.AmountPerTarget),
			currency:    spec.Currency,
			paymentType: p.pickPaymentType(patternPaymentTypes...),
			purpose:     "Fan-out Distribution",
		}, start, end)
		entries = append(entries, out...)
	}

	return entries, nil
}

func (p *PatternInjector) fanIn(spec domain.PatternSpec, pool []*domain.Account, start, end time.Time) ([]domain.LedgerEntry, error) {
	picked, err := p.pick(pool, 1+spec.SourcesPerTarget)
	if err != nil {
		return nil, err
	}

	target, sources := picked[0], picked[1:]

	var entries []domain.LedgerEntry
	for _, src := range sources {
		out, _, _ := p.emit(leg{
			src:         src,
			tgt:         target,
			amount:      domain.Money(spec.AmountPerSource),
			currency:    spec.Currency,
			paymentType: p.pickPaymentType(patternPaymentTypes...),
			purpose:     "Fan-in Structuring",
		}, start, end)
		entries = append(entries, out...)
	}

	return entries, nil
}

// scatterGather moves total_amount from sources through intermediates into
// sinks. A gather leg never precedes the scatter legs that funded its
// intermediate.
func (p *PatternInjector) scatterGather(spec domain.PatternSpec, pool []*domain.Account, start, end time.Time) ([]domain.LedgerEntry, error) {
	picked, err := p.pick(pool, spec.Sources+spec.Intermediates+spec.Sinks)
	if err != nil {
		return nil, err
	}

	sources := picked[:spec.Sources]
	mids := picked[spec.Sources : spec.Sources+spec.Intermediates]
	sinks := picked[spec.Sources+spec.Intermediates:]

	scatterAmount := domain.Money(spec.TotalAmount / float64(len(sources)*len(mids)))
	gatherAmount := domain.Money(spec.TotalAmount / float64(len(mids)*len(sinks)))

	var entries []domain.LedgerEntry
	funded := make(map[string]time.Time, len(mids))

	for _, src := range sources {
		for _, mid := range mids {
			out, at, ok := p.emit(leg{
				src:         src,
				tgt:         mid,
				amount:      scatterAmount,
				currency:    spec.Currency,
				paymentType: p.pickPaymentType(patternPaymentTypes...),
				purpose:     "Scatter Transfer",
			}, start, end)
			if ok && at.After(funded[mid.ID]) {
				funded[mid.ID] = at
			}
			entries = append(entries, out...)
		}
	}

	for _, mid := range mids {
		notBefore := start
		if at, ok := funded[mid.ID]; ok && at.After(notBefore) {
			notBefore = at
		}

		for _, sink := range sinks {
			out, _, _ := p.emit(leg{
				src:         mid,
				tgt:         sink,
				amount:      gatherAmount,
				currency:    spec.Currency,
				paymentType: p.pickPaymentType(patternPaymentTypes...),
				purpose:     "Gather Transfer",
			}, notBefore, end)
			entries = append(entries, out...)
		}
	}

	return entries, nil
}

// cashStructuring splits cash between ATM legs capped at ATMLimit and teller
// legs between ATMLimit and max_deposit.
func (p *PatternInjector) cashStructuring(spec domain.PatternSpec, pool []*domain.Account, start, end time.Time) ([]domain.LedgerEntry, error) {
	selected, err := p.pick(pool, spec.Accounts)
	if err != nil {
		return nil, err
	}

	atmLimit := ATMLimit.InexactFloat64()
	tellerMax := max(spec.MaxDeposit, atmLimit)

	var entries []domain.LedgerEntry
	for _, acct := range selected {
		for range spec.TransactionsPerAccount {
			l := leg{
				currency:    spec.Currency,
				paymentType: domain.PaymentCash,
				purpose:     "Cash Structuring",
			}

			if p.Rand.Float64() < *spec.ATMRatio {
				l.channel = domain.ChannelATM
				l.amount = p.uniform(100, atmLimit)
			} else {
				l.channel = domain.ChannelTeller
				l.amount = p.uniform(atmLimit, tellerMax)
			}

			if p.Rand.IntN(2) == 0 {
				l.tgt = acct
			} else {
				l.src = acct
			}

			out, _, _ := p.emit(l, start, end)
			entries = append(entries, out...)
		}
	}

	return entries, nil
}

// pick samples k distinct accounts or reports an undersized pool.
func (p *PatternInjector) pick(pool []*domain.Account, k int) ([]*domain.Account, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: pattern needs at least one account", domain.ErrMissingParameter)
	}
	if len(pool) < k {
		return nil, fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientAccounts, k, len(pool))
	}
	return sample(p.Rand, pool, k), nil
}

func patternOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedPattern):
		return OutcomeUnsupported
	case errors.Is(err, domain.ErrInsufficientAccounts):
		return OutcomeUndersized
	default:
		return OutcomeInvalid
	}
}
