package usecase

import (
	"time"

	"github.com/iho/amlsynth/internal/domain"
)

var chainTypes = []domain.ChainType{domain.ChainLayering, domain.ChainCircular, domain.ChainBurst}

const (
	chainIntermediaries = 2
	burstCount          = 5
)

// ChainStats summarises a chain generation run.
type ChainStats struct {
	Requested int
	Generated int
	Skipped   int
	Gated     int
}

// ChainGenerator produces layering, circular and burst sequences whose hops
// strictly increase in time.
type ChainGenerator struct {
	gatedEmitter
}

// NewChainGenerator creates a ChainGenerator gated by minStart.
func NewChainGenerator(deps LaunderingDeps, minStart map[string]time.Time) *ChainGenerator {
	if deps.Metrics == nil {
		deps.Metrics = NopRecorder{}
	}
	return &ChainGenerator{gatedEmitter{LaunderingDeps: deps, minStart: minStart}}
}

// Generate starts n chains inside [start, end]. Origins are drawn from the
// eligible accounts, preferring those already flagged as launderers.
func (c *ChainGenerator) Generate(pop *Population, accounts []*domain.Account, n int, start, end time.Time) ([]domain.LedgerEntry, ChainStats) {
	stats := ChainStats{Requested: n}
	gatedBefore := c.gated

	pool := EligibleAccounts(accounts, c.minStart, end)
	if flagged := launderers(pool); len(flagged) > 0 {
		pool = flagged
	}

	var entries []domain.LedgerEntry
	for range n {
		if len(pool) == 0 {
			break
		}

		originAcct := pool[c.Rand.IntN(len(pool))]
		origin := pop.EntityOf(originAcct)
		if origin == nil {
			stats.Skipped++
			continue
		}

		kind := chainTypes[c.Rand.IntN(len(chainTypes))]
		hops := c.intermediaries(pop, origin)
		if hops == nil {
			stats.Skipped++
			c.Metrics.PatternInstance(string(kind), OutcomeUndersized)
			c.Logger.Debug().Str("chain", string(kind)).Str("origin", origin.ID).Msg("not enough intermediaries, chain skipped")
			continue
		}

		chainStart := c.Scheduler.Between(start, end)

		var out []domain.LedgerEntry
		switch kind {
		case domain.ChainLayering:
			out, _ = c.layering(originAcct, hops, chainStart, end)
		case domain.ChainCircular:
			out = c.circular(originAcct, hops, chainStart, end)
		case domain.ChainBurst:
			out = c.burst(originAcct, chainStart, end)
		}

		// Every hop gated out or invisible.
		if len(out) == 0 {
			stats.Skipped++
			c.Metrics.PatternInstance(string(kind), OutcomeEmpty)
			c.Logger.Debug().Str("chain", string(kind)).Str("origin", origin.ID).Msg("chain produced no entries")
			continue
		}

		stats.Generated++
		c.Metrics.PatternInstance(string(kind), OutcomeInjected)
		entries = append(entries, out...)
	}
	stats.Gated = c.gated - gatedBefore

	return entries, stats
}

// intermediaries samples entities able to receive funds, each with an
// account that has legitimate history. It returns one account per entity,
// or nil when too few qualify.
func (c *ChainGenerator) intermediaries(pop *Population, origin *domain.Entity) []*domain.Account {
	type candidate struct {
		accounts []*domain.Account
	}

	var pool []candidate
	for _, e := range pop.Entities {
		if e.ID == origin.ID || e.Visibility == domain.VisibilitySender {
			continue
		}

		var withHistory []*domain.Account
		for _, a := range e.Accounts {
			if _, ok := c.minStart[a.ID]; ok {
				withHistory = append(withHistory, a)
			}
		}
		if len(withHistory) > 0 {
			pool = append(pool, candidate{accounts: withHistory})
		}
	}

	picked := sample(c.Rand, pool, chainIntermediaries)
	if picked == nil {
		return nil
	}

	hops := make([]*domain.Account, len(picked))
	for i, cand := range picked {
		hops[i] = cand.accounts[c.Rand.IntN(len(cand.accounts))]
	}
	return hops
}

// layering walks origin -> hops[0] -> hops[1] ... Each hop's floor is the
// previous hop's time plus a random lag. It returns the time of the last
// scheduled hop.
func (c *ChainGenerator) layering(origin *domain.Account, hops []*domain.Account, base, end time.Time) ([]domain.LedgerEntry, time.Time) {
	chain := append([]*domain.Account{origin}, hops...)

	var (
		entries []domain.LedgerEntry
		last    time.Time
	)
	for i := 0; i < len(chain)-1; i++ {
		out, at, ok := c.emit(leg{
			src:         chain[i],
			tgt:         chain[i+1],
			amount:      c.uniform(1000, 5000),
			currency:    "USD",
			paymentType: c.pickPaymentType(domain.PaymentWire, domain.PaymentACH),
			purpose:     "Layering",
		}, base, end)
		if !ok {
			continue
		}

		entries = append(entries, out...)
		last = at
		base = at.Add(c.Scheduler.Lag())
	}

	return entries, last
}

// circular is a layering walk closed by a return hop to the origin.
func (c *ChainGenerator) circular(origin *domain.Account, hops []*domain.Account, base, end time.Time) []domain.LedgerEntry {
	entries, last := c.layering(origin, hops, base, end)
	if !last.IsZero() {
		base = last.Add(c.Scheduler.Lag())
	}

	out, _, ok := c.emit(leg{
		src:         hops[len(hops)-1],
		tgt:         origin,
		amount:      c.uniform(900, 3000),
		currency:    "USD",
		paymentType: c.pickPaymentType(domain.PaymentWire, domain.PaymentACH),
		purpose:     "Circular Flow",
	}, base, end)
	if ok {
		entries = append(entries, out...)
	}

	return entries
}

// burst issues several small self-directed ACH transfers in quick succession.
func (c *ChainGenerator) burst(origin *domain.Account, base, end time.Time) []domain.LedgerEntry {
	var entries []domain.LedgerEntry
	for range burstCount {
		out, at, ok := c.emit(leg{
			src:         origin,
			tgt:         origin,
			amount:      c.uniform(100, 500),
			currency:    "USD",
			paymentType: domain.PaymentACH,
			purpose:     "Burst Structuring",
		}, base, end)
		if !ok {
			continue
		}

		entries = append(entries, out...)
		base = at.Add(c.Scheduler.Lag())
	}

	return entries
}

func launderers(accounts []*domain.Account) []*domain.Account {
	var out []*domain.Account
	for _, a := range accounts {
		if a.Launderer {
			out = append(out, a)
		}
	}
	return out
}
