package usecase

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/domain"
)

// LegitStats counts the outcome of legitimate traffic generation.
type LegitStats struct {
	Attempts          int
	Success           int
	SkippedVisibility int
	SkippedUnknown    int
	SkippedPayment    int
}

// LegitGenerator produces ordinary traffic between population accounts.
type LegitGenerator struct {
	rng       *rand.Rand
	ids       IDGenerator
	scheduler *Scheduler
	describer Describer
	splitter  *Splitter
	logger    zerolog.Logger
}

// NewLegitGenerator creates a LegitGenerator.
func NewLegitGenerator(rng *rand.Rand, ids IDGenerator, scheduler *Scheduler, describer Describer, splitter *Splitter, logger zerolog.Logger) *LegitGenerator {
	return &LegitGenerator{
		rng:       rng,
		ids:       ids,
		scheduler: scheduler,
		describer: describer,
		splitter:  splitter,
		logger:    logger,
	}
}

// Generate produces up to n transactions within [start, end], giving up after
// n*MaxLegitAttemptFactor attempts.
func (g *LegitGenerator) Generate(pop *Population, n int, start, end time.Time) ([]domain.LedgerEntry, LegitStats) {
	var (
		stats   LegitStats
		entries []domain.LedgerEntry
	)

	if len(pop.Accounts) == 0 {
		return nil, stats
	}

	owners := make(map[string]*domain.Entity, len(pop.Entities))
	for _, e := range pop.Entities {
		owners[e.ID] = e
	}

	for stats.Success < n && stats.Attempts < n*MaxLegitAttemptFactor {
		stats.Attempts++

		primary := pop.Accounts[g.rng.IntN(len(pop.Accounts))]
		owner := owners[primary.OwnerID]
		if owner == nil {
			continue
		}

		rules := domain.AllowedTransactions(owner.Kind)
		if len(rules) == 0 {
			stats.SkippedPayment++
			continue
		}

		paymentType := pickPaymentType(g.rng, rules)
		purposes := rules[paymentType]
		purpose := purposes[g.rng.IntN(len(purposes))]

		t := Transfer{
			Currency:    "USD",
			PaymentType: paymentType,
			Amount:      domain.Money(50 + g.rng.Float64()*4950),
		}

		if paymentType == domain.PaymentCash {
			deposit := strings.EqualFold(purpose, "deposit")
			if !g.splitter.Known(primary.ID) {
				stats.SkippedUnknown++
				continue
			}
			if (deposit && !owner.Visibility.CanReceive()) || (!deposit && !owner.Visibility.CanSend()) {
				stats.SkippedVisibility++
				continue
			}

			t.Channel = domain.ChannelTeller
			if deposit {
				t.Target = primary
			} else {
				t.Source = primary
			}
		} else {
			target := g.otherAccount(pop.Accounts, primary)
			if target == nil {
				continue
			}
			targetOwner := owners[target.OwnerID]
			if targetOwner == nil {
				continue
			}
			if !g.splitter.Known(primary.ID) && !g.splitter.Known(target.ID) {
				stats.SkippedUnknown++
				continue
			}
			if !owner.Visibility.CanSend() || !targetOwner.Visibility.CanReceive() {
				stats.SkippedVisibility++
				continue
			}

			t.Source = primary
			t.Target = target
		}

		t.Timestamp = g.scheduler.ForEntity(start, end, owner.Kind)
		t.PostDate = g.scheduler.PostDate(t.Timestamp)
		t.ID = g.ids.Generate(t.Timestamp)
		g.describer.Describe(&t, purpose)

		entries = append(entries, g.splitter.Split(t)...)
		stats.Success++
	}

	g.logger.Debug().
		Int("attempts", stats.Attempts).
		Int("success", stats.Success).
		Int("skipped_visibility", stats.SkippedVisibility).
		Int("skipped_unknown", stats.SkippedUnknown).
		Int("skipped_payment_type", stats.SkippedPayment).
		Msg("legitimate traffic generated")

	return entries, stats
}

func (g *LegitGenerator) otherAccount(accounts []*domain.Account, not *domain.Account) *domain.Account {
	if len(accounts) < 2 {
		return nil
	}
	for {
		a := accounts[g.rng.IntN(len(accounts))]
		if a.ID != not.ID {
			return a
		}
	}
}

// pickPaymentType draws a payment type in a stable order so seeded runs are
// reproducible despite map iteration order.
func pickPaymentType(rng *rand.Rand, rules domain.Capabilities) domain.PaymentType {
	types := make([]domain.PaymentType, 0, len(rules))
	for pt := range rules {
		types = append(types, pt)
	}
	slices.Sort(types)
	return types[rng.IntN(len(types))]
}
