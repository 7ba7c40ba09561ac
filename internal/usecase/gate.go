package usecase

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/amlsynth/internal/domain"
)

// LaunderingDeps are the collaborators shared by pattern and chain generation.
type LaunderingDeps struct {
	Rand      *rand.Rand
	IDs       IDGenerator
	Scheduler *Scheduler
	Describer Describer
	Splitter  *Splitter
	Metrics   MetricsRecorder
	Logger    zerolog.Logger
}

// gatedEmitter schedules laundering transfers no earlier than every involved
// account's floor.
type gatedEmitter struct {
	LaunderingDeps

	minStart map[string]time.Time
	gated    int
}

// leg describes one laundering transfer to schedule.
type leg struct {
	src, tgt    *domain.Account
	amount      decimal.Decimal
	currency    string
	paymentType domain.PaymentType
	channel     string
	purpose     string
}

// emit schedules l in [notBefore, end] after raising notBefore to the floors
// of both sides. ok is false when the floor lands after end; nothing is
// scheduled in that case.
func (g *gatedEmitter) emit(l leg, notBefore, end time.Time) (entries []domain.LedgerEntry, at time.Time, ok bool) {
	floor, ok := TransactionFloor(g.minStart, notBefore, end, accountIDs(l.src, l.tgt)...)
	if !ok {
		g.gated++
		g.Metrics.TransactionSkipped(SkipFloorAfterWindow)
		g.Logger.Debug().
			Str("from", counterpartyID(l.src)).
			Str("to", counterpartyID(l.tgt)).
			Time("floor", floor).
			Time("end", end).
			Msg("transaction floor after window, skipped")
		return nil, time.Time{}, false
	}

	t := Transfer{
		Timestamp:    g.Scheduler.Between(floor, end),
		Source:       l.src,
		Target:       l.tgt,
		Amount:       l.amount,
		Currency:     l.currency,
		PaymentType:  l.paymentType,
		Channel:      l.channel,
		IsLaundering: true,
	}
	t.PostDate = g.Scheduler.PostDate(t.Timestamp)
	t.ID = g.IDs.Generate(t.Timestamp)
	g.Describer.Describe(&t, l.purpose)

	return g.Splitter.Split(t), t.Timestamp, true
}

func (g *gatedEmitter) pickPaymentType(types ...domain.PaymentType) domain.PaymentType {
	return types[g.Rand.IntN(len(types))]
}

func (g *gatedEmitter) uniform(lo, hi float64) decimal.Decimal {
	return domain.Money(lo + g.Rand.Float64()*(hi-lo))
}

func accountIDs(accounts ...*domain.Account) []string {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a != nil {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
