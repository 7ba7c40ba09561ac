package usecase

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultMinStartBuffer separates an account's first legitimate event from
	// the earliest laundering activity scheduled on it.
	DefaultMinStartBuffer = time.Hour

	// ChainHopMinLag and ChainHopMaxLag bound the pause between chain hops.
	ChainHopMinLag = 5 * time.Minute
	ChainHopMaxLag = 120 * time.Minute

	// PostDateWindow is how far past the event time settlement may land.
	PostDateWindow   = 72 * time.Hour
	postDateAttempts = 100
	bankOpenHour     = 9
	bankCloseHour    = 17

	// MaxLegitAttemptFactor caps legitimate generation at n*factor attempts.
	MaxLegitAttemptFactor = 10
)

// Metric labels.
const (
	SourceLegit   = "legit"
	SourcePattern = "pattern"
	SourceChain   = "chain"

	OutcomeInjected    = "injected"
	OutcomeUnsupported = "unsupported"
	OutcomeInvalid     = "invalid"
	OutcomeUndersized  = "undersized"
	OutcomeEmpty       = "empty"

	SkipFloorAfterWindow = "floor_after_window"
	SkipNoHistory        = "no_history"
)

var (
	// ATMLimit is the structuring threshold for ATM cash legs.
	ATMLimit = decimal.NewFromInt(3000)

	// WireFee is debited from the originator on every wire.
	WireFee = decimal.NewFromInt(25)
)
