package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/amlsynth/internal/domain"
)

// Transfer is one economic event before it is split into ledger rows.
// Source is nil for cash deposits and Target is nil for cash withdrawals.
type Transfer struct {
	ID           string
	Timestamp    time.Time
	PostDate     time.Time
	Source       *domain.Account
	Target       *domain.Account
	Amount       decimal.Decimal
	Currency     string
	PaymentType  domain.PaymentType
	Channel      string
	IsLaundering bool
	Description  string
	WireDetails  *domain.WireDetails
	ATMID        string
	ATMLocation  string
}

// IsCash reports whether the transfer is a cash leg with a single account.
func (t *Transfer) IsCash() bool {
	return t.PaymentType == domain.PaymentCash
}

// Splitter turns transfers into double-entry ledger rows. Rows are only
// emitted for accounts in the known set.
type Splitter struct {
	known map[string]struct{}
}

// NewSplitter creates a Splitter over the given known account ids.
func NewSplitter(knownAccountIDs []string) *Splitter {
	known := make(map[string]struct{}, len(knownAccountIDs))
	for _, id := range knownAccountIDs {
		known[id] = struct{}{}
	}
	return &Splitter{known: known}
}

// Known reports whether an account is observable in the dataset.
func (s *Splitter) Known(accountID string) bool {
	_, ok := s.known[accountID]
	return ok
}

// KnownCount returns the size of the known set.
func (s *Splitter) KnownCount() int {
	return len(s.known)
}

// Split returns the visible ledger rows of t. Amounts are stored as
// non-negative magnitudes; direction carries the sign.
func (s *Splitter) Split(t Transfer) []domain.LedgerEntry {
	amount := t.Amount.Abs()
	if t.Currency == "" {
		t.Currency = "USD"
	}

	if t.IsCash() {
		return s.splitCash(t, amount)
	}

	entries := make([]domain.LedgerEntry, 0, 3)

	if t.Source != nil && s.Known(t.Source.ID) {
		debit := s.row(t, "D", t.Source.ID, counterpartyID(t.Target), domain.DirectionDebit, amount)
		entries = append(entries, debit)

		if t.PaymentType == domain.PaymentWire {
			fee := s.row(t, "F", t.Source.ID, domain.ChannelFee, domain.DirectionDebit, WireFee)
			fee.Channel = domain.ChannelFee
			fee.SourceDescription = "Outgoing wire fee"
			fee.WireDetails = nil
			entries = append(entries, fee)
		}
	}

	if t.Target != nil && s.Known(t.Target.ID) {
		credit := s.row(t, "C", t.Target.ID, counterpartyID(t.Source), domain.DirectionCredit, amount)
		entries = append(entries, credit)
	}

	return entries
}

func (s *Splitter) splitCash(t Transfer, amount decimal.Decimal) []domain.LedgerEntry {
	channel := t.Channel
	if channel == "" {
		channel = domain.ChannelTeller
	}

	var e domain.LedgerEntry
	switch {
	case t.Source == nil && t.Target != nil:
		if !s.Known(t.Target.ID) {
			return nil
		}
		e = s.row(t, "C", t.Target.ID, channel, domain.DirectionCredit, amount)
	case t.Source != nil && t.Target == nil:
		if !s.Known(t.Source.ID) {
			return nil
		}
		e = s.row(t, "D", t.Source.ID, channel, domain.DirectionDebit, amount)
	default:
		return nil
	}

	e.Channel = channel
	if channel == domain.ChannelATM {
		e.ATMID = t.ATMID
		e.ATMLocation = t.ATMLocation
	}

	return []domain.LedgerEntry{e}
}

func (s *Splitter) row(t Transfer, suffix, accountID, counterparty string, dir domain.Direction, amount decimal.Decimal) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:           t.ID + "-" + suffix,
		TransactionID:     t.ID,
		Timestamp:         t.Timestamp,
		PostDate:          t.PostDate,
		AccountID:         accountID,
		Counterparty:      counterparty,
		Direction:         dir,
		Amount:            amount,
		Currency:          t.Currency,
		PaymentType:       t.PaymentType,
		IsLaundering:      t.IsLaundering,
		SourceDescription: t.Description,
		WireDetails:       t.WireDetails,
	}
}

func counterpartyID(a *domain.Account) string {
	if a == nil {
		return ""
	}
	return a.ID
}
