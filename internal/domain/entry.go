package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the wire format of timestamp and post_date fields.
const TimestampLayout = "2006-01-02 15:04:05"

// Direction tells which side of a transaction an entry posts.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// IsValid checks if the direction is debit or credit.
func (d Direction) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// PaymentType is the rail a transaction moves on.
type PaymentType string

const (
	PaymentWire  PaymentType = "wire"
	PaymentACH   PaymentType = "ach"
	PaymentCheck PaymentType = "check"
	PaymentCash  PaymentType = "cash"
	PaymentCard  PaymentType = "card"
	PaymentPOS   PaymentType = "pos"
)

// NonCashPaymentTypes are the rails usable between two accounts.
var NonCashPaymentTypes = []PaymentType{PaymentWire, PaymentACH, PaymentCheck, PaymentCard, PaymentPOS}

// Channel placeholders used as counterparty when there is no counter-account.
const (
	ChannelATM    = "ATM"
	ChannelTeller = "Teller"
	ChannelFee    = "Fee"
)

// WireDetails carries routing data for wire transfers.
type WireDetails struct {
	Reference          string `json:"reference"`
	OriginatorBank     string `json:"originator_bank"`
	OriginatorSWIFT    string `json:"originator_swift"`
	BeneficiaryBank    string `json:"beneficiary_bank"`
	BeneficiarySWIFT   string `json:"beneficiary_swift"`
	BeneficiaryRouting string `json:"beneficiary_routing,omitempty"`
}

// LedgerEntry is one side (debit or credit) of a transaction.
type LedgerEntry struct {
	EntryID           string          `json:"entry_id"`
	TransactionID     string          `json:"transaction_id"`
	Timestamp         time.Time       `json:"timestamp"`
	PostDate          time.Time       `json:"post_date"`
	AccountID         string          `json:"account_id"`
	Counterparty      string          `json:"counterparty"`
	Direction         Direction       `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PaymentType       PaymentType     `json:"payment_type"`
	IsLaundering      bool            `json:"is_laundering"`
	SourceDescription string          `json:"source_description"`
	WireDetails       *WireDetails    `json:"wire_details,omitempty"`
	ATMID             string          `json:"atm_id,omitempty"`
	ATMLocation       string          `json:"atm_location,omitempty"`
	Channel           string          `json:"channel,omitempty"`
}

// HasCounterAccount reports whether the counterparty names a real account.
// Cash legs and fee rows point at a channel placeholder instead.
func (e *LedgerEntry) HasCounterAccount() bool {
	return e.Channel == "" && e.Counterparty != ""
}

// Validate checks the row-level invariants of an entry.
func (e *LedgerEntry) Validate() error {
	if e.AccountID == "" {
		return fmt.Errorf("%w: entry %s has no account", ErrMalformedEntry, e.EntryID)
	}

	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: entry %s has no timestamp", ErrMalformedEntry, e.EntryID)
	}

	if !e.Direction.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, e.Direction)
	}

	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	if !e.PostDate.IsZero() && !e.PostDate.After(e.Timestamp) {
		return fmt.Errorf("%w: post date %s not after %s", ErrMalformedEntry,
			e.PostDate.Format(TimestampLayout), e.Timestamp.Format(TimestampLayout))
	}

	return nil
}

// ParseTimestamp parses a timestamp in TimestampLayout or as a bare date.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	return t, nil
}
