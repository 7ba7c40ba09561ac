package domain

import "errors"

var (
	// Entry errors
	ErrMalformedEntry   = errors.New("malformed ledger entry")
	ErrInvalidDirection = errors.New("direction must be debit or credit")
	ErrNegativeAmount   = errors.New("amount must be a non-negative magnitude")
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// Pattern errors
	ErrUnsupportedPattern   = errors.New("unsupported pattern type")
	ErrMissingParameter     = errors.New("missing required pattern parameter")
	ErrInvalidWindow        = errors.New("window end is before start")
	ErrInsufficientAccounts = errors.New("not enough eligible accounts")

	// Run errors
	ErrRunNotFound  = errors.New("run not found")
	ErrUnknownSink  = errors.New("unknown export sink")
	ErrNoPopulation = errors.New("population is empty")
)
