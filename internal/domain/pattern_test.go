package domain

import (
	"errors"
	"testing"
)

func TestPatternSpec_WithDefaults(t *testing.T) {
	t.Run("cycle", func(t *testing.T) {
		p := PatternSpec{Type: PatternCycle}.WithDefaults()
		if p.Instances != 1 || p.Currency != "USD" || p.AccountsPerCycle != 3 || p.Amount != 1000 {
			t.Errorf("unexpected defaults: %+v", p)
		}
	})

	t.Run("explicit values win", func(t *testing.T) {
		p := PatternSpec{Type: PatternFanIn, Instances: 4, SourcesPerTarget: 9, Currency: "EUR"}.WithDefaults()
		if p.Instances != 4 || p.SourcesPerTarget != 9 || p.Currency != "EUR" || p.AmountPerSource != 200 {
			t.Errorf("unexpected values: %+v", p)
		}
	})

	t.Run("scatter gather", func(t *testing.T) {
		p := PatternSpec{Type: PatternScatterGather}.WithDefaults()
		if p.Sources != 1 || p.Intermediates != 3 || p.Sinks != 1 || p.TotalAmount != 5000 {
			t.Errorf("unexpected defaults: %+v", p)
		}
	})

	t.Run("cash structuring keeps explicit zero atm ratio", func(t *testing.T) {
		zero := 0.0
		p := PatternSpec{Type: PatternCashStructuring, ATMRatio: &zero}.WithDefaults()
		if *p.ATMRatio != 0 {
			t.Errorf("atm ratio overwritten: %v", *p.ATMRatio)
		}
		if p.Accounts != 1 || p.TransactionsPerAccount != 5 || p.MaxDeposit != 10000 {
			t.Errorf("unexpected defaults: %+v", p)
		}

		d := PatternSpec{Type: PatternCashStructuring}.WithDefaults()
		if d.ATMRatio == nil || *d.ATMRatio != 0.5 {
			t.Errorf("expected default atm ratio 0.5, got %v", d.ATMRatio)
		}
	})

	t.Run("fan out", func(t *testing.T) {
		p := PatternSpec{Type: PatternFanOut}.WithDefaults()
		if p.TargetsPerSource != 3 || p.AmountPerTarget != 500 {
			t.Errorf("unexpected defaults: %+v", p)
		}
	})
}

func TestPatternSpec_Window(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		err   error
	}{
		{"dates", "2025-01-01", "2025-01-31", nil},
		{"timestamps", "2025-01-01 08:00:00", "2025-01-01 09:00:00", nil},
		{"single instant", "2025-01-01", "2025-01-01", nil},
		{"missing start", "", "2025-01-31", ErrMissingParameter},
		{"missing end", "2025-01-01", "", ErrMissingParameter},
		{"unparsable", "Jan 1", "2025-01-31", ErrInvalidTimestamp},
		{"inverted", "2025-02-01", "2025-01-01", ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := PatternSpec{StartDate: tt.start, EndDate: tt.end}.Window()
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if end.Before(start) {
				t.Errorf("window inverted: %v > %v", start, end)
			}
		})
	}
}

func TestMoney(t *testing.T) {
	if got := Money(1234.5678).StringFixed(2); got != "1234.57" {
		t.Errorf("Money() = %s", got)
	}
}
