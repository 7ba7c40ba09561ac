package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/amlsynth/internal/domain"
)

// ReadStats counts the rows a CSV read kept and dropped.
type ReadStats struct {
	Rows    int
	Skipped int
}

// ReadEntries parses ledger entries written by WriteEntries. Columns are
// matched by header name, so extra or reordered columns are tolerated. Rows
// with an unparsable timestamp, direction or amount are logged and skipped.
func ReadEntries(r io.Reader, logger zerolog.Logger) ([]domain.LedgerEntry, ReadStats, error) {
	var stats ReadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, required := range []string{"timestamp", "account_id", "direction"} {
		if _, ok := idx[required]; !ok {
			return nil, stats, fmt.Errorf("%w: column %q", domain.ErrMissingParameter, required)
		}
	}

	var entries []domain.LedgerEntry
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
		stats.Rows++

		get := func(col string) string {
			if i, ok := idx[col]; ok && i < len(record) {
				return record[i]
			}
			return ""
		}

		e, err := parseEntry(get)
		if err != nil {
			stats.Skipped++
			logger.Warn().Err(err).Int("line", line).Str("account_id", get("account_id")).Msg("skipping unparsable row")
			continue
		}
		entries = append(entries, e)
	}

	return entries, stats, nil
}

func parseEntry(get func(string) string) (domain.LedgerEntry, error) {
	ts, err := domain.ParseTimestamp(get("timestamp"))
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	e := domain.LedgerEntry{
		EntryID:           get("entry_id"),
		TransactionID:     get("transaction_id"),
		Timestamp:         ts,
		AccountID:         get("account_id"),
		Counterparty:      get("counterparty"),
		Direction:         domain.Direction(strings.ToLower(get("direction"))),
		Currency:          get("currency"),
		PaymentType:       domain.PaymentType(get("payment_type")),
		SourceDescription: get("source_description"),
		Channel:           get("channel"),
		ATMID:             get("atm_id"),
		ATMLocation:       get("atm_location"),
	}

	if pd := get("post_date"); pd != "" {
		if e.PostDate, err = domain.ParseTimestamp(pd); err != nil {
			return domain.LedgerEntry{}, err
		}
	}

	if amt := get("amount"); amt != "" {
		if e.Amount, err = decimal.NewFromString(amt); err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("amount %q: %w", amt, err)
		}
	}

	if v := get("is_laundering"); v != "" {
		if e.IsLaundering, err = strconv.ParseBool(v); err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("is_laundering %q: %w", v, err)
		}
	}

	if ref := get("wire_reference"); ref != "" {
		e.WireDetails = &domain.WireDetails{
			Reference:          ref,
			OriginatorBank:     get("originator_bank"),
			OriginatorSWIFT:    get("originator_swift"),
			BeneficiaryBank:    get("beneficiary_bank"),
			BeneficiarySWIFT:   get("beneficiary_swift"),
			BeneficiaryRouting: get("beneficiary_routing"),
		}
	}

	if err := e.Validate(); err != nil {
		return domain.LedgerEntry{}, err
	}

	return e, nil
}
