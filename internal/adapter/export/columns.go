package export

import (
	"strconv"

	"github.com/iho/amlsynth/internal/domain"
)

// entryColumns is the column order of exported ledger entries.
var entryColumns = []string{
	"entry_id",
	"transaction_id",
	"timestamp",
	"post_date",
	"account_id",
	"counterparty",
	"direction",
	"amount",
	"currency",
	"payment_type",
	"is_laundering",
	"source_description",
	"channel",
	"atm_id",
	"atm_location",
	"wire_reference",
	"originator_bank",
	"originator_swift",
	"beneficiary_bank",
	"beneficiary_swift",
	"beneficiary_routing",
}

var accountColumns = []string{
	"account_id",
	"owner_id",
	"owner_type",
	"owner_name",
	"bank_id",
	"currency",
	"launderer",
}

func entryRecord(e *domain.LedgerEntry) []string {
	var w domain.WireDetails
	if e.WireDetails != nil {
		w = *e.WireDetails
	}

	postDate := ""
	if !e.PostDate.IsZero() {
		postDate = e.PostDate.Format(domain.TimestampLayout)
	}

	return []string{
		e.EntryID,
		e.TransactionID,
		e.Timestamp.Format(domain.TimestampLayout),
		postDate,
		e.AccountID,
		e.Counterparty,
		string(e.Direction),
		e.Amount.StringFixed(2),
		e.Currency,
		string(e.PaymentType),
		strconv.FormatBool(e.IsLaundering),
		e.SourceDescription,
		e.Channel,
		e.ATMID,
		e.ATMLocation,
		w.Reference,
		w.OriginatorBank,
		w.OriginatorSWIFT,
		w.BeneficiaryBank,
		w.BeneficiarySWIFT,
		w.BeneficiaryRouting,
	}
}

func accountRecord(a *domain.Account) []string {
	return []string{
		a.ID,
		a.OwnerID,
		string(a.OwnerKind),
		a.OwnerName,
		a.BankID,
		a.Currency,
		strconv.FormatBool(a.Launderer),
	}
}
