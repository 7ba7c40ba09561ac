package usecase

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/iho/amlsynth/internal/domain"
)

// CheckNumberAllocator hands out sequential check numbers per payor.
type CheckNumberAllocator struct {
	start int
	next  map[string]int
}

// NewCheckNumberAllocator creates an allocator whose first check is start.
func NewCheckNumberAllocator(start int) *CheckNumberAllocator {
	return &CheckNumberAllocator{start: start, next: make(map[string]int)}
}

// Next returns the next check number for the payor.
func (a *CheckNumberAllocator) Next(payorID string) int {
	n, ok := a.next[payorID]
	if !ok {
		n = a.start
	}
	a.next[payorID] = n + 1
	return n
}

// DescriptionGenerator writes narrative text in the style of bank statements.
type DescriptionGenerator struct {
	faker  *gofakeit.Faker
	checks *CheckNumberAllocator
	banks  map[string]*domain.Bank
}

// NewDescriptionGenerator creates a DescriptionGenerator. Banks are looked up
// by id to fill wire routing details.
func NewDescriptionGenerator(faker *gofakeit.Faker, checks *CheckNumberAllocator, banks []*domain.Bank) *DescriptionGenerator {
	byID := make(map[string]*domain.Bank, len(banks))
	for _, b := range banks {
		byID[b.ID] = b
	}

	return &DescriptionGenerator{faker: faker, checks: checks, banks: byID}
}

// Describe fills the narrative fields of t. ACH laundering legs carry no
// description.
func (g *DescriptionGenerator) Describe(t *Transfer, purpose string) {
	switch t.PaymentType {
	case domain.PaymentWire:
		t.WireDetails = g.wireDetails(t)
		t.Description = fmt.Sprintf("WIRE %s REF %s %s", strings.ToUpper(purpose), t.WireDetails.Reference, partyName(t.Target))
	case domain.PaymentACH:
		if t.IsLaundering {
			t.Description = ""
			return
		}
		t.Description = fmt.Sprintf("ACH %s %s PPD ID %s", strings.ToUpper(purpose), partyName(t.Target), g.faker.Numerify("##########"))
	case domain.PaymentCheck:
		payor := ""
		if t.Source != nil {
			payor = t.Source.ID
		}
		t.Description = fmt.Sprintf("CHECK #%d %s", g.checks.Next(payor), purpose)
	case domain.PaymentCard:
		t.Description = fmt.Sprintf("CARD PURCHASE %s %s", strings.ToUpper(g.faker.Company()), purpose)
	case domain.PaymentPOS:
		t.Description = fmt.Sprintf("POS DEBIT %s %s", strings.ToUpper(g.faker.Company()), g.faker.City())
	case domain.PaymentCash:
		g.describeCash(t, purpose)
	default:
		t.Description = purpose
	}
}

func (g *DescriptionGenerator) describeCash(t *Transfer, purpose string) {
	kind := "DEPOSIT"
	if t.Target == nil {
		kind = "WITHDRAWAL"
	}

	if t.Channel == domain.ChannelATM {
		t.ATMID = "ATM" + g.faker.Numerify("#####")
		t.ATMLocation = fmt.Sprintf("%s, %s", g.faker.Street(), g.faker.City())
		t.Description = fmt.Sprintf("ATM CASH %s %s %s", kind, t.ATMID, t.ATMLocation)
		return
	}

	t.Description = fmt.Sprintf("TELLER CASH %s %s", kind, purpose)
}

func (g *DescriptionGenerator) wireDetails(t *Transfer) *domain.WireDetails {
	d := &domain.WireDetails{Reference: strings.ToUpper(g.faker.LetterN(4)) + g.faker.Numerify("########")}

	if b := g.bankOf(t.Source); b != nil {
		d.OriginatorBank = b.Name
		d.OriginatorSWIFT = b.SWIFT
	}
	if b := g.bankOf(t.Target); b != nil {
		d.BeneficiaryBank = b.Name
		d.BeneficiarySWIFT = b.SWIFT
		d.BeneficiaryRouting = b.Routing
	}

	return d
}

func (g *DescriptionGenerator) bankOf(a *domain.Account) *domain.Bank {
	if a == nil {
		return nil
	}
	return g.banks[a.BankID]
}

func partyName(a *domain.Account) string {
	if a == nil || a.OwnerName == "" {
		return ""
	}
	return strings.ToUpper(a.OwnerName)
}
