package usecase

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/iho/amlsynth/internal/domain"
)

// Population is the simulated set of banks, entities and accounts.
type Population struct {
	Banks    []*domain.Bank
	Entities []*domain.Entity
	Accounts []*domain.Account
}

// EntityOf returns the owner of an account, or nil.
func (p *Population) EntityOf(a *domain.Account) *domain.Entity {
	for _, e := range p.Entities {
		if e.ID == a.OwnerID {
			return e
		}
	}
	return nil
}

// PopulationOptions sizes a population.
type PopulationOptions struct {
	Banks       int
	Individuals int
	Companies   int
}

// PopulationGenerator fabricates banks, people, companies and accounts.
type PopulationGenerator struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
	ids   IDGenerator
}

// NewPopulationGenerator creates a PopulationGenerator.
func NewPopulationGenerator(rng *rand.Rand, faker *gofakeit.Faker, ids IDGenerator) *PopulationGenerator {
	return &PopulationGenerator{rng: rng, faker: faker, ids: ids}
}

// Generate builds a population. Every entity owns one to three accounts at
// random banks.
func (g *PopulationGenerator) Generate(opts PopulationOptions) (*Population, error) {
	if opts.Banks <= 0 {
		return nil, fmt.Errorf("%w: need at least one bank", domain.ErrNoPopulation)
	}
	if opts.Individuals+opts.Companies <= 0 {
		return nil, fmt.Errorf("%w: need at least one entity", domain.ErrNoPopulation)
	}

	p := &Population{}
	for range opts.Banks {
		p.Banks = append(p.Banks, g.bank())
	}

	for range opts.Individuals {
		p.Entities = append(p.Entities, g.entity(domain.EntityPerson, g.faker.Name()))
	}
	for range opts.Companies {
		p.Entities = append(p.Entities, g.entity(domain.EntityCompany, g.faker.Company()))
	}

	for _, e := range p.Entities {
		n := 1 + g.rng.IntN(3)
		for range n {
			bank := p.Banks[g.rng.IntN(len(p.Banks))]
			acct := &domain.Account{
				ID:        g.ids.NewUUID(),
				OwnerID:   e.ID,
				OwnerKind: e.Kind,
				OwnerName: e.Name,
				BankID:    bank.ID,
				Currency:  "USD",
			}
			e.Accounts = append(e.Accounts, acct)
			p.Accounts = append(p.Accounts, acct)
		}
	}

	return p, nil
}

// SampleKnown picks max(1, floor(n*ratio)) account ids uniformly without
// replacement.
func (g *PopulationGenerator) SampleKnown(accounts []*domain.Account, ratio float64) []string {
	n := int(float64(len(accounts)) * ratio)
	n = max(1, min(n, len(accounts)))

	picked := sample(g.rng, accounts, n)
	ids := make([]string, len(picked))
	for i, a := range picked {
		ids[i] = a.ID
	}
	return ids
}

func (g *PopulationGenerator) bank() *domain.Bank {
	name := g.faker.LastName() + " " + []string{"Bank", "Savings", "Trust", "Federal"}[g.rng.IntN(4)]
	return &domain.Bank{
		ID:      g.ids.NewUUID(),
		Name:    name,
		Code:    g.faker.Numerify("###"),
		SWIFT:   strings.ToUpper(g.faker.LetterN(4)) + "US" + strings.ToUpper(g.faker.LetterN(2)),
		Routing: g.faker.Numerify("#########"),
	}
}

func (g *PopulationGenerator) entity(kind domain.EntityKind, name string) *domain.Entity {
	visibilities := []domain.Visibility{domain.VisibilitySender, domain.VisibilityReceiver, domain.VisibilityBoth}
	addr := g.faker.Address()

	return &domain.Entity{
		ID:         g.ids.NewUUID(),
		Name:       name,
		Kind:       kind,
		Country:    addr.Country,
		Address:    addr.Address,
		Visibility: visibilities[g.rng.IntN(len(visibilities))],
	}
}

// sample returns k items drawn uniformly without replacement, or nil when
// the pool is smaller than k.
func sample[T any](rng *rand.Rand, pool []T, k int) []T {
	if k < 0 || k > len(pool) {
		return nil
	}

	idx := rng.Perm(len(pool))[:k]
	out := make([]T, k)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
