package usecase

import "github.com/iho/amlsynth/internal/domain"

// FlagLaunderingAccounts marks every account that posts a laundering entry,
// and every entity owning such an account, as a launderer. Flags are never
// cleared. It returns how many accounts and entities were newly flagged.
func FlagLaunderingAccounts(entries []domain.LedgerEntry, accounts []*domain.Account, entities []*domain.Entity) (newAccounts, newEntities int) {
	laundering := make(map[string]struct{})
	for i := range entries {
		if entries[i].IsLaundering {
			laundering[entries[i].AccountID] = struct{}{}
		}
	}

	owners := make(map[string]struct{})
	for _, a := range accounts {
		if _, ok := laundering[a.ID]; !ok {
			continue
		}
		if !a.Launderer {
			a.Launderer = true
			newAccounts++
		}
		owners[a.OwnerID] = struct{}{}
	}

	for _, ent := range entities {
		_, owns := owners[ent.ID]
		if !owns {
			for _, a := range ent.Accounts {
				if _, ok := laundering[a.ID]; ok {
					owns = true
					break
				}
			}
		}

		if owns && !ent.Launderer {
			ent.Launderer = true
			newEntities++
		}
	}

	return newAccounts, newEntities
}
