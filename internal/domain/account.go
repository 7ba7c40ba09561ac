package domain

// EntityKind distinguishes the owners of accounts.
type EntityKind string

const (
	EntityPerson  EntityKind = "Person"
	EntityCompany EntityKind = "Company"
)

// Visibility constrains the role an entity may play in legitimate traffic.
type Visibility string

const (
	VisibilitySender   Visibility = "sender"
	VisibilityReceiver Visibility = "receiver"
	VisibilityBoth     Visibility = "both"
)

// CanSend reports whether the entity may originate legitimate transfers.
func (v Visibility) CanSend() bool {
	return v == VisibilitySender || v == VisibilityBoth
}

// CanReceive reports whether the entity may receive legitimate transfers.
func (v Visibility) CanReceive() bool {
	return v == VisibilityReceiver || v == VisibilityBoth
}

// Bank holds the routing metadata of a simulated bank.
type Bank struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	SWIFT   string `json:"swift_code"`
	Routing string `json:"aba_routing_number"`
}

// Account belongs to exactly one entity.
type Account struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	OwnerKind EntityKind `json:"owner_type"`
	OwnerName string     `json:"owner_name"`
	BankID    string     `json:"bank_id"`
	Currency  string     `json:"currency"`
	Launderer bool       `json:"launderer"`
}

// Entity is a person or company owning one or more accounts.
type Entity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       EntityKind `json:"kind"`
	Country    string     `json:"country"`
	Address    string     `json:"address"`
	Visibility Visibility `json:"visibility"`
	Accounts   []*Account `json:"accounts"`
	Launderer  bool       `json:"launderer"`
}

// AccountIDs returns the ids of the accounts the entity owns.
func (e *Entity) AccountIDs() []string {
	ids := make([]string, len(e.Accounts))
	for i, a := range e.Accounts {
		ids[i] = a.ID
	}
	return ids
}
