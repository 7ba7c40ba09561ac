package domain

// Capabilities maps a payment type to the purposes an entity kind may use it for.
type Capabilities map[PaymentType][]string

var capabilityTable = map[EntityKind]Capabilities{
	EntityPerson: {
		PaymentCard:  {"Groceries", "Dining", "Retail", "Travel"},
		PaymentPOS:   {"Groceries", "Fuel", "Pharmacy"},
		PaymentACH:   {"Rent", "Utilities", "Loan Payment", "Insurance"},
		PaymentCheck: {"Rent", "Gift"},
		PaymentWire:  {"Family Support", "Tuition"},
		PaymentCash:  {"Deposit", "Withdrawal"},
	},
	EntityCompany: {
		PaymentWire:  {"Supplier Payment", "Invoice Settlement", "Intercompany Transfer"},
		PaymentACH:   {"Payroll", "Vendor Payment", "Tax Payment"},
		PaymentCheck: {"Vendor Payment", "Refund"},
		PaymentCard:  {"Office Supplies", "Software Subscription"},
		PaymentCash:  {"Deposit"},
	},
}

// AllowedTransactions returns the capability table for an entity kind.
// Unknown kinds get no capabilities.
func AllowedTransactions(kind EntityKind) Capabilities {
	return capabilityTable[kind]
}
