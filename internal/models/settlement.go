package models

// Payment is a recorded transfer between group members to clear debts.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromID is the participant who paid (debtor settling up).
	FromID string

	// From is the payer's name. Populated on reads.
	From string

	// ToID is the participant who received payment (creditor being paid).
	ToID string

	// To is the receiver's name. Populated on reads.
	To string

	// Amount is the payment amount.
	Amount float64

	// Note is an optional description for the payment.
	Note string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

// Settlement is one suggested transfer that moves balances toward zero.
type Settlement struct {
	From   string
	To     string
	Amount float64
}

// Balances is the settlement summary of a group.
type Balances struct {
	// Balances maps participant name to net balance, rounded to cents.
	// Positive means the participant is owed money.
	Balances map[string]float64

	// Settlements is the ordered list of suggested transfers.
	Settlements []Settlement

	// TotalAmount is the sum of all expense amounts, rounded to cents.
	TotalAmount float64
}
