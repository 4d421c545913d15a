package models

// DateLayout is the format of Expense.Date.
const DateLayout = "2006-01-02"

// Expense is a single payment event split evenly across its participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is what the money was spent on (e.g., "Groceries").
	Description string

	// Amount is the positive amount paid.
	Amount float64

	// PayerID is the participant who paid.
	PayerID string

	// Payer is the payer's name. Populated on reads.
	Payer string

	// ParticipantIDs is the ordered share set. Never empty.
	ParticipantIDs []string

	// Participants holds the names matching ParticipantIDs. Populated on reads.
	Participants []string

	// Date is the day of the expense in DateLayout format.
	Date string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
