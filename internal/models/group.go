package models

// Group is a shared expense-tracking context.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Code is the human-shareable identifier (e.g. "SPESE-7K2M9QXA").
	// It is unique across all groups.
	Code string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Participant is a named member of a group.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// GroupID is the group this participant belongs to.
	GroupID string

	// Name is unique within the group.
	Name string

	// JoinedAt is the Unix timestamp when the participant was added.
	JoinedAt int64
}

// GroupDetail is a group together with its roster and expenses.
type GroupDetail struct {
	Group        *Group
	Participants []*Participant
	Expenses     []*Expense
}

// RemovalSummary reports what removing a participant did to the group's expenses.
type RemovalSummary struct {
	// DeletedExpenses counts expenses removed because the participant paid
	// for them or was the last one sharing them.
	DeletedExpenses int

	// TrimmedExpenses counts expenses that kept existing with the participant
	// dropped from their share set.
	TrimmedExpenses int

	// DeletedPayments counts recorded payments sent or received by the participant.
	DeletedPayments int
}
