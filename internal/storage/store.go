// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, MySQL)
// without changing the service layer.
//
// Lookups that find nothing return a *models.NotFoundError. Writes that
// violate a uniqueness constraint return a *models.ConflictError.
type Store interface {
	// CreateGroup persists a new group. ID and CreatedAt are populated by
	// the store when empty. A taken code yields a ConflictError.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its code or its ID.
	GetGroup(ctx context.Context, ref string) (*models.Group, error)

	// ListGroups retrieves all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// DeleteGroup removes a group and everything it owns.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddParticipant persists a new participant. A duplicate name within the
	// group yields a ConflictError.
	AddParticipant(ctx context.Context, participant *models.Participant) error

	// GetParticipant retrieves a participant of a group by ID or name.
	GetParticipant(ctx context.Context, groupID, ref string) (*models.Participant, error)

	// ListParticipants retrieves a group's roster ordered by name.
	ListParticipants(ctx context.Context, groupID string) ([]*models.Participant, error)

	// RenameParticipant changes a participant's name.
	RenameParticipant(ctx context.Context, groupID, participantID, name string) error

	// RemoveParticipant deletes a participant, the expenses they paid, their
	// payments, and their place in other expenses' share sets. Expenses left
	// without share holders are deleted.
	RemoveParticipant(ctx context.Context, groupID, participantID string) (*models.RemovalSummary, error)

	// CreateExpense persists a new expense with its share set.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense of a group.
	GetExpense(ctx context.Context, groupID, expenseID string) (*models.Expense, error)

	// ListExpenses retrieves a group's expenses, most recent date first.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// UpdateExpense replaces an existing expense and its share set.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, groupID, expenseID string) error

	// CreatePayment persists a recorded payment between two participants.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPayments retrieves a group's recorded payments, newest first.
	ListPayments(ctx context.Context, groupID string) ([]*models.Payment, error)

	// DeletePayment removes a recorded payment.
	DeletePayment(ctx context.Context, groupID, paymentID string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
