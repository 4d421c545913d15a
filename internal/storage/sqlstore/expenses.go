package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const expenseSelect = `SELECT e.id, e.group_id, e.description, e.amount, e.payer_id, p.name, e.spent_on, e.created_at
	FROM expenses e JOIN participants p ON p.id = e.payer_id`

// CreateExpense persists a new expense and its share set in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = s.now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, description, amount, payer_id, spent_on, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.Description, expense.Amount,
			expense.PayerID, expense.Date, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		return s.insertShares(ctx, tx, expense)
	})
}

// GetExpense retrieves an expense with its ordered share set.
func (s *Store) GetExpense(ctx context.Context, groupID, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		expenseSelect+" WHERE e.group_id = ? AND e.id = ?",
		groupID, expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound("expense not found: %s", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.participant_id, p.name FROM expense_shares s
		 JOIN participants p ON p.id = s.participant_id
		 WHERE s.expense_id = ? ORDER BY s.position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		expense.ParticipantIDs = append(expense.ParticipantIDs, id)
		expense.Participants = append(expense.Participants, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return expense, nil
}

// ListExpenses retrieves a group's expenses, most recent date first, with
// their share sets loaded by a single extra query.
func (s *Store) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		expenseSelect+" WHERE e.group_id = ? ORDER BY e.spent_on DESC, e.created_at DESC, e.id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	shareRows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.participant_id, p.name FROM expense_shares s
		 JOIN expenses e ON e.id = s.expense_id
		 JOIN participants p ON p.id = s.participant_id
		 WHERE e.group_id = ? ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var expenseID, id, name string
		if err := shareRows.Scan(&expenseID, &id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.ParticipantIDs = append(expense.ParticipantIDs, id)
			expense.Participants = append(expense.Participants, name)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return expenses, nil
}

// UpdateExpense replaces an expense's fields and share set.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET description = ?, amount = ?, payer_id = ?, spent_on = ?
			 WHERE id = ? AND group_id = ?`,
			expense.Description, expense.Amount, expense.PayerID, expense.Date,
			expense.ID, expense.GroupID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrNotFound("expense not found: %s", expense.ID)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear expense shares: %w", err)
		}

		return s.insertShares(ctx, tx, expense)
	})
}

// DeleteExpense removes an expense and its share rows.
func (s *Store) DeleteExpense(ctx context.Context, groupID, expenseID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM expense_shares WHERE expense_id IN (SELECT id FROM expenses WHERE id = ? AND group_id = ?)",
			expenseID, groupID,
		); err != nil {
			return fmt.Errorf("failed to delete expense shares: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM expenses WHERE id = ? AND group_id = ?",
			expenseID, groupID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrNotFound("expense not found: %s", expenseID)
		}
		return nil
	})
}

// insertShares writes the expense's share set in order.
func (s *Store) insertShares(ctx context.Context, q querier, expense *models.Expense) error {
	if len(expense.ParticipantIDs) == 0 {
		return models.ErrValidation("expense must have at least one participant")
	}

	args := make([]any, 0, len(expense.ParticipantIDs)*3)
	values := make([]string, 0, len(expense.ParticipantIDs))
	for i, id := range expense.ParticipantIDs {
		values = append(values, "("+placeholders(3)+")")
		args = append(args, expense.ID, id, i)
	}

	_, err := q.ExecContext(ctx,
		"INSERT INTO expense_shares (expense_id, participant_id, position) VALUES "+strings.Join(values, ", "),
		args...,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return models.ErrValidation("expense participants must be unique")
		}
		return fmt.Errorf("failed to insert expense shares: %w", err)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	if err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount,
		&e.PayerID, &e.Payer, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}
