package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreatePayment persists a new payment to the database.
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = s.now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, group_id, from_id, to_id, amount, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.GroupID, payment.FromID, payment.ToID,
		payment.Amount, nullString(payment.Note), payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// ListPayments retrieves all payments for a group, newest first.
func (s *Store) ListPayments(ctx context.Context, groupID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pm.id, pm.group_id, pm.from_id, f.name, pm.to_id, t.name, pm.amount, pm.note, pm.created_at
		 FROM payments pm
		 JOIN participants f ON f.id = pm.from_id
		 JOIN participants t ON t.id = pm.to_id
		 WHERE pm.group_id = ? ORDER BY pm.created_at DESC, pm.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		payment := &models.Payment{}
		var note sql.NullString

		if err := rows.Scan(&payment.ID, &payment.GroupID, &payment.FromID, &payment.From,
			&payment.ToID, &payment.To, &payment.Amount, &note, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Note = note.String

		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// DeletePayment removes a payment by ID.
func (s *Store) DeletePayment(ctx context.Context, groupID, paymentID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM payments WHERE id = ? AND group_id = ?",
		paymentID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound("payment not found: %s", paymentID)
	}
	return nil
}
