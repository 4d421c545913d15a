package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// AddParticipant persists a new participant. The (group_id, name) UNIQUE
// constraint is the only duplicate check.
func (s *Store) AddParticipant(ctx context.Context, participant *models.Participant) error {
	if participant.ID == "" {
		participant.ID = uuid.New().String()
	}
	if participant.JoinedAt == 0 {
		participant.JoinedAt = s.now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO participants (id, group_id, name, joined_at) VALUES (?, ?, ?, ?)",
		participant.ID, participant.GroupID, participant.Name, participant.JoinedAt,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return models.ErrConflict("participant %q already exists in the group", participant.Name)
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	return nil
}

// GetParticipant retrieves a participant by ID or, failing that, by name.
func (s *Store) GetParticipant(ctx context.Context, groupID, ref string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, joined_at FROM participants
		 WHERE group_id = ? AND (id = ? OR name = ?)
		 ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END
		 LIMIT 1`,
		groupID, ref, ref, ref,
	).Scan(&p.ID, &p.GroupID, &p.Name, &p.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound("participant not found: %s", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants retrieves a group's roster ordered by name.
func (s *Store) ListParticipants(ctx context.Context, groupID string) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, name, joined_at FROM participants WHERE group_id = ? ORDER BY name",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := []*models.Participant{}
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// RenameParticipant changes a participant's name. Expenses reference the
// participant by ID, so a single UPDATE is enough.
func (s *Store) RenameParticipant(ctx context.Context, groupID, participantID, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET name = ? WHERE id = ? AND group_id = ?",
		name, participantID, groupID,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return models.ErrConflict("participant %q already exists in the group", name)
		}
		return fmt.Errorf("failed to rename participant: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound("participant not found: %s", participantID)
	}
	return nil
}

// RemoveParticipant deletes a participant and cascades through expenses and
// payments in one transaction.
func (s *Store) RemoveParticipant(ctx context.Context, groupID, participantID string) (*models.RemovalSummary, error) {
	summary := &models.RemovalSummary{}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM participants WHERE id = ? AND group_id = ?",
			participantID, groupID,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound("participant not found: %s", participantID)
		}
		if err != nil {
			return fmt.Errorf("failed to check participant existence: %w", err)
		}

		// Expenses they paid for go away entirely.
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM expense_shares WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ? AND payer_id = ?)",
			groupID, participantID,
		); err != nil {
			return fmt.Errorf("failed to delete shares of paid expenses: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			"DELETE FROM expenses WHERE group_id = ? AND payer_id = ?",
			groupID, participantID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete paid expenses: %w", err)
		}
		paid, err := rowsAffected(res)
		if err != nil {
			return err
		}

		// Drop them from everyone else's share sets.
		res, err = tx.ExecContext(ctx,
			"DELETE FROM expense_shares WHERE participant_id = ?",
			participantID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete shares: %w", err)
		}
		touched, err := rowsAffected(res)
		if err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx,
			`DELETE FROM expenses WHERE group_id = ?
			 AND NOT EXISTS (SELECT 1 FROM expense_shares s WHERE s.expense_id = expenses.id)`,
			groupID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete emptied expenses: %w", err)
		}
		emptied, err := rowsAffected(res)
		if err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx,
			"DELETE FROM payments WHERE group_id = ? AND (from_id = ? OR to_id = ?)",
			groupID, participantID, participantID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		payments, err := rowsAffected(res)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM participants WHERE id = ? AND group_id = ?",
			participantID, groupID,
		); err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}

		summary.DeletedExpenses = paid + emptied
		summary.TrimmedExpenses = touched - emptied
		summary.DeletedPayments = payments
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}
