package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const groupColumns = "id, code, name, description, created_at"

// CreateGroup persists a new group to the database.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = s.now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expense_groups (id, code, name, description, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Code, group.Name, nullString(group.Description), group.CreatedAt,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return models.ErrConflict("group code %q already exists", group.Code)
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by code or ID.
func (s *Store) GetGroup(ctx context.Context, ref string) (*models.Group, error) {
	group, err := scanGroup(s.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM expense_groups WHERE code = ? OR id = ? LIMIT 1",
		ref, ref,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound("group not found: %s", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroups retrieves all groups, newest first.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+groupColumns+" FROM expense_groups ORDER BY created_at DESC, code",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// DeleteGroup removes a group together with its participants, expenses and payments.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		cleanup := []struct {
			what  string
			query string
		}{
			{"expense shares", "DELETE FROM expense_shares WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)"},
			{"payments", "DELETE FROM payments WHERE group_id = ?"},
			{"expenses", "DELETE FROM expenses WHERE group_id = ?"},
			{"participants", "DELETE FROM participants WHERE group_id = ?"},
		}
		for _, c := range cleanup {
			if _, err := tx.ExecContext(ctx, c.query, groupID); err != nil {
				return fmt.Errorf("failed to delete %s: %w", c.what, err)
			}
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM expense_groups WHERE id = ?", groupID)
		if err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrNotFound("group not found: %s", groupID)
		}
		return nil
	})
}

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	var description sql.NullString
	if err := row.Scan(&group.ID, &group.Code, &group.Name, &description, &group.CreatedAt); err != nil {
		return nil, err
	}
	group.Description = description.String
	return group, nil
}
