package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fooddept/fdbms/internal/models"
)

// ListUsers returns every user in the order they were created.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, password_hash, role
		FROM users
		ORDER BY rowid
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.Role,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// ReplaceUsers swaps the whole user collection in one transaction.
func (s *SQLiteStore) ReplaceUsers(ctx context.Context, users []models.User) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceUsers(ctx, tx, users)
	})
}

func replaceUsers(ctx context.Context, tx *sql.Tx, users []models.User) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	query := `
		INSERT INTO users (id, username, password_hash, role)
		VALUES (?, ?, ?, ?)
	`
	for _, user := range users {
		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Username,
			user.PasswordHash,
			string(user.Role),
		)
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Username, err)
		}
	}
	return nil
}
