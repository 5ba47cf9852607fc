package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/anima/internal/models"
)

const userColumns = `id, email, full_name, role, anima_points_balance, avatar_url, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.AnimaPointsBalance, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreateUser returns the profile for seed.ID, inserting it from seed when absent.
// Existing rows are never overwritten.
func (s *Store) GetOrCreateUser(ctx context.Context, seed models.User) (*models.User, error) {
	q := `
		INSERT INTO users (id, email, full_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, q, seed.ID, seed.Email, seed.FullName, seed.AvatarURL); err != nil {
		return nil, fmt.Errorf("failed to ensure user %s: %w", seed.ID, err)
	}
	return s.GetUserByID(ctx, seed.ID)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

// GetUserRole reads users.role. Callers must use the service-credential store.
func (s *Store) GetUserRole(ctx context.Context, id uuid.UUID) (string, error) {
	var role string
	err := s.db.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role for %s: %w", id, err)
	}
	return role, nil
}

// ListUsers pages through users ordered by balance.
func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY anima_points_balance DESC, created_at LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
