package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
)

// ListUsers retrieves all users
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY id")
	return users, err
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, mapError(err))
	}
	return &user, nil
}

// CreateUser inserts a user. The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING *`

	err := s.db.GetContext(ctx, user, query, user.Name, user.Email, user.PasswordHash, user.Role, user.Status)
	return mapError(err)
}

// UpdateUser overwrites the mutable fields of a user
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, role = $4, status = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING *`

	err := s.db.GetContext(ctx, user, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.Status, user.ID)
	if err != nil {
		return fmt.Errorf("user %d: %w", user.ID, mapError(err))
	}
	return nil
}

// DeleteUser removes a user
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	return requireAffected(res, "user", fmt.Sprint(id))
}
