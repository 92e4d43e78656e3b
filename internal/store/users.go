package store

import (
	"context"
	"database/sql"
	"fmt"

	"nyamalink/internal/models"
)

// CreateUser inserts a new account. Email is unique.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, phone_number, role, longitude, latitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return s.db.QueryRowxContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.PhoneNumber,
		user.Role, user.Longitude, user.Latitude,
	).Scan(&user.ID, &user.CreatedAt)
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, nil when absent
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers retrieves all accounts, optionally filtered by role
func (s *Store) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if role == "" {
		err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at DESC")
		return users, err
	}
	err := s.db.SelectContext(ctx, &users,
		"SELECT * FROM users WHERE role = $1 ORDER BY created_at DESC", role)
	return users, err
}

// CountUsersByRole returns account counts per role for the admin dashboard
func (s *Store) CountUsersByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var role string
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}
