package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UserStore reads user identity and profile data.
type UserStore struct {
	db DB
}

// NewUserStore creates a user store backed by the given database.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// GetByID resolves a user by identity. Missing profile fields fall back to
// "User"/"patient" so a bare auth row still resolves.
func (s *UserStore) GetByID(ctx context.Context, userID string) (*User, error) {
	query := `
		SELECT
			u.id::text,
			u.email,
			COALESCE(p.full_name, 'User'),
			COALESCE(p.phone, ''),
			COALESCE(ur.role, 'patient')
		FROM users u
		LEFT JOIN profiles p ON u.id = p.user_id
		LEFT JOIN user_roles ur ON u.id = ur.user_id
		WHERE u.id::text = $1
	`
	var user User
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Phone,
		&user.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: select user: %w", err)
	}
	return &user, nil
}
