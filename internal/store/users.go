package store

import (
	"context"
	"time"
)

type StaffUser struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

func (s *Store) CreateStaffUser(ctx context.Context, u StaffUser) (StaffUser, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO staff_users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, display_name, created_at`,
		u.ID, u.Email, u.Password, u.DisplayName)

	var out StaffUser
	err := row.Scan(&out.ID, &out.Email, &out.Password, &out.DisplayName, &out.CreatedAt)
	return out, err
}

func (s *Store) GetStaffUserByEmail(ctx context.Context, email string) (StaffUser, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM staff_users WHERE email = $1`, email)

	var out StaffUser
	err := row.Scan(&out.ID, &out.Email, &out.Password, &out.DisplayName, &out.CreatedAt)
	return out, err
}

func (s *Store) GetStaffUserByID(ctx context.Context, id string) (StaffUser, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM staff_users WHERE id = $1`, id)

	var out StaffUser
	err := row.Scan(&out.ID, &out.Email, &out.Password, &out.DisplayName, &out.CreatedAt)
	return out, err
}
