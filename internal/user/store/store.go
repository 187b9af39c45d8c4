package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectUserColumns = `
	id, username, password_hash, first_name, last_name, email,
	is_staff, is_active, date_joined, last_login
`

func scanUser(s scanner) (*user.User, error) {
	var u user.User

	if err := s.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Email,
		&u.IsStaff, &u.IsActive, &u.DateJoined, &u.LastLogin,
	); err != nil {
		return nil, err
	}

	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, email, is_staff, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, date_joined
	`

	err := s.db.QueryRowContext(ctx, query,
		u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Email, u.IsStaff, u.IsActive,
	).Scan(&u.ID, &u.DateJoined)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.ErrUsernameTaken
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, where string, arg any) (*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE ` + where

	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.get(ctx, "id = $1", id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.get(ctx, "username = $1", username)
}

func (s *Store) ListUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectUserColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*user.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET password_hash = $1, first_name = $2, last_name = $3, email = $4, is_staff = $5, is_active = $6
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		u.PasswordHash, u.FirstName, u.LastName, u.Email, u.IsStaff, u.IsActive, u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	return expectOne(res)
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return expectOne(res)
}

func (s *Store) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("setting last login: %w", err)
	}

	return nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return user.ErrNotFound
	}

	return nil
}
