package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/user"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return New(db), mock
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.CreateUser(context.Background(), &user.User{Username: "admin"})
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
	assert.EqualError(t, err, "Username already exists")
}

func TestStore_GetByUsername(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	joined := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "password_hash", "first_name", "last_name", "email",
			"is_staff", "is_active", "date_joined", "last_login",
		}).AddRow(id.String(), "alice", "hash", "Alice", "K", "a@example.com", true, true, joined, nil))

	u, err := s.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.IsStaff)
	assert.Nil(t, u.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteUser_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteUser(context.Background(), uuid.New()), user.ErrNotFound)
}
