package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/employee"
)

func TestStore_ListEmployees_ActiveFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db)
	hired := time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM employees WHERE is_active = \$1 ORDER BY last_name, first_name`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "first_name", "last_name", "middle_name", "position", "phone", "email",
			"hired_date", "is_active", "created_at",
		}).
			AddRow(uuid.NewString(), "Aziz", "Karimov", "", "Driver", "", "", hired, true, hired).
			AddRow(uuid.NewString(), "Dilnoza", "Saidova", "", "Cook", "", "", nil, true, hired))

	employees, err := s.ListEmployees(context.Background(), employee.ListFilter{Active: new(true)})
	require.NoError(t, err)
	require.Len(t, employees, 2)
	require.NotNil(t, employees[0].HiredDate)
	assert.True(t, hired.Equal(*employees[0].HiredDate))
	assert.Nil(t, employees[1].HiredDate)
	assert.Equal(t, "Karimov Aziz", employees[0].FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetEmployee_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM employees WHERE id`).WillReturnError(sql.ErrNoRows)

	_, err = New(db).GetEmployee(context.Background(), uuid.New())
	assert.ErrorIs(t, err, employee.ErrNotFound)
}
