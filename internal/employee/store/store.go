package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/employee"
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

const selectEmployeeColumns = `
	id, first_name, last_name, middle_name, position, phone, email,
	hired_date, is_active, created_at
`

func scanEmployee(s scanner) (*employee.Employee, error) {
	var e employee.Employee

	if err := s.Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.MiddleName, &e.Position, &e.Phone, &e.Email,
		&e.HiredDate, &e.IsActive, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &e, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e *employee.Employee) error {
	query := `
		INSERT INTO employees (first_name, last_name, middle_name, position, phone, email, hired_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.FirstName, e.LastName, e.MiddleName, e.Position, e.Phone, e.Email, e.HiredDate, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating employee: %w", err)
	}

	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	query := `SELECT ` + selectEmployeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, employee.ErrNotFound
		}

		return nil, fmt.Errorf("getting employee: %w", err)
	}

	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, error) {
	query := `SELECT ` + selectEmployeeColumns + ` FROM employees`

	var args []any

	if filter.Active != nil {
		query += ` WHERE is_active = $1`

		args = append(args, *filter.Active)
	}

	query += ` ORDER BY last_name, first_name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var employees []*employee.Employee

	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}

		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employees: %w", err)
	}

	return employees, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e *employee.Employee) error {
	query := `
		UPDATE employees
		SET first_name = $1, last_name = $2, middle_name = $3, position = $4,
		    phone = $5, email = $6, hired_date = $7, is_active = $8
		WHERE id = $9
	`

	res, err := s.db.ExecContext(ctx, query,
		e.FirstName, e.LastName, e.MiddleName, e.Position, e.Phone, e.Email, e.HiredDate, e.IsActive, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating employee: %w", err)
	}

	return expectOne(res)
}

func (s *Store) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting employee: %w", err)
	}

	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return employee.ErrNotFound
	}

	return nil
}
