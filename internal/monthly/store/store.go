package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectEntryColumns = `
	me.id, me.employee_id, TRIM(e.last_name || ' ' || e.first_name) AS employee_name,
	me.month, me.balance, me.version, me.created_at, me.updated_at
`

const fromEntries = `
	FROM monthly_entries me
	JOIN employees e ON e.id = me.employee_id`

func scanEntry(s scanner) (*monthly.Entry, error) {
	var e monthly.Entry

	if err := s.Scan(
		&e.ID, &e.EmployeeID, &e.EmployeeName, &e.Month, &e.Balance, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &e, nil
}

func getEntry(ctx context.Context, q querier, where string, lock bool, args ...any) (*monthly.Entry, error) {
	query := `SELECT ` + selectEntryColumns + fromEntries + ` WHERE ` + where
	if lock {
		query += ` FOR UPDATE OF me`
	}

	e, err := scanEntry(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, monthly.ErrEntryNotFound
		}

		return nil, fmt.Errorf("getting monthly entry: %w", err)
	}

	return e, nil
}

func (s *Store) CreateEntry(ctx context.Context, e *monthly.Entry) error {
	query := `
		INSERT INTO monthly_entries (employee_id, month, balance)
		VALUES ($1, $2, $3)
		RETURNING id, version, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, e.EmployeeID, e.Month, e.Balance).
		Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return monthly.ErrEntryExists
		case database.IsForeignKeyViolation(err):
			return monthly.ErrEmployeeNotFound
		}

		return fmt.Errorf("creating monthly entry: %w", err)
	}

	return nil
}

// EnsureEntry inserts the (employee, month) entry if it is missing and
// returns the stored row either way. An existing balance is never touched.
func (s *Store) EnsureEntry(ctx context.Context, employeeID uuid.UUID, month time.Time) (*monthly.Entry, error) {
	insert := `
		INSERT INTO monthly_entries (employee_id, month)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT monthly_entries_employee_month_key DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, insert, employeeID, month); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, monthly.ErrEmployeeNotFound
		}

		return nil, fmt.Errorf("ensuring monthly entry: %w", err)
	}

	return getEntry(ctx, s.db, "me.employee_id = $1 AND me.month = $2", false, employeeID, month)
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*monthly.Entry, error) {
	return getEntry(ctx, s.db, "me.id = $1", false, id)
}

func (s *Store) ListEntries(ctx context.Context, filter monthly.ListFilter) ([]*monthly.Entry, error) {
	var conds []string

	var args []any

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conds = append(conds, fmt.Sprintf("me.employee_id = $%d", len(args)))
	}

	if filter.Month != nil {
		args = append(args, *filter.Month)
		conds = append(conds, fmt.Sprintf("me.month = $%d", len(args)))
	}

	query := `SELECT ` + selectEntryColumns + fromEntries
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	query += ` ORDER BY me.month DESC, employee_name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing monthly entries: %w", err)
	}
	defer rows.Close()

	var entries []*monthly.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning monthly entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly entries: %w", err)
	}

	return entries, nil
}

const selectProductColumns = `id, entry_id, product_name, quantity, price_per_unit, total_amount, created_at`

func scanProduct(s scanner) (*monthly.Product, error) {
	var p monthly.Product

	if err := s.Scan(&p.ID, &p.EntryID, &p.Name, &p.Quantity, &p.PricePerUnit, &p.TotalAmount, &p.CreatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, entryID uuid.UUID) ([]*monthly.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM monthly_products WHERE entry_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*monthly.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

const selectPaymentColumns = `id, entry_id, amount, description, payment_date, created_at`

func scanPayment(s scanner) (*monthly.Payment, error) {
	var p monthly.Payment

	if err := s.Scan(&p.ID, &p.EntryID, &p.Amount, &p.Description, &p.PaymentDate, &p.CreatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) ListPayments(ctx context.Context, entryID uuid.UUID) ([]*monthly.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM monthly_payments WHERE entry_id = $1 ORDER BY payment_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*monthly.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (monthly.LedgerTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	return &ledgerTx{tx: tx}, nil
}

func (l *ledgerTx) Commit() error   { return l.tx.Commit() }
func (l *ledgerTx) Rollback() error { return l.tx.Rollback() }

func (l *ledgerTx) LockEntry(ctx context.Context, id uuid.UUID) (*monthly.Entry, error) {
	return getEntry(ctx, l.tx, "me.id = $1", true, id)
}

func (l *ledgerTx) SaveBalance(ctx context.Context, e *monthly.Entry) error {
	query := `
		UPDATE monthly_entries
		SET balance = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at
	`

	err := l.tx.QueryRowContext(ctx, query, e.Balance, e.ID, e.Version).Scan(&e.Version, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return monthly.ErrConcurrentUpdate
		}

		if database.IsNumericOutOfRange(err) {
			return database.ErrValueOutOfRange
		}

		return fmt.Errorf("saving balance: %w", err)
	}

	return nil
}

func (l *ledgerTx) CreateProduct(ctx context.Context, p *monthly.Product) error {
	query := `
		INSERT INTO monthly_products (entry_id, product_name, quantity, price_per_unit, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := l.tx.QueryRowContext(ctx, query, p.EntryID, p.Name, p.Quantity, p.PricePerUnit, p.TotalAmount).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if database.IsNumericOutOfRange(err) {
			return database.ErrValueOutOfRange
		}

		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}

func (l *ledgerTx) GetProduct(ctx context.Context, id uuid.UUID) (*monthly.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM monthly_products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(l.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, monthly.ErrProductNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (l *ledgerTx) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := l.tx.ExecContext(ctx, `DELETE FROM monthly_products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	return nil
}

func (l *ledgerTx) CreatePayment(ctx context.Context, p *monthly.Payment) error {
	query := `
		INSERT INTO monthly_payments (entry_id, amount, description, payment_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := l.tx.QueryRowContext(ctx, query, p.EntryID, p.Amount, p.Description, p.PaymentDate).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if database.IsNumericOutOfRange(err) {
			return database.ErrValueOutOfRange
		}

		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (l *ledgerTx) GetPayment(ctx context.Context, id uuid.UUID) (*monthly.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM monthly_payments WHERE id = $1 FOR UPDATE`

	p, err := scanPayment(l.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, monthly.ErrPaymentNotFound
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (l *ledgerTx) DeletePayment(ctx context.Context, id uuid.UUID) error {
	if _, err := l.tx.ExecContext(ctx, `DELETE FROM monthly_payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}

	return nil
}
