package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
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

// scanTransaction expects the column order of selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr, currencyStr string

	if err := s.Scan(
		&tx.ID, &typeStr, &currencyStr, &tx.Amount, &tx.Description, &tx.Date,
		&tx.MethodID, &tx.MethodName, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Currency = transaction.Currency(currencyStr)

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.type, t.currency, t.amount, t.description, t.date,
	t.method_id, m.name AS method_name, t.created_at
`

const fromTransactions = `
	FROM transactions t
	JOIN payment_methods m ON t.method_id = m.id`

// whereClause renders the filter as a WHERE clause with positional args.
func whereClause(filter transaction.ListFilter) (string, []any) {
	var conds []string

	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Type != nil {
		add("t.type = $%d", string(*filter.Type))
	}

	if filter.MethodID != nil {
		add("t.method_id = $%d", *filter.MethodID)
	}

	if filter.Currency != nil {
		add("t.currency = $%d", string(*filter.Currency))
	}

	if filter.DateFrom != nil {
		add("t.date >= $%d", *filter.DateFrom)
	}

	if filter.DateTo != nil {
		add("t.date <= $%d", *filter.DateTo)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func translate(err error, action string) error {
	if database.IsForeignKeyViolation(err) {
		return transaction.ErrUnknownMethod
	}

	return fmt.Errorf("%s: %w", action, err)
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (type, currency, amount, description, date, method_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		string(tx.Type),
		string(tx.Currency),
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.MethodID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return translate(err, "creating transaction")
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + selectTransactionColumns + fromTransactions + where +
		` ORDER BY t.date DESC, t.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) SumByCurrency(ctx context.Context, filter transaction.ListFilter) ([]transaction.Sum, error) {
	where, args := whereClause(filter)
	query := `SELECT t.currency, t.type, COALESCE(SUM(t.amount), 0)
		FROM transactions t` + where + `
		GROUP BY t.currency, t.type`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summing transactions: %w", err)
	}
	defer rows.Close()

	var sums []transaction.Sum

	for rows.Next() {
		var currency, typ string

		var total int64

		if err := rows.Scan(&currency, &typ, &total); err != nil {
			return nil, fmt.Errorf("scanning sum: %w", err)
		}

		sums = append(sums, transaction.Sum{
			Currency: transaction.Currency(currency),
			Type:     transaction.Type(typ),
			Total:    total,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sums: %w", err)
	}

	return sums, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, currency = $2, amount = $3, description = $4, date = $5, method_id = $6
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		string(tx.Type),
		string(tx.Currency),
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.MethodID,
		tx.ID,
	)
	if err != nil {
		return translate(err, "updating transaction")
	}

	return expectOne(res, transaction.ErrNotFound)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return expectOne(res, transaction.ErrNotFound)
}

func (s *Store) CreateMethod(ctx context.Context, m *transaction.Method) error {
	query := `INSERT INTO payment_methods (name) VALUES ($1) RETURNING id, created_at`

	if err := s.db.QueryRowContext(ctx, query, m.Name).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("creating payment method: %w", err)
	}

	return nil
}

func (s *Store) ListMethods(ctx context.Context) ([]*transaction.Method, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM payment_methods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}
	defer rows.Close()

	var methods []*transaction.Method

	for rows.Next() {
		var m transaction.Method
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment method: %w", err)
		}

		methods = append(methods, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment methods: %w", err)
	}

	return methods, nil
}

func (s *Store) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return transaction.ErrMethodInUse
		}

		return fmt.Errorf("deleting payment method: %w", err)
	}

	return expectOne(res, transaction.ErrMethodNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction serialized against other imports touching
// the same date range.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(minDate, maxDate)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

type lookupKey struct {
	Date        string
	Amount      int64
	Type        transaction.Type
	Currency    transaction.Currency
	Description string
}

func (itx *importTx) FindDuplicates(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:        p.Date.Format(time.DateOnly),
			Amount:      p.Amount,
			Type:        p.Type,
			Currency:    p.Currency,
			Description: p.Description,
		}] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.date >= $1 AND t.date <= $2
		ORDER BY t.date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		k := lookupKey{
			Date:        tx.Date.Format(time.DateOnly),
			Amount:      tx.Amount,
			Type:        tx.Type,
			Currency:    tx.Currency,
			Description: tx.Description,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	query := `
		INSERT INTO transactions (type, currency, amount, description, date, method_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	for _, tx := range txs {
		err := itx.tx.QueryRowContext(ctx, query,
			string(tx.Type),
			string(tx.Currency),
			tx.Amount,
			tx.Description,
			tx.Date,
			tx.MethodID,
		).Scan(&tx.ID, &tx.CreatedAt)
		if err != nil {
			return translate(err, "creating transaction")
		}
	}

	return nil
}
