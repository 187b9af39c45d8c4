package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/warehouse"
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

const selectItemColumns = `id, name, description, quantity, quantity_kg, version, created_at, updated_at`

func scanItem(s scanner) (*warehouse.Item, error) {
	var item warehouse.Item

	if err := s.Scan(
		&item.ID, &item.Name, &item.Description, &item.Quantity, &item.QuantityKg,
		&item.Version, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &item, nil
}

const selectMovementColumns = `id, item_id, type, quantity, quantity_kg, date, description, created_at`

func scanMovement(s scanner) (*warehouse.Movement, error) {
	var m warehouse.Movement

	var typ string

	if err := s.Scan(
		&m.ID, &m.ItemID, &typ, &m.Quantity, &m.QuantityKg, &m.Date, &m.Description, &m.CreatedAt,
	); err != nil {
		return nil, err
	}

	m.Type = warehouse.MovementType(typ)

	return &m, nil
}

func (s *Store) CreateItem(ctx context.Context, item *warehouse.Item) error {
	query := `
		INSERT INTO warehouse_items (name, description, quantity, quantity_kg)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, item.Name, item.Description, item.Quantity, item.QuantityKg).
		Scan(&item.ID, &item.Version, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if database.IsNumericOutOfRange(err) {
			return database.ErrValueOutOfRange
		}

		return fmt.Errorf("creating item: %w", err)
	}

	return nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*warehouse.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM warehouse_items WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, warehouse.ErrItemNotFound
		}

		return nil, fmt.Errorf("getting item: %w", err)
	}

	return item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]*warehouse.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectItemColumns+` FROM warehouse_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []*warehouse.Item

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

// UpdateItem writes every field of item if the stored version still matches
// item.Version, then advances item.Version.
func (s *Store) UpdateItem(ctx context.Context, item *warehouse.Item) error {
	query := `
		UPDATE warehouse_items
		SET name = $1, description = $2, quantity = $3, quantity_kg = $4,
		    version = version + 1, updated_at = NOW()
		WHERE id = $5 AND version = $6
		RETURNING version, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		item.Name, item.Description, item.Quantity, item.QuantityKg, item.ID, item.Version,
	).Scan(&item.Version, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return warehouse.ErrConcurrentUpdate
		}

		if database.IsNumericOutOfRange(err) {
			return database.ErrValueOutOfRange
		}

		return fmt.Errorf("updating item: %w", err)
	}

	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM warehouse_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return warehouse.ErrItemNotFound
	}

	return nil
}

func (s *Store) ListMovements(ctx context.Context, itemID uuid.UUID) ([]*warehouse.Movement, error) {
	query := `SELECT ` + selectMovementColumns + `
		FROM warehouse_movements
		WHERE item_id = $1
		ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []*warehouse.Movement

	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}

		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating movements: %w", err)
	}

	return movements, nil
}

type stockTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (warehouse.StockTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning stock tx: %w", err)
	}

	return &stockTx{tx: tx}, nil
}

func (st *stockTx) Commit() error   { return st.tx.Commit() }
func (st *stockTx) Rollback() error { return st.tx.Rollback() }

func (st *stockTx) LockItem(ctx context.Context, id uuid.UUID) (*warehouse.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM warehouse_items WHERE id = $1 FOR UPDATE`

	item, err := scanItem(st.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, warehouse.ErrItemNotFound
		}

		return nil, fmt.Errorf("locking item: %w", err)
	}

	return item, nil
}

func (st *stockTx) SaveStock(ctx context.Context, item *warehouse.Item) error {
	query := `
		UPDATE warehouse_items
		SET quantity = $1, quantity_kg = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4
		RETURNING version, updated_at
	`

	err := st.tx.QueryRowContext(ctx, query, item.Quantity, item.QuantityKg, item.ID, item.Version).
		Scan(&item.Version, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return warehouse.ErrConcurrentUpdate
		}

		if database.IsNumericOutOfRange(err) {
			return database.ErrValueOutOfRange
		}

		return fmt.Errorf("saving stock: %w", err)
	}

	return nil
}

func (st *stockTx) CreateMovement(ctx context.Context, m *warehouse.Movement) error {
	query := `
		INSERT INTO warehouse_movements (item_id, type, quantity, quantity_kg, date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := st.tx.QueryRowContext(ctx, query,
		m.ItemID, string(m.Type), m.Quantity, m.QuantityKg, m.Date, m.Description,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if database.IsNumericOutOfRange(err) {
			return database.ErrValueOutOfRange
		}

		return fmt.Errorf("creating movement: %w", err)
	}

	return nil
}

func (st *stockTx) GetMovement(ctx context.Context, id uuid.UUID) (*warehouse.Movement, error) {
	query := `SELECT ` + selectMovementColumns + ` FROM warehouse_movements WHERE id = $1 FOR UPDATE`

	m, err := scanMovement(st.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, warehouse.ErrMovementNotFound
		}

		return nil, fmt.Errorf("getting movement: %w", err)
	}

	return m, nil
}

func (st *stockTx) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	if _, err := st.tx.ExecContext(ctx, `DELETE FROM warehouse_movements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting movement: %w", err)
	}

	return nil
}
