package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
)

const selectRuleColumns = `id, raw_pattern, preferred_description, method_id, created_at`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (*matching.Rule, error) {
	var (
		r        matching.Rule
		methodID uuid.NullUUID
	)

	if err := row.Scan(&r.ID, &r.Pattern, &r.Description, &methodID, &r.CreatedAt); err != nil {
		return nil, err
	}

	if methodID.Valid {
		r.MethodID = &methodID.UUID
	}

	return &r, nil
}

func (s *Store) FindMatch(ctx context.Context, description string) (*matching.Rule, error) {
	query := `
		SELECT ` + selectRuleColumns + `
		FROM description_mappings
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	rule, err := scanRule(s.db.QueryRowContext(ctx, query, description))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return rule, nil
}

func (s *Store) CreateRule(ctx context.Context, rule *matching.Rule) error {
	query := `
		INSERT INTO description_mappings (raw_pattern, preferred_description, method_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, rule.Pattern, rule.Description, rule.MethodID).
		Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return matching.ErrUnknownMethod
		}

		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context) ([]*matching.Rule, error) {
	query := `SELECT ` + selectRuleColumns + ` FROM description_mappings ORDER BY raw_pattern`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var rules []*matching.Rule

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return rules, nil
}
