package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindCategory matches patterns as plain substrings, so '%' and '_' in a
// stored pattern carry no wildcard meaning.
func (s *Store) FindCategory(ctx context.Context, owner uuid.UUID, description string) (string, error) {
	query := `
		SELECT category
		FROM category_rules
		WHERE user_id = $1 AND POSITION(LOWER(pattern) IN LOWER($2)) > 0
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, owner, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding category rule: %w", err)
	}

	return category, nil
}

func (s *Store) CreateRule(ctx context.Context, owner uuid.UUID, pattern, category string) error {
	query := `
		INSERT INTO category_rules (user_id, pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, owner, pattern, category)
	if err != nil {
		return fmt.Errorf("creating category rule: %w", err)
	}

	return nil
}
