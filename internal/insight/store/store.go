package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/insight"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateInsight(ctx context.Context, in *insight.Insight) error {
	query := `
		INSERT INTO ai_insights (user_id, insight_type, insight_text, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query, in.UserID, in.Type, in.Text, in.CreatedAt, in.ExpiresAt).Scan(&in.ID)
	if err != nil {
		return fmt.Errorf("creating insight: %w", err)
	}

	return nil
}

// ListInsights returns owner's insights that have not expired at now, newest
// first.
func (s *Store) ListInsights(ctx context.Context, owner uuid.UUID, now time.Time, limit int) ([]*insight.Insight, error) {
	query := `
		SELECT id, user_id, insight_type, insight_text, created_at, expires_at
		FROM ai_insights
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, owner, now, limit)
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}
	defer rows.Close()

	insights := []*insight.Insight{}

	for rows.Next() {
		var in insight.Insight
		if err := rows.Scan(&in.ID, &in.UserID, &in.Type, &in.Text, &in.CreatedAt, &in.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning insight: %w", err)
		}

		insights = append(insights, &in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating insights: %w", err)
	}

	return insights, nil
}
