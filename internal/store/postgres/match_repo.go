package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"amoria/internal/domain"
)

type MatchRepo struct {
	db *sql.DB
}

func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

var _ domain.MatchRepository = (*MatchRepo)(nil)

func (r *MatchRepo) Create(ctx context.Context, m *domain.Match) error {
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO matches (initiator_id, receiver_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, m.InitiatorID, m.ReceiverID, now).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	m.CreatedAt = now
	return nil
}

func (r *MatchRepo) ExistsForPair(ctx context.Context, a, b int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM matches
		WHERE (initiator_id = $1 AND receiver_id = $2) OR (initiator_id = $2 AND receiver_id = $1)
		LIMIT 1
	`, a, b).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("match exists: %w", err)
	}
	return true, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, initiator_id, receiver_id, created_at
		FROM matches
		WHERE initiator_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		m := &domain.Match{}
		if err := rows.Scan(&m.ID, &m.InitiatorID, &m.ReceiverID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *MatchRepo) DeleteForPair(ctx context.Context, a, b int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM matches
		WHERE (initiator_id = $1 AND receiver_id = $2) OR (initiator_id = $2 AND receiver_id = $1)
	`, a, b)
	if err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}
