package sqlite

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
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (initiator_id, receiver_id, created_at)
		VALUES (?, ?, ?)
	`, m.InitiatorID, m.ReceiverID, now)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	return nil
}

func (r *MatchRepo) ExistsForPair(ctx context.Context, a, b int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM matches
		WHERE (initiator_id = ? AND receiver_id = ?) OR (initiator_id = ? AND receiver_id = ?)
		LIMIT 1
	`, a, b, b, a).Scan(&one)
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
		WHERE initiator_id = ? OR receiver_id = ?
		ORDER BY created_at DESC
	`, userID, userID)
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
		WHERE (initiator_id = ? AND receiver_id = ?) OR (initiator_id = ? AND receiver_id = ?)
	`, a, b, b, a)
	if err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}
