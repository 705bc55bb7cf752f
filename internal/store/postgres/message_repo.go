package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"amoria/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

const messageColumns = `id, sender_id, receiver_id, body, created_at, seen, seen_at`

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, body, created_at, seen)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id
	`, m.SenderID, m.ReceiverID, m.Body, now).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.CreatedAt = now
	m.Seen = false
	m.SeenAt = nil
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	m := &domain.Message{}
	err := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id).Scan(
		&m.ID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Body,
		&m.CreatedAt,
		&m.Seen,
		&m.SeenAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) MarkSeen(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET seen = TRUE, seen_at = $1 WHERE id = $2 AND seen = FALSE
	`, at, id)
	if err != nil {
		return false, fmt.Errorf("mark seen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, a, b int64, before time.Time, limit int) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
	`
	args := []any{a, b}
	if !before.IsZero() {
		args = append(args, before)
		query += ` AND created_at < $` + strconv.Itoa(len(args))
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args))

	return r.queryMessages(ctx, query, args...)
}

func (r *MessageRepo) ListInvolving(ctx context.Context, userID int64) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryMessages(ctx, query, userID)
}

func (r *MessageRepo) CountUnseenBySender(ctx context.Context, receiverID int64) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = $1 AND seen = FALSE
		GROUP BY sender_id
	`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("count unseen: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var senderID int64
		var count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, fmt.Errorf("scan unseen count: %w", err)
		}
		counts[senderID] = count
	}
	return counts, rows.Err()
}

func (r *MessageRepo) MarkAllSeenFrom(ctx context.Context, senderID, receiverID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET seen = TRUE, seen_at = $1
		WHERE sender_id = $2 AND receiver_id = $3 AND seen = FALSE
	`, at, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("mark all seen: %w", err)
	}
	return nil
}

func (r *MessageRepo) queryMessages(ctx context.Context, query string, args ...any) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Body,
			&m.CreatedAt,
			&m.Seen,
			&m.SeenAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
