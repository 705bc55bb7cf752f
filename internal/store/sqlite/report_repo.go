package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"amoria/internal/domain"
)

type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

var _ domain.ReportRepository = (*ReportRepo)(nil)

func (r *ReportRepo) Create(ctx context.Context, rep *domain.Report) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (reporter_id, reported_id, reason, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rep.ReporterID, rep.ReportedID, rep.Reason, rep.Details, now)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rep.ID = id
	rep.CreatedAt = now
	return nil
}

func (r *ReportRepo) List(ctx context.Context, offset, limit int) ([]*domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reporter_id, reported_id, reason, details, created_at
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var res []*domain.Report
	for rows.Next() {
		rep := &domain.Report{}
		if err := rows.Scan(&rep.ID, &rep.ReporterID, &rep.ReportedID, &rep.Reason, &rep.Details, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		res = append(res, rep)
	}
	return res, rows.Err()
}
