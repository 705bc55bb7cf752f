package service

import (
	"context"
	"fmt"
	"strings"

	"amoria/internal/domain"
)

// ReportService records abuse reports for admin review.
type ReportService struct {
	reports domain.ReportRepository
	users   domain.UserRepository
}

func NewReportService(reports domain.ReportRepository, users domain.UserRepository) *ReportService {
	return &ReportService{reports: reports, users: users}
}

func (s *ReportService) Create(ctx context.Context, reporterID, reportedID int64, reason string, details *string) (*domain.Report, error) {
	reason = strings.TrimSpace(reason)
	if reportedID <= 0 || reporterID == reportedID || reason == "" {
		return nil, domain.ErrInvalidInput
	}

	target, err := s.users.GetByID(ctx, reportedID)
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}

	report := &domain.Report{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Details:    details,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) List(ctx context.Context, offset, limit int) ([]*domain.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reports.List(ctx, offset, limit)
}
