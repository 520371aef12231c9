package reports

import (
	"context"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/tx"
)

// Service provides report generation. Multi-query reports run in a read-only
// transaction so they see one consistent snapshot.
type Service struct {
	repo   Repository
	readTx tx.ReadOnlyManager
}

// NewService creates a new reports service. readTx may be nil, in which case
// queries run without snapshot isolation.
func NewService(repo Repository, readTx tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, readTx: readTx}
}

// MovementReport builds the movement report for a period and location.
func (s *Service) MovementReport(ctx context.Context, filter MovementReportFilter) (*MovementReport, error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, apperror.NewValidation("report period end precedes start").
			WithDetail("fromDate", filter.FromDate).
			WithDetail("toDate", filter.ToDate)
	}

	var report *MovementReport
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.repo.GetMovementReport(ctx, filter)
		return err
	})
	return report, err
}

// StockByLocation builds the current per-location stock breakdown.
func (s *Service) StockByLocation(ctx context.Context) (*StockByLocationReport, error) {
	var report *StockByLocationReport
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.repo.GetStockByLocation(ctx)
		return err
	})
	return report, err
}

// MostMoved ranks wines by bottles moved in approved transfers.
func (s *Service) MostMoved(ctx context.Context, filter MostMovedFilter) (*MostMovedReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	var report *MostMovedReport
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.repo.GetMostMoved(ctx, filter)
		return err
	})
	return report, err
}

func (s *Service) readOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.readTx == nil {
		return fn(ctx)
	}
	return s.readTx.ReadOnly(ctx, fn)
}
