package reports

import (
	"context"
	"testing"
	"time"

	"quintastock/internal/core/apperror"
)

type fakeRepo struct {
	lastMovement MovementReportFilter
	lastMost     MostMovedFilter
}

func (f *fakeRepo) GetMovementReport(ctx context.Context, filter MovementReportFilter) (*MovementReport, error) {
	f.lastMovement = filter
	return &MovementReport{FromDate: filter.FromDate, ToDate: filter.ToDate}, nil
}

func (f *fakeRepo) GetStockByLocation(ctx context.Context) (*StockByLocationReport, error) {
	return &StockByLocationReport{AsOf: time.Now()}, nil
}

func (f *fakeRepo) GetMostMoved(ctx context.Context, filter MostMovedFilter) (*MostMovedReport, error) {
	f.lastMost = filter
	return &MostMovedReport{}, nil
}

type recordingTx struct {
	calls int
}

func (r *recordingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *recordingTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

func TestMovementReport_PeriodValidation(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, -1, 0)

	_, err := svc.MovementReport(context.Background(), MovementReportFilter{FromDate: &from, ToDate: &to})
	if err == nil {
		t.Fatal("expected error for reversed period")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.MovementReport(context.Background(), MovementReportFilter{FromDate: &from}); err != nil {
		t.Fatalf("open-ended period should pass: %v", err)
	}
}

func TestMostMoved_DefaultLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)

	if _, err := svc.MostMoved(context.Background(), MostMovedFilter{}); err != nil {
		t.Fatal(err)
	}
	if repo.lastMost.Limit != 10 {
		t.Fatalf("expected default limit 10, got %d", repo.lastMost.Limit)
	}

	if _, err := svc.MostMoved(context.Background(), MostMovedFilter{Limit: 3}); err != nil {
		t.Fatal(err)
	}
	if repo.lastMost.Limit != 3 {
		t.Fatalf("explicit limit overridden, got %d", repo.lastMost.Limit)
	}
}

func TestReports_RunReadOnly(t *testing.T) {
	repo := &fakeRepo{}
	rtx := &recordingTx{}
	svc := NewService(repo, rtx)

	if _, err := svc.StockByLocation(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.MostMoved(context.Background(), MostMovedFilter{}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.MovementReport(context.Background(), MovementReportFilter{}); err != nil {
		t.Fatal(err)
	}

	if rtx.calls != 3 {
		t.Fatalf("expected 3 read-only transactions, got %d", rtx.calls)
	}
}
