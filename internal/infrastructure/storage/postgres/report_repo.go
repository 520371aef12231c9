package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quintastock/internal/core/apperror"
	"quintastock/internal/domain/quinta"
	"quintastock/internal/domain/reports"
	"quintastock/internal/domain/transfer"
)

// ReportRepo implements reports.Repository with store-side aggregation.
type ReportRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ reports.Repository = (*ReportRepo)(nil)

// GetMovementReport lists approved transfers in the period with totals.
func (r *ReportRepo) GetMovementReport(ctx context.Context, filter reports.MovementReportFilter) (*reports.MovementReport, error) {
	q := r.builder.Select(
		"t.id::text AS transfer_id",
		"t.transfer_date AS date",
		"t.from_quinta",
		"t.to_quinta",
		"t.movement_type",
		"t.requester",
		"t.to_whom",
		"COALESCE(SUM(l.quantity), 0)::int AS quantity",
	).
		From(transfersTable+" t").
		Join(transferLinesTable+" l ON l.transfer_id = t.id").
		Where(squirrel.Eq{"t.status": transfer.StatusAprovado}).
		GroupBy("t.id", "t.transfer_date", "t.from_quinta", "t.to_quinta",
			"t.movement_type", "t.requester", "t.to_whom", "t.created_at").
		OrderBy("t.transfer_date DESC", "t.created_at DESC")

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"t.transfer_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"t.transfer_date": dayAfter(*filter.ToDate)})
	}
	if filter.Location != "" {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"t.from_quinta": filter.Location},
			squirrel.Eq{"t.to_quinta": filter.Location},
		})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []reports.MovementReportItem
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	report := &reports.MovementReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Location: filter.Location,
		Items:    items,
	}
	for _, item := range items {
		report.TotalBottles += item.Quantity
		switch transfer.MovementType(item.MovementType) {
		case transfer.MovementEntrada:
			report.TotalEntradas += item.Quantity
		case transfer.MovementSaida:
			report.TotalSaidas += item.Quantity
		}
	}
	return report, nil
}

// GetStockByLocation aggregates current stock per location.
func (r *ReportRepo) GetStockByLocation(ctx context.Context) (*reports.StockByLocationReport, error) {
	q := r.builder.Select(
		fmt.Sprintf("COALESCE(quinta, '%s') AS location", quinta.StockGeral),
		"COUNT(*)::int AS wines",
		"COALESCE(SUM(quantity), 0)::int AS total_bottles",
	).
		From(stockEntriesTable).
		GroupBy("quinta").
		OrderBy("quinta NULLS FIRST")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []reports.StockByLocationItem
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	report := &reports.StockByLocationReport{
		AsOf:  time.Now(),
		Items: items,
	}
	for _, item := range items {
		report.TotalBottles += item.TotalBottles
	}
	return report, nil
}

// GetMostMoved ranks wines by bottles moved in approved transfers.
func (r *ReportRepo) GetMostMoved(ctx context.Context, filter reports.MostMovedFilter) (*reports.MostMovedReport, error) {
	q := r.builder.Select(
		"l.brand",
		"l.wine_name",
		"COUNT(DISTINCT t.id)::int AS transfers",
		"COALESCE(SUM(l.quantity), 0)::int AS total_bottles",
	).
		From(transferLinesTable+" l").
		Join(transfersTable+" t ON t.id = l.transfer_id").
		Where(squirrel.Eq{"t.status": transfer.StatusAprovado}).
		GroupBy("l.brand", "l.wine_name").
		OrderBy("total_bottles DESC", "l.brand", "l.wine_name")

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"t.transfer_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"t.transfer_date": dayAfter(*filter.ToDate)})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []reports.MostMovedItem
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	return &reports.MostMovedReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Items:    items,
	}, nil
}
