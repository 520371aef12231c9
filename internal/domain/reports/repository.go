package reports

import (
	"context"
)

// Repository aggregates report data with store-side queries.
type Repository interface {
	// GetMovementReport lists approved transfers in the period with
	// per-direction totals
	GetMovementReport(ctx context.Context, filter MovementReportFilter) (*MovementReport, error)

	// GetStockByLocation aggregates current stock per location
	GetStockByLocation(ctx context.Context) (*StockByLocationReport, error)

	// GetMostMoved ranks wines by bottles moved in approved transfers
	GetMostMoved(ctx context.Context, filter MostMovedFilter) (*MostMovedReport, error)
}
