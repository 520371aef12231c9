package transfer

import (
	"context"
	"time"

	"quintastock/internal/core/id"
)

// HistoryFilter narrows transfer history queries. All set conditions compose
// with AND; results are always ordered newest first.
type HistoryFilter struct {
	// FromDate and ToDate bound the transfer date (inclusive)
	FromDate *time.Time
	ToDate   *time.Time

	// Location matches transfers touching it as source or destination
	Location string

	// Status filters by lifecycle state
	Status Status

	// MovementType filters by direction
	MovementType MovementType

	Limit  int
	Offset int
}

// Repository defines persistence operations for transfers.
type Repository interface {
	// Create inserts a transfer header
	Create(ctx context.Context, t *Transfer) error

	// SaveLines replaces the line items of a transfer
	SaveLines(ctx context.Context, transferID id.ID, lines []Line) error

	// GetByID retrieves a transfer without lines
	GetByID(ctx context.Context, transferID id.ID) (*Transfer, error)

	// GetByIDForUpdate retrieves a transfer with a row lock, for the
	// approval decision
	GetByIDForUpdate(ctx context.Context, transferID id.ID) (*Transfer, error)

	// GetLines retrieves line items ordered by line number
	GetLines(ctx context.Context, transferID id.ID) ([]Line, error)

	// UpdateStatus records a decision in place (with optimistic locking)
	UpdateStatus(ctx context.Context, t *Transfer) error

	// List retrieves transfers matching the filter, newest first
	List(ctx context.Context, filter HistoryFilter) ([]*Transfer, error)

	// CountPending returns the number of transfers awaiting a decision
	CountPending(ctx context.Context) (int64, error)
}
