package ledger

import (
	"context"

	"quintastock/internal/core/id"
)

// ListFilter narrows stock queries. Zero value returns everything.
type ListFilter struct {
	// Location filters by display location; "" means all locations,
	// "Stock Geral" matches the central warehouse.
	Location string

	// Search matches brand or wine name (case-insensitive substring)
	Search string

	// WineType filters by wine classification
	WineType WineType

	// LowStockOnly keeps entries flagged for alerts at or below the threshold
	LowStockOnly bool

	Limit  int
	Offset int
}

// Repository defines persistence operations for stock entries.
//
// AdjustQuantity must clamp at zero in the store itself: the resulting
// quantity is max(0, quantity+delta), never an error, so that concurrent
// writers cannot drive an entry negative.
type Repository interface {
	// Create inserts a new entry
	Create(ctx context.Context, e *StockEntry) error

	// GetByID retrieves an entry by ID
	GetByID(ctx context.Context, entryID id.ID) (*StockEntry, error)

	// GetByIDForUpdate retrieves an entry with a row lock
	GetByIDForUpdate(ctx context.Context, entryID id.ID) (*StockEntry, error)

	// FindByKey retrieves an entry by natural key; quinta nil is the
	// central warehouse. Returns NOT_FOUND when absent.
	FindByKey(ctx context.Context, brand, wineName string, quinta *string) (*StockEntry, error)

	// ListByWine returns all entries of one wine across locations
	ListByWine(ctx context.Context, brand, wineName string) ([]*StockEntry, error)

	// List retrieves entries with filtering, ordered by brand then wine name
	List(ctx context.Context, filter ListFilter) ([]*StockEntry, error)

	// Update modifies an entry (with optimistic locking)
	Update(ctx context.Context, e *StockEntry) error

	// AdjustQuantity applies delta clamped at zero and returns the
	// resulting quantity
	AdjustQuantity(ctx context.Context, entryID id.ID, delta int) (int, error)

	// Delete removes an entry
	Delete(ctx context.Context, entryID id.ID) error

	// LocationHasStock reports whether any entry at the location has
	// quantity above zero
	LocationHasStock(ctx context.Context, quinta *string) (bool, error)
}
