package quinta

import (
	"context"

	"quintastock/internal/core/id"
)

// Repository defines persistence operations for the quinta catalog.
type Repository interface {
	// Create inserts a new quinta
	Create(ctx context.Context, q *Quinta) error

	// GetByID retrieves a quinta by ID
	GetByID(ctx context.Context, quintaID id.ID) (*Quinta, error)

	// GetByName retrieves a quinta by its unique name
	GetByName(ctx context.Context, name string) (*Quinta, error)

	// List returns all quintas ordered by name
	List(ctx context.Context, includeInactive bool) ([]*Quinta, error)

	// Update modifies an existing quinta (with optimistic locking)
	Update(ctx context.Context, q *Quinta) error

	// Delete removes a quinta from the catalog
	Delete(ctx context.Context, quintaID id.ID) error
}
