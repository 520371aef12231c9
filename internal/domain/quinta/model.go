// Package quinta provides the storage location catalog. A quinta is a named
// estate holding its own wine stock, alongside the central "Stock Geral"
// warehouse and two pseudo-locations used only as transfer endpoints.
package quinta

import (
	"context"
	"strings"
	"time"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
)

// Reserved location names. These are not catalog rows: "Stock Geral" denotes
// the central warehouse (stored as an absent location on ledger entries),
// "Ajuste de Stock" and "Consumo" exist only as transfer endpoints.
const (
	StockGeral    = "Stock Geral"
	AjusteDeStock = "Ajuste de Stock"
	Consumo       = "Consumo"
)

// Quinta represents a wine storage estate.
type Quinta struct {
	ID        id.ID     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an active Quinta with a fresh ID.
func New(name string) *Quinta {
	now := time.Now()
	return &Quinta{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		IsActive:  true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks invariants before persisting.
func (q *Quinta) Validate(ctx context.Context) error {
	if strings.TrimSpace(q.Name) == "" {
		return apperror.NewValidation("quinta name is required").
			WithDetail("field", "name")
	}
	if IsReserved(q.Name) {
		return apperror.NewValidation("quinta name is reserved").
			WithDetail("field", "name").
			WithDetail("value", q.Name)
	}
	return nil
}

// IsReserved reports whether name collides with a reserved location.
func IsReserved(name string) bool {
	switch name {
	case StockGeral, AjusteDeStock, Consumo:
		return true
	}
	return false
}
