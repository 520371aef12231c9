// Package ledger provides the stock ledger: one entry per wine per location,
// holding the authoritative bottle count.
package ledger

import (
	"context"
	"strings"
	"time"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
	"quintastock/internal/domain/quinta"
)

// WineType classifies a wine.
type WineType string

const (
	TypeTinto     WineType = "Tinto"
	TypeBranco    WineType = "Branco"
	TypeRose      WineType = "Rosé"
	TypePorto     WineType = "Porto"
	TypeEspumante WineType = "Espumante"
)

// DefaultWineType is assigned when an entry is created by reconciliation and
// no sibling entry reveals the wine's type.
const DefaultWineType = TypeTinto

// LowStockThreshold is the bottle count at or below which a flagged entry is
// reported as low on stock.
const LowStockThreshold = 6

// StockEntry is one wine at one location. The natural key is
// (brand, wine name, location); Quinta nil means the central warehouse.
type StockEntry struct {
	ID            id.ID     `db:"id" json:"id"`
	Brand         string    `db:"brand" json:"brand"`
	WineName      string    `db:"wine_name" json:"wineName"`
	WineType      WineType  `db:"wine_type" json:"wineType"`
	Quinta        *string   `db:"quinta" json:"quinta,omitempty"`
	Quantity      int       `db:"quantity" json:"quantity"`
	LowStockAlert bool      `db:"low_stock_alert" json:"lowStockAlert"`
	Version       int       `db:"version" json:"version"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStockEntry creates an entry with a fresh ID. location goes through
// NormalizeLocation.
func NewStockEntry(brand, wineName string, wineType WineType, location string, quantity int) *StockEntry {
	now := time.Now()
	return &StockEntry{
		ID:        id.New(),
		Brand:     strings.TrimSpace(brand),
		WineName:  strings.TrimSpace(wineName),
		WineType:  wineType,
		Quinta:    NormalizeLocation(location),
		Quantity:  quantity,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Location returns the display location, "Stock Geral" for the central
// warehouse.
func (e *StockEntry) Location() string {
	if e.Quinta == nil {
		return quinta.StockGeral
	}
	return *e.Quinta
}

// IsLowStock reports whether the entry should appear in low-stock alerts.
func (e *StockEntry) IsLowStock() bool {
	return e.LowStockAlert && e.Quantity <= LowStockThreshold
}

// Validate implements invariant checks before persisting.
func (e *StockEntry) Validate(ctx context.Context) error {
	if strings.TrimSpace(e.Brand) == "" {
		return apperror.NewValidation("brand is required").
			WithDetail("field", "brand")
	}
	if strings.TrimSpace(e.WineName) == "" {
		return apperror.NewValidation("wine name is required").
			WithDetail("field", "wineName")
	}
	if !isValidWineType(e.WineType) {
		return apperror.NewValidation("invalid wine type").
			WithDetail("field", "wineType").
			WithDetail("value", string(e.WineType))
	}
	if e.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity").
			WithDetail("value", e.Quantity)
	}
	if e.Quinta != nil && quinta.IsReserved(*e.Quinta) {
		return apperror.NewValidation("invalid stock location").
			WithDetail("field", "quinta").
			WithDetail("value", *e.Quinta)
	}
	return nil
}

// NormalizeLocation maps the central-warehouse spellings onto the canonical
// absent form. "Stock Geral" and the empty string both mean nil.
func NormalizeLocation(location string) *string {
	location = strings.TrimSpace(location)
	if location == "" || location == quinta.StockGeral {
		return nil
	}
	return &location
}

func isValidWineType(t WineType) bool {
	switch t {
	case TypeTinto, TypeBranco, TypeRose, TypePorto, TypeEspumante:
		return true
	}
	return false
}
