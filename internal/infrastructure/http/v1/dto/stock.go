package dto

import (
	"time"

	"quintastock/internal/domain/ledger"
)

// AddWineRequest registers a wine at a location.
type AddWineRequest struct {
	Brand    string `json:"brand" binding:"required"`
	WineName string `json:"wineName" binding:"required"`
	WineType string `json:"wineType"`
	Location string `json:"location"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// ToEntity converts the request to a new ledger entry.
func (r AddWineRequest) ToEntity() *ledger.StockEntry {
	wineType := ledger.WineType(r.WineType)
	if r.WineType == "" {
		wineType = ledger.DefaultWineType
	}
	return ledger.NewStockEntry(r.Brand, r.WineName, wineType, r.Location, r.Quantity)
}

// AdjustQuantityRequest applies a signed bottle delta.
type AdjustQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// LowStockAlertRequest toggles the low stock flag.
type LowStockAlertRequest struct {
	Enabled bool `json:"enabled"`
}

// StockListQuery filters the stock listing.
type StockListQuery struct {
	Location     string `form:"location"`
	Search       string `form:"search"`
	WineType     string `form:"wineType"`
	LowStockOnly bool   `form:"lowStockOnly"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

// ToFilter converts query parameters to a repository filter.
func (q StockListQuery) ToFilter() ledger.ListFilter {
	return ledger.ListFilter{
		Location:     q.Location,
		Search:       q.Search,
		WineType:     ledger.WineType(q.WineType),
		LowStockOnly: q.LowStockOnly,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

// StockEntryResponse is one ledger entry.
type StockEntryResponse struct {
	ID            string    `json:"id"`
	Brand         string    `json:"brand"`
	WineName      string    `json:"wineName"`
	WineType      string    `json:"wineType"`
	Location      string    `json:"location"`
	Quantity      int       `json:"quantity"`
	LowStockAlert bool      `json:"lowStockAlert"`
	IsLowStock    bool      `json:"isLowStock"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FromStockEntry converts a ledger entry to response.
func FromStockEntry(e *ledger.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		ID:            e.ID.String(),
		Brand:         e.Brand,
		WineName:      e.WineName,
		WineType:      string(e.WineType),
		Location:      e.Location(),
		Quantity:      e.Quantity,
		LowStockAlert: e.LowStockAlert,
		IsLowStock:    e.IsLowStock(),
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// FromStockEntries converts a slice of entries.
func FromStockEntries(entries []*ledger.StockEntry) []StockEntryResponse {
	out := make([]StockEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = FromStockEntry(e)
	}
	return out
}

// QuantityResponse carries a quantity after an adjustment.
type QuantityResponse struct {
	Quantity int `json:"quantity"`
}
