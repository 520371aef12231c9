// Package reports provides report generation services.
package reports

import (
	"time"
)

// --- Movement Report ---

// MovementReportFilter defines the movement report period and scope.
type MovementReportFilter struct {
	// Period (inclusive); both bounds optional
	FromDate *time.Time
	ToDate   *time.Time

	// Location keeps transfers touching it as source or destination;
	// empty means all locations
	Location string
}

// MovementReportItem is one approved transfer in the report.
type MovementReportItem struct {
	TransferID   string    `json:"transferId"`
	Date         time.Time `json:"date"`
	FromQuinta   string    `json:"fromQuinta"`
	ToQuinta     string    `json:"toQuinta"`
	MovementType string    `json:"movementType"`
	Requester    string    `json:"requester"`
	ToWhom       string    `json:"toWhom,omitempty"`
	Quantity     int       `json:"quantity"`
}

// MovementReport summarizes approved transfers over a period.
type MovementReport struct {
	FromDate *time.Time           `json:"fromDate,omitempty"`
	ToDate   *time.Time           `json:"toDate,omitempty"`
	Location string               `json:"location,omitempty"`
	Items    []MovementReportItem `json:"items"`

	// Summary
	TotalEntradas int `json:"totalEntradas"`
	TotalSaidas   int `json:"totalSaidas"`
	TotalBottles  int `json:"totalBottles"`
}

// --- Stock by Location Report ---

// StockByLocationItem aggregates bottles per location.
type StockByLocationItem struct {
	Location     string `json:"location"`
	Wines        int    `json:"wines"`
	TotalBottles int    `json:"totalBottles"`
}

// StockByLocationReport is the per-location stock breakdown.
type StockByLocationReport struct {
	AsOf         time.Time             `json:"asOf"`
	Items        []StockByLocationItem `json:"items"`
	TotalBottles int                   `json:"totalBottles"`
}

// --- Most Moved Wines Report ---

// MostMovedFilter bounds the most-moved ranking.
type MostMovedFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
}

// MostMovedItem is one wine in the ranking.
type MostMovedItem struct {
	Brand        string `json:"brand"`
	WineName     string `json:"wineName"`
	Transfers    int    `json:"transfers"`
	TotalBottles int    `json:"totalBottles"`
}

// MostMovedReport ranks wines by bottles moved in approved transfers.
type MostMovedReport struct {
	FromDate *time.Time      `json:"fromDate,omitempty"`
	ToDate   *time.Time      `json:"toDate,omitempty"`
	Items    []MostMovedItem `json:"items"`
}
