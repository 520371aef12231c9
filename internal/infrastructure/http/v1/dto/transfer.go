package dto

import (
	"time"

	"quintastock/internal/domain/transfer"
)

// SubmitTransferRequest creates a transfer request.
type SubmitTransferRequest struct {
	Date         *time.Time         `json:"date,omitempty"`
	FromQuinta   string             `json:"fromQuinta" binding:"required"`
	ToQuinta     string             `json:"toQuinta" binding:"required"`
	MovementType string             `json:"movementType" binding:"required"`
	ToWhom       string             `json:"toWhom" binding:"required"`
	Lines        []TransferLineItem `json:"lines" binding:"required,min=1"`
}

// TransferLineItem is one wine in a transfer request.
type TransferLineItem struct {
	Brand    string `json:"brand" binding:"required"`
	WineName string `json:"wineName" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// ToSubmitRequest converts the request to the domain form.
func (r SubmitTransferRequest) ToSubmitRequest() transfer.SubmitRequest {
	req := transfer.SubmitRequest{
		FromQuinta:   r.FromQuinta,
		ToQuinta:     r.ToQuinta,
		MovementType: transfer.MovementType(r.MovementType),
		ToWhom:       r.ToWhom,
	}
	if r.Date != nil {
		req.Date = *r.Date
	}
	for _, line := range r.Lines {
		req.Lines = append(req.Lines, transfer.LineInput{
			Brand:    line.Brand,
			WineName: line.WineName,
			Quantity: line.Quantity,
		})
	}
	return req
}

// TransferLineResponse is one line of a stored transfer.
type TransferLineResponse struct {
	LineNo   int    `json:"lineNo"`
	Brand    string `json:"brand"`
	WineName string `json:"wineName"`
	Quantity int    `json:"quantity"`
}

// TransferResponse is a stored transfer with lines.
type TransferResponse struct {
	ID           string                 `json:"id"`
	Date         time.Time              `json:"date"`
	FromQuinta   string                 `json:"fromQuinta"`
	ToQuinta     string                 `json:"toQuinta"`
	MovementType string                 `json:"movementType"`
	Requester    string                 `json:"requester"`
	ToWhom       string                 `json:"toWhom,omitempty"`
	Status       string                 `json:"status"`
	ApprovedBy   *string                `json:"approvedBy,omitempty"`
	DecidedAt    *time.Time             `json:"decidedAt,omitempty"`
	TotalBottles int                    `json:"totalBottles"`
	CreatedAt    time.Time              `json:"createdAt"`
	Lines        []TransferLineResponse `json:"lines,omitempty"`
}

// FromTransfer converts a domain transfer to response.
func FromTransfer(t *transfer.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:           t.ID.String(),
		Date:         t.Date,
		FromQuinta:   t.FromQuinta,
		ToQuinta:     t.ToQuinta,
		MovementType: string(t.MovementType),
		Requester:    t.Requester,
		ToWhom:       t.ToWhom,
		Status:       string(t.Status),
		ApprovedBy:   t.ApprovedBy,
		DecidedAt:    t.DecidedAt,
		TotalBottles: t.TotalQuantity(),
		CreatedAt:    t.CreatedAt,
	}
	for _, line := range t.Lines {
		resp.Lines = append(resp.Lines, TransferLineResponse{
			LineNo:   line.LineNo,
			Brand:    line.Brand,
			WineName: line.WineName,
			Quantity: line.Quantity,
		})
	}
	return resp
}

// FromTransfers converts a slice of transfers.
func FromTransfers(transfers []*transfer.Transfer) []TransferResponse {
	out := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		out[i] = FromTransfer(t)
	}
	return out
}

// HistoryQuery filters the transfer history listing.
type HistoryQuery struct {
	FromDate     *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"toDate" time_format:"2006-01-02"`
	Location     string     `form:"location"`
	Status       string     `form:"status"`
	MovementType string     `form:"movementType"`
	Limit        int        `form:"limit"`
	Offset       int        `form:"offset"`
}

// ToFilter converts query parameters to a history filter.
func (q HistoryQuery) ToFilter() transfer.HistoryFilter {
	return transfer.HistoryFilter{
		FromDate:     q.FromDate,
		ToDate:       q.ToDate,
		Location:     q.Location,
		Status:       transfer.Status(q.Status),
		MovementType: transfer.MovementType(q.MovementType),
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}
