// Package transfer provides transfer requests: staged line items between
// locations, role-based approval and the ledger reconciliation that runs when
// a transfer is approved.
package transfer

import (
	"context"
	"strings"
	"time"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
	"quintastock/internal/domain/quinta"
)

// MovementType distinguishes outgoing from incoming transfers.
type MovementType string

const (
	MovementSaida   MovementType = "Saída"
	MovementEntrada MovementType = "Entrada"
)

// Status is the transfer lifecycle state. A transfer is created Pendente or
// Aprovado and is decided at most once.
type Status string

const (
	StatusPendente  Status = "Pendente"
	StatusAprovado  Status = "Aprovado"
	StatusReprovado Status = "Reprovado"
)

// Transfer is one transfer envelope. Submission creates one envelope per
// staged line, so each transfer is decided and reconciled on its own.
type Transfer struct {
	ID           id.ID        `db:"id" json:"id"`
	Date         time.Time    `db:"transfer_date" json:"date"`
	FromQuinta   string       `db:"from_quinta" json:"fromQuinta"`
	ToQuinta     string       `db:"to_quinta" json:"toQuinta"`
	MovementType MovementType `db:"movement_type" json:"movementType"`
	Requester    string       `db:"requester" json:"requester"`
	ToWhom       string       `db:"to_whom" json:"toWhom"`
	Status       Status       `db:"status" json:"status"`
	ApprovedBy   *string      `db:"approved_by" json:"approvedBy,omitempty"`
	DecidedAt    *time.Time   `db:"decided_at" json:"decidedAt,omitempty"`
	Version      int          `db:"version" json:"version"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`

	// Table part: transferred wines
	Lines []Line `db:"-" json:"lines"`
}

// Line is one wine in a transfer.
type Line struct {
	LineID   id.ID  `db:"line_id" json:"lineId"`
	LineNo   int    `db:"line_no" json:"lineNo"`
	Brand    string `db:"brand" json:"brand"`
	WineName string `db:"wine_name" json:"wineName"`
	Quantity int    `db:"quantity" json:"quantity"`
}

// IsDecided reports whether the transfer has left Pendente.
func (t *Transfer) IsDecided() bool {
	return t.Status != StatusPendente
}

// TotalQuantity sums bottle counts across lines.
func (t *Transfer) TotalQuantity() int {
	total := 0
	for _, line := range t.Lines {
		total += line.Quantity
	}
	return total
}

// SkipsSourceDecrement reports whether reconciliation leaves source stock
// untouched. Transfers out of "Ajuste de Stock" conjure bottles, they do not
// move them.
func (t *Transfer) SkipsSourceDecrement() bool {
	return t.FromQuinta == quinta.AjusteDeStock
}

// SkipsDestinationIncrement reports whether reconciliation records no
// destination stock. Transfers into "Consumo" destroy bottles.
func (t *Transfer) SkipsDestinationIncrement() bool {
	return t.ToQuinta == quinta.Consumo
}

// Validate checks structural invariants of a submitted transfer.
func (t *Transfer) Validate(ctx context.Context) error {
	if t.MovementType != MovementSaida && t.MovementType != MovementEntrada {
		return apperror.NewValidation("invalid movement type").
			WithDetail("field", "movementType").
			WithDetail("value", string(t.MovementType))
	}
	if strings.TrimSpace(t.FromQuinta) == "" {
		return apperror.NewValidation("source location is required").
			WithDetail("field", "fromQuinta")
	}
	if strings.TrimSpace(t.ToQuinta) == "" {
		return apperror.NewValidation("destination location is required").
			WithDetail("field", "toQuinta")
	}
	if t.FromQuinta == t.ToQuinta {
		return apperror.NewValidation("source and destination must differ").
			WithDetail("fromQuinta", t.FromQuinta).
			WithDetail("toQuinta", t.ToQuinta)
	}
	if t.FromQuinta == quinta.Consumo {
		return apperror.NewValidation("Consumo cannot be a source").
			WithDetail("field", "fromQuinta")
	}
	if t.ToQuinta == quinta.AjusteDeStock {
		return apperror.NewValidation("Ajuste de Stock cannot be a destination").
			WithDetail("field", "toQuinta")
	}
	if strings.TrimSpace(t.Requester) == "" {
		return apperror.NewValidation("requester is required").
			WithDetail("field", "requester")
	}
	if strings.TrimSpace(t.ToWhom) == "" {
		return apperror.NewValidation("purpose or recipient is required").
			WithDetail("field", "toWhom")
	}
	if len(t.Lines) == 0 {
		return apperror.NewValidation("at least one wine is required").
			WithDetail("field", "lines")
	}
	for i, line := range t.Lines {
		if strings.TrimSpace(line.Brand) == "" || strings.TrimSpace(line.WineName) == "" {
			return apperror.NewValidation("wine identification is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
