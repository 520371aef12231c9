package transfer

import (
	"context"
	"strings"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
)

// AvailabilityReader answers how many bottles of a wine a location currently
// holds. Implemented by the ledger service; a missing entry reads as zero.
type AvailabilityReader interface {
	Available(ctx context.Context, brand, wineName, location string) (int, error)
}

// Builder stages line items for one transfer before submission. For outgoing
// transfers every added line is validated against source availability minus
// what the builder has already staged for the same wine, so a batch can never
// oversubscribe a single entry.
type Builder struct {
	fromQuinta   string
	toQuinta     string
	movementType MovementType
	stock        AvailabilityReader
	lines        []Line
}

// NewBuilder creates a builder for one source/destination/direction triple.
func NewBuilder(fromQuinta, toQuinta string, movementType MovementType, stock AvailabilityReader) *Builder {
	return &Builder{
		fromQuinta:   fromQuinta,
		toQuinta:     toQuinta,
		movementType: movementType,
		stock:        stock,
	}
}

// AddLine stages one wine. Outgoing lines are checked against available
// stock net of already-staged quantities; incoming lines have no upper bound.
func (b *Builder) AddLine(ctx context.Context, brand, wineName string, quantity int) error {
	brand = strings.TrimSpace(brand)
	wineName = strings.TrimSpace(wineName)

	if brand == "" || wineName == "" {
		return apperror.NewValidation("wine identification is required").
			WithDetail("field", "lines")
	}
	if quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", quantity)
	}

	if b.movementType == MovementSaida {
		available, err := b.stock.Available(ctx, brand, wineName, b.fromQuinta)
		if err != nil {
			return err
		}
		remaining := available - b.stagedQuantity(brand, wineName)
		if quantity > remaining {
			return apperror.NewInsufficientStock(brand, wineName, quantity, remaining).
				WithDetail("location", b.fromQuinta)
		}
	}

	b.lines = append(b.lines, Line{
		LineID:   id.New(),
		LineNo:   len(b.lines) + 1,
		Brand:    brand,
		WineName: wineName,
		Quantity: quantity,
	})
	return nil
}

// RemoveLine unstages a line by its position (1-based).
func (b *Builder) RemoveLine(lineNo int) error {
	if lineNo < 1 || lineNo > len(b.lines) {
		return apperror.NewValidation("line does not exist").
			WithDetail("lineNo", lineNo)
	}
	b.lines = append(b.lines[:lineNo-1], b.lines[lineNo:]...)
	for i := range b.lines {
		b.lines[i].LineNo = i + 1
	}
	return nil
}

// Lines returns the staged lines.
func (b *Builder) Lines() []Line {
	return b.lines
}

// stagedQuantity sums already-staged bottles of one wine.
func (b *Builder) stagedQuantity(brand, wineName string) int {
	total := 0
	for _, line := range b.lines {
		if line.Brand == brand && line.WineName == wineName {
			total += line.Quantity
		}
	}
	return total
}
