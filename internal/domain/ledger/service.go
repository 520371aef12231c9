package ledger

import (
	"context"
	"fmt"
	"time"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/appctx"
	"quintastock/internal/core/id"
	"quintastock/internal/domain/audit"
	"quintastock/pkg/logger"
)

// Service provides business operations for the stock ledger.
type Service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates a new ledger service.
func NewService(repo Repository, auditRec audit.Recorder) *Service {
	if auditRec == nil {
		auditRec = audit.Noop{}
	}
	return &Service{repo: repo, audit: auditRec}
}

// AddWine creates a new stock entry. Fails if the natural key already exists.
func (s *Service) AddWine(ctx context.Context, e *StockEntry) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.FindByKey(ctx, e.Brand, e.WineName, e.Quinta)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check existing entry: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicate("stock entry", "wine", e.Brand+" "+e.WineName).
			WithDetail("location", e.Location())
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionCreate,
		EntityType: "stock_entry",
		EntityID:   e.ID.String(),
		UserID:     appctx.GetUserID(ctx),
		UserName:   appctx.GetUserName(ctx),
		OccurredAt: time.Now(),
		Payload:    e,
	})

	logger.Info(ctx, "stock entry created",
		"id", e.ID,
		"brand", e.Brand,
		"wine", e.WineName,
		"location", e.Location(),
		"quantity", e.Quantity,
	)
	return nil
}

// GetByID retrieves a stock entry.
func (s *Service) GetByID(ctx context.Context, entryID id.ID) (*StockEntry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// FindEntry retrieves an entry by natural key. location "" or "Stock Geral"
// targets the central warehouse.
func (s *Service) FindEntry(ctx context.Context, brand, wineName, location string) (*StockEntry, error) {
	return s.repo.FindByKey(ctx, brand, wineName, NormalizeLocation(location))
}

// List retrieves stock entries with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*StockEntry, error) {
	return s.repo.List(ctx, filter)
}

// AdjustQuantity applies a signed delta to an entry. The result clamps at
// zero; the clamped quantity is returned.
func (s *Service) AdjustQuantity(ctx context.Context, entryID id.ID, delta int) (int, error) {
	if delta == 0 {
		return 0, apperror.NewValidation("delta must be non-zero").
			WithDetail("field", "delta")
	}

	quantity, err := s.repo.AdjustQuantity(ctx, entryID, delta)
	if err != nil {
		return 0, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionAdjust,
		EntityType: "stock_entry",
		EntityID:   entryID.String(),
		UserID:     appctx.GetUserID(ctx),
		UserName:   appctx.GetUserName(ctx),
		OccurredAt: time.Now(),
		Payload:    map[string]any{"delta": delta, "quantity": quantity},
	})

	logger.Info(ctx, "stock adjusted", "id", entryID, "delta", delta, "quantity", quantity)
	return quantity, nil
}

// SetLowStockAlert toggles the alert flag on an entry.
func (s *Service) SetLowStockAlert(ctx context.Context, entryID id.ID, enabled bool) (*StockEntry, error) {
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	e.LowStockAlert = enabled
	e.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return e, nil
}

// DeleteEntry removes an entry. The guard: quantity must be zero and no other
// entry of the same wine may still hold stock anywhere.
func (s *Service) DeleteEntry(ctx context.Context, entryID id.ID) error {
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	if e.Quantity > 0 {
		return apperror.NewPrecondition("entry still holds stock").
			WithDetail("quantity", e.Quantity)
	}

	siblings, err := s.repo.ListByWine(ctx, e.Brand, e.WineName)
	if err != nil {
		return fmt.Errorf("list wine entries: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != e.ID && sibling.Quantity > 0 {
			return apperror.NewPrecondition("wine still has stock at another location").
				WithDetail("location", sibling.Location()).
				WithDetail("quantity", sibling.Quantity)
		}
	}

	if err := s.repo.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionDelete,
		EntityType: "stock_entry",
		EntityID:   entryID.String(),
		UserID:     appctx.GetUserID(ctx),
		UserName:   appctx.GetUserName(ctx),
		OccurredAt: time.Now(),
		Payload:    e,
	})

	logger.Info(ctx, "stock entry deleted", "id", entryID, "brand", e.Brand, "wine", e.WineName)
	return nil
}

// Available returns the quantity of a wine at a location, zero when the
// entry does not exist.
func (s *Service) Available(ctx context.Context, brand, wineName, location string) (int, error) {
	e, err := s.repo.FindByKey(ctx, brand, wineName, NormalizeLocation(location))
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return e.Quantity, nil
}

// ApplyOutbound decrements a wine at the source location during
// reconciliation. A missing source entry is tolerated as a no-op; an existing
// entry clamps at zero rather than going negative.
func (s *Service) ApplyOutbound(ctx context.Context, brand, wineName, location string, quantity int) error {
	e, err := s.repo.FindByKey(ctx, brand, wineName, NormalizeLocation(location))
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "outbound source entry missing, skipping decrement",
				"brand", brand, "wine", wineName, "location", location)
			return nil
		}
		return err
	}

	if _, err := s.repo.AdjustQuantity(ctx, e.ID, -quantity); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

// ApplyInbound increments a wine at the destination location during
// reconciliation, creating the entry when absent. The wine type of a created
// entry is copied from any existing entry of the same wine, defaulting when
// the wine is unknown everywhere.
func (s *Service) ApplyInbound(ctx context.Context, brand, wineName, location string, quantity int) error {
	e, err := s.repo.FindByKey(ctx, brand, wineName, NormalizeLocation(location))
	if err == nil {
		if _, err := s.repo.AdjustQuantity(ctx, e.ID, quantity); err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		return nil
	}
	if !apperror.IsNotFound(err) {
		return err
	}

	wineType := DefaultWineType
	siblings, err := s.repo.ListByWine(ctx, brand, wineName)
	if err != nil {
		return fmt.Errorf("list wine entries: %w", err)
	}
	if len(siblings) > 0 {
		wineType = siblings[0].WineType
	}

	created := NewStockEntry(brand, wineName, wineType, location, quantity)
	if err := s.repo.Create(ctx, created); err != nil {
		return fmt.Errorf("create destination entry: %w", err)
	}

	logger.Info(ctx, "destination entry created by reconciliation",
		"id", created.ID,
		"brand", brand,
		"wine", wineName,
		"location", created.Location(),
		"quantity", quantity,
	)
	return nil
}

// LowStock returns entries flagged for alerts at or below the threshold.
func (s *Service) LowStock(ctx context.Context) ([]*StockEntry, error) {
	return s.repo.List(ctx, ListFilter{LowStockOnly: true})
}

// LocationHasStock implements quinta.StockChecker.
func (s *Service) LocationHasStock(ctx context.Context, location string) (bool, error) {
	return s.repo.LocationHasStock(ctx, NormalizeLocation(location))
}
