package quinta

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
	"quintastock/pkg/logger"
)

// StockChecker answers whether a location still holds stock. Implemented by
// the ledger service; used to guard quinta deletion.
type StockChecker interface {
	LocationHasStock(ctx context.Context, location string) (bool, error)
}

// Service provides business logic for the quinta catalog.
type Service struct {
	repo  Repository
	stock StockChecker
}

// NewService creates a new quinta service.
func NewService(repo Repository, stock StockChecker) *Service {
	return &Service{repo: repo, stock: stock}
}

// Create registers a new quinta.
func (s *Service) Create(ctx context.Context, name string) (*Quinta, error) {
	q := New(name)
	if err := q.Validate(ctx); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(ctx, q.Name); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("quinta", "name", q.Name)
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("check existing quinta: %w", err)
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create quinta: %w", err)
	}

	logger.Info(ctx, "quinta created", "id", q.ID, "name", q.Name)
	return q, nil
}

// GetByID retrieves a quinta.
func (s *Service) GetByID(ctx context.Context, quintaID id.ID) (*Quinta, error) {
	return s.repo.GetByID(ctx, quintaID)
}

// List returns quintas ordered by name.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*Quinta, error) {
	return s.repo.List(ctx, includeInactive)
}

// Rename changes a quinta's display name.
func (s *Service) Rename(ctx context.Context, quintaID id.ID, name string) (*Quinta, error) {
	q, err := s.repo.GetByID(ctx, quintaID)
	if err != nil {
		return nil, err
	}

	q.Name = strings.TrimSpace(name)
	q.UpdatedAt = time.Now()
	if err := q.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update quinta: %w", err)
	}
	return q, nil
}

// Delete removes a quinta. Fails while the quinta still holds stock.
func (s *Service) Delete(ctx context.Context, quintaID id.ID) error {
	q, err := s.repo.GetByID(ctx, quintaID)
	if err != nil {
		return err
	}

	hasStock, err := s.stock.LocationHasStock(ctx, q.Name)
	if err != nil {
		return fmt.Errorf("check quinta stock: %w", err)
	}
	if hasStock {
		return apperror.NewPrecondition("quinta still holds stock").
			WithDetail("quinta", q.Name)
	}

	if err := s.repo.Delete(ctx, quintaID); err != nil {
		return fmt.Errorf("delete quinta: %w", err)
	}

	logger.Info(ctx, "quinta deleted", "id", quintaID, "name", q.Name)
	return nil
}

// Exists reports whether name is a registered quinta.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
