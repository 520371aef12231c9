package transfer

import (
	"context"
	"fmt"
	"time"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/appctx"
	"quintastock/internal/core/id"
	"quintastock/internal/core/security"
	"quintastock/internal/core/tx"
	"quintastock/internal/domain/audit"
	"quintastock/internal/domain/quinta"
	"quintastock/pkg/logger"
)

// StockLedger is the slice of the ledger the engine needs: availability reads
// for the builder and the two reconciliation writes.
type StockLedger interface {
	AvailabilityReader
	ApplyOutbound(ctx context.Context, brand, wineName, location string, quantity int) error
	ApplyInbound(ctx context.Context, brand, wineName, location string, quantity int) error
}

// QuintaDirectory answers whether a name is a registered quinta.
type QuintaDirectory interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// Service is the approval and reconciliation engine for transfers.
type Service struct {
	repo       Repository
	ledger     StockLedger
	quintas    QuintaDirectory
	txManager  tx.Manager
	reviewRule *security.ReviewRule
	audit      audit.Recorder
}

// NewService creates a new transfer service. reviewRule may be nil.
func NewService(
	repo Repository,
	ledger StockLedger,
	quintas QuintaDirectory,
	txManager tx.Manager,
	reviewRule *security.ReviewRule,
	auditRec audit.Recorder,
) *Service {
	if auditRec == nil {
		auditRec = audit.Noop{}
	}
	return &Service{
		repo:       repo,
		ledger:     ledger,
		quintas:    quintas,
		txManager:  txManager,
		reviewRule: reviewRule,
		audit:      auditRec,
	}
}

// LineInput is one requested wine.
type LineInput struct {
	Brand    string `json:"brand"`
	WineName string `json:"wineName"`
	Quantity int    `json:"quantity"`
}

// SubmitRequest carries a complete transfer request.
type SubmitRequest struct {
	Date         time.Time    `json:"date"`
	FromQuinta   string       `json:"fromQuinta"`
	ToQuinta     string       `json:"toQuinta"`
	MovementType MovementType `json:"movementType"`
	ToWhom       string       `json:"toWhom"`
	Lines        []LineInput  `json:"lines"`
}

// Submit validates a transfer request and stores one transfer per staged
// line, all sharing the request's envelope fields, in the order the lines
// were added. Each transfer is decided independently from here on. Transfers
// by users who can approve their own requests are approved and reconciled
// immediately; everything else waits as Pendente. The whole batch commits in
// one transaction, so a failing line stores nothing.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) ([]*Transfer, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	if err := s.checkQuintaUserLocks(user, req); err != nil {
		return nil, err
	}
	if err := s.validateEndpoints(ctx, req.FromQuinta, req.ToQuinta); err != nil {
		return nil, err
	}

	builder := NewBuilder(req.FromQuinta, req.ToQuinta, req.MovementType, s.ledger)
	for _, line := range req.Lines {
		if err := builder.AddLine(ctx, line.Brand, line.WineName, line.Quantity); err != nil {
			return nil, err
		}
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	now := time.Now()
	staged := builder.Lines()
	created := make([]*Transfer, 0, len(staged))
	for _, line := range staged {
		line.LineNo = 1
		t := &Transfer{
			ID:           id.New(),
			Date:         date,
			FromQuinta:   req.FromQuinta,
			ToQuinta:     req.ToQuinta,
			MovementType: req.MovementType,
			Requester:    user.Name,
			ToWhom:       req.ToWhom,
			Status:       s.initialStatus(user, req, line.Quantity),
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
			Lines:        []Line{line},
		}
		if t.Status == StatusAprovado {
			t.ApprovedBy = &user.Name
			t.DecidedAt = &now
		}
		if err := t.Validate(ctx); err != nil {
			return nil, err
		}
		created = append(created, t)
	}
	if len(created) == 0 {
		return nil, apperror.NewValidation("at least one wine is required").
			WithDetail("field", "lines")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, t := range created {
			if err := s.repo.Create(ctx, t); err != nil {
				return fmt.Errorf("create transfer: %w", err)
			}
			if err := s.repo.SaveLines(ctx, t.ID, t.Lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}
			if t.Status == StatusAprovado {
				if err := s.reconcile(ctx, t); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range created {
		s.audit.Record(ctx, audit.Event{
			Action:     audit.ActionSubmit,
			EntityType: "transfer",
			EntityID:   t.ID.String(),
			UserID:     user.UserID,
			UserName:   user.Name,
			OccurredAt: now,
			Payload:    t,
		})
	}

	logger.Info(ctx, "transfers submitted",
		"from", req.FromQuinta,
		"to", req.ToQuinta,
		"type", req.MovementType,
		"count", len(created),
	)
	return created, nil
}

// Decide approves or rejects a pending transfer. Approval reconciles the
// ledger in the same transaction; a transfer that already left Pendente is
// rejected so reconciliation runs at most once per transfer.
func (s *Service) Decide(ctx context.Context, transferID id.ID, approve bool) (*Transfer, error) {
	user := appctx.GetUser(ctx)
	if !security.CanApprove(user) {
		return nil, apperror.NewForbidden("approval permission required")
	}

	var decided *Transfer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetByIDForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t.IsDecided() {
			return apperror.NewTransferDecided(t.ID, string(t.Status))
		}

		lines, err := s.repo.GetLines(ctx, transferID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		t.Lines = lines

		now := time.Now()
		if approve {
			t.Status = StatusAprovado
			t.ApprovedBy = &user.Name
		} else {
			t.Status = StatusReprovado
		}
		t.DecidedAt = &now
		t.UpdatedAt = now

		if err := s.repo.UpdateStatus(ctx, t); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if approve {
			if err := s.reconcile(ctx, t); err != nil {
				return err
			}
		}
		decided = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := audit.ActionApprove
	if !approve {
		action = audit.ActionReject
	}
	s.audit.Record(ctx, audit.Event{
		Action:     action,
		EntityType: "transfer",
		EntityID:   decided.ID.String(),
		UserID:     user.UserID,
		UserName:   user.Name,
		OccurredAt: time.Now(),
		Payload:    decided,
	})

	logger.Info(ctx, "transfer decided",
		"id", decided.ID,
		"status", decided.Status,
		"approved_by", user.Name,
	)
	return decided, nil
}

// GetByID retrieves a transfer with its lines.
func (s *Service) GetByID(ctx context.Context, transferID id.ID) (*Transfer, error) {
	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	t.Lines = lines
	return t, nil
}

// History retrieves transfers matching the filter, newest first.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]*Transfer, error) {
	return s.repo.List(ctx, filter)
}

// Pending returns transfers awaiting a decision, newest first.
func (s *Service) Pending(ctx context.Context) ([]*Transfer, error) {
	return s.repo.List(ctx, HistoryFilter{Status: StatusPendente})
}

// CountPending returns the number of transfers awaiting a decision.
func (s *Service) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}

// initialStatus applies the approval policy per transfer: quinta users always
// wait, supervisors and operators with the approval permission are approved
// on submission unless the review rule objects to that transfer's quantity.
func (s *Service) initialStatus(user *appctx.UserContext, req SubmitRequest, quantity int) Status {
	if user.Role == security.RoleQuinta {
		return StatusPendente
	}
	if !security.CanAutoApprove(user) {
		return StatusPendente
	}

	if s.reviewRule.RequiresReview(security.ReviewInput{
		RequesterRole: user.Role,
		FromQuinta:    req.FromQuinta,
		ToQuinta:      req.ToQuinta,
		MovementType:  string(req.MovementType),
		TotalQuantity: quantity,
	}) {
		return StatusPendente
	}
	return StatusAprovado
}

// checkQuintaUserLocks pins quinta users to their own estate: outgoing
// transfers must leave it, incoming ones must come from the adjustment
// source and arrive at it.
func (s *Service) checkQuintaUserLocks(user *appctx.UserContext, req SubmitRequest) error {
	if user.Role != security.RoleQuinta {
		return nil
	}
	if user.Quinta == "" {
		return apperror.NewForbidden("quinta user has no assigned quinta")
	}

	switch req.MovementType {
	case MovementSaida:
		if req.FromQuinta != user.Quinta {
			return apperror.NewForbidden("quinta users may only transfer out of their own quinta").
				WithDetail("quinta", user.Quinta)
		}
	case MovementEntrada:
		if req.FromQuinta != quinta.AjusteDeStock || req.ToQuinta != user.Quinta {
			return apperror.NewForbidden("quinta users may only register adjustments into their own quinta").
				WithDetail("quinta", user.Quinta)
		}
	}
	return nil
}

// validateEndpoints checks that both endpoints name the central warehouse, a
// pseudo-location or a registered quinta.
func (s *Service) validateEndpoints(ctx context.Context, from, to string) error {
	for _, endpoint := range []struct {
		field string
		name  string
	}{
		{"fromQuinta", from},
		{"toQuinta", to},
	} {
		if endpoint.name == quinta.StockGeral || quinta.IsReserved(endpoint.name) {
			continue
		}
		exists, err := s.quintas.Exists(ctx, endpoint.name)
		if err != nil {
			return fmt.Errorf("check quinta %q: %w", endpoint.name, err)
		}
		if !exists {
			return apperror.NewValidation("unknown location").
				WithDetail("field", endpoint.field).
				WithDetail("value", endpoint.name)
		}
	}
	return nil
}

// reconcile applies an approved transfer to the ledger. Source and
// destination touch disjoint entries, so ordering between them is free;
// pseudo-endpoints skip their side entirely.
func (s *Service) reconcile(ctx context.Context, t *Transfer) error {
	for _, line := range t.Lines {
		if !t.SkipsSourceDecrement() {
			if err := s.ledger.ApplyOutbound(ctx, line.Brand, line.WineName, t.FromQuinta, line.Quantity); err != nil {
				return fmt.Errorf("line %d outbound: %w", line.LineNo, err)
			}
		}
		if !t.SkipsDestinationIncrement() {
			if err := s.ledger.ApplyInbound(ctx, line.Brand, line.WineName, t.ToQuinta, line.Quantity); err != nil {
				return fmt.Errorf("line %d inbound: %w", line.LineNo, err)
			}
		}
	}
	return nil
}
