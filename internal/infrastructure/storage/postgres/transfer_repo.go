package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
	"quintastock/internal/domain/transfer"
)

const (
	transfersTable     = "transfers"
	transferLinesTable = "transfer_lines"
)

var transferColumns = []string{
	"id", "transfer_date", "from_quinta", "to_quinta", "movement_type",
	"requester", "to_whom", "status", "approved_by", "decided_at",
	"version", "created_at", "updated_at",
}

var transferLineColumns = []string{
	"line_id", "transfer_id", "line_no", "brand", "wine_name", "quantity",
}

// TransferRepo implements transfer.Repository.
type TransferRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	batch     *BatchInserter
}

// NewTransferRepo creates a new transfer repository.
func NewTransferRepo(txManager *TxManager) *TransferRepo {
	return &TransferRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		batch:     NewBatchInserter(txManager),
	}
}

var _ transfer.Repository = (*TransferRepo)(nil)

// Create inserts a transfer header.
func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	q := r.builder.Insert(transfersTable).
		Columns(transferColumns...).
		Values(
			t.ID, t.Date, t.FromQuinta, t.ToQuinta, t.MovementType,
			t.Requester, t.ToWhom, t.Status, t.ApprovedBy, t.DecidedAt,
			t.Version, t.CreatedAt, t.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// SaveLines replaces the line items of a transfer. Must run inside a
// transaction; lines go in via COPY.
func (r *TransferRepo) SaveLines(ctx context.Context, transferID id.ID, lines []transfer.Line) error {
	del := r.builder.Delete(transferLinesTable).Where(squirrel.Eq{"transfer_id": transferID})
	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}

	if len(lines) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{
			line.LineID, transferID, line.LineNo,
			line.Brand, line.WineName, line.Quantity,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, transferLinesTable, transferLineColumns, rows); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// GetByID retrieves a transfer header.
func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.getOne(ctx, transferID, false)
}

// GetByIDForUpdate retrieves a transfer header with a row lock.
func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.getOne(ctx, transferID, true)
}

func (r *TransferRepo) getOne(ctx context.Context, transferID id.ID, forUpdate bool) (*transfer.Transfer, error) {
	q := r.builder.Select(transferColumns...).
		From(transfersTable).
		Where(squirrel.Eq{"id": transferID}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t transfer.Transfer
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transfer", transferID)
		}
		return nil, apperror.NewDatabase(err)
	}
	return &t, nil
}

// GetLines retrieves line items ordered by line number.
func (r *TransferRepo) GetLines(ctx context.Context, transferID id.ID) ([]transfer.Line, error) {
	q := r.builder.Select("line_id", "line_no", "brand", "wine_name", "quantity").
		From(transferLinesTable).
		Where(squirrel.Eq{"transfer_id": transferID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []transfer.Line
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return lines, nil
}

// UpdateStatus records a decision with optimistic locking.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *transfer.Transfer) error {
	q := r.builder.Update(transfersTable).
		Set("status", t.Status).
		Set("approved_by", t.ApprovedBy).
		Set("decided_at", t.DecidedAt).
		Set("version", t.Version+1).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID, "version": t.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("transfer", t.ID)
	}
	t.Version++
	return nil
}

// List retrieves transfers matching the filter, newest first.
func (r *TransferRepo) List(ctx context.Context, filter transfer.HistoryFilter) ([]*transfer.Transfer, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transfers []*transfer.Transfer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &transfers, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return transfers, nil
}

// listQuery translates a history filter into SQL. All set conditions compose
// with AND.
func (r *TransferRepo) listQuery(filter transfer.HistoryFilter) squirrel.SelectBuilder {
	q := r.builder.Select(transferColumns...).
		From(transfersTable).
		OrderBy("transfer_date DESC", "created_at DESC")

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"transfer_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"transfer_date": dayAfter(*filter.ToDate)})
	}
	if filter.Location != "" {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"from_quinta": filter.Location},
			squirrel.Eq{"to_quinta": filter.Location},
		})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.MovementType != "" {
		q = q.Where(squirrel.Eq{"movement_type": filter.MovementType})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// CountPending returns the number of transfers awaiting a decision.
func (r *TransferRepo) CountPending(ctx context.Context) (int64, error) {
	q := r.builder.Select("COUNT(*)").
		From(transfersTable).
		Where(squirrel.Eq{"status": transfer.StatusPendente})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewDatabase(err)
	}
	return count, nil
}
