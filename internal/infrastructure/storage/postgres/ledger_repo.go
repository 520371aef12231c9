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
	"quintastock/internal/domain/ledger"
)

const stockEntriesTable = "stock_entries"

var stockEntryColumns = []string{
	"id", "brand", "wine_name", "wine_type", "quinta",
	"quantity", "low_stock_alert", "version", "created_at", "updated_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new stock ledger repository.
func NewLedgerRepo(txManager *TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Repository = (*LedgerRepo)(nil)

// Create inserts a new stock entry.
func (r *LedgerRepo) Create(ctx context.Context, e *ledger.StockEntry) error {
	q := r.builder.Insert(stockEntriesTable).
		Columns(stockEntryColumns...).
		Values(
			e.ID, e.Brand, e.WineName, e.WineType, e.Quinta,
			e.Quantity, e.LowStockAlert, e.Version, e.CreatedAt, e.UpdatedAt,
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

// GetByID retrieves an entry by ID.
func (r *LedgerRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.StockEntry, error) {
	return r.getOne(ctx, squirrel.Eq{"id": entryID}, false)
}

// GetByIDForUpdate retrieves an entry with a row lock.
func (r *LedgerRepo) GetByIDForUpdate(ctx context.Context, entryID id.ID) (*ledger.StockEntry, error) {
	return r.getOne(ctx, squirrel.Eq{"id": entryID}, true)
}

// FindByKey retrieves an entry by natural key; quinta nil matches the
// central warehouse row.
func (r *LedgerRepo) FindByKey(ctx context.Context, brand, wineName string, quinta *string) (*ledger.StockEntry, error) {
	return r.getOne(ctx, squirrel.Eq{
		"brand":     brand,
		"wine_name": wineName,
		"quinta":    quinta,
	}, false)
}

func (r *LedgerRepo) getOne(ctx context.Context, where squirrel.Eq, forUpdate bool) (*ledger.StockEntry, error) {
	q := r.builder.Select(stockEntryColumns...).
		From(stockEntriesTable).
		Where(where).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.StockEntry
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock entry", where)
		}
		return nil, apperror.NewDatabase(err)
	}
	return &e, nil
}

// ListByWine returns all entries of one wine across locations.
func (r *LedgerRepo) ListByWine(ctx context.Context, brand, wineName string) ([]*ledger.StockEntry, error) {
	q := r.builder.Select(stockEntryColumns...).
		From(stockEntriesTable).
		Where(squirrel.Eq{"brand": brand, "wine_name": wineName}).
		OrderBy("quinta NULLS FIRST")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*ledger.StockEntry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return entries, nil
}

// List retrieves entries with filtering.
func (r *LedgerRepo) List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.StockEntry, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*ledger.StockEntry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return entries, nil
}

// listQuery translates a list filter into SQL.
func (r *LedgerRepo) listQuery(filter ledger.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(stockEntryColumns...).
		From(stockEntriesTable).
		OrderBy("brand", "wine_name", "quinta NULLS FIRST")

	if filter.Location != "" {
		q = q.Where(squirrel.Eq{"quinta": ledger.NormalizeLocation(filter.Location)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"brand": pattern},
			squirrel.ILike{"wine_name": pattern},
		})
	}
	if filter.WineType != "" {
		q = q.Where(squirrel.Eq{"wine_type": filter.WineType})
	}
	if filter.LowStockOnly {
		q = q.Where(squirrel.Eq{"low_stock_alert": true}).
			Where(squirrel.LtOrEq{"quantity": ledger.LowStockThreshold})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// Update modifies an entry with optimistic locking.
func (r *LedgerRepo) Update(ctx context.Context, e *ledger.StockEntry) error {
	q := r.builder.Update(stockEntriesTable).
		Set("brand", e.Brand).
		Set("wine_name", e.WineName).
		Set("wine_type", e.WineType).
		Set("quinta", e.Quinta).
		Set("quantity", e.Quantity).
		Set("low_stock_alert", e.LowStockAlert).
		Set("version", e.Version+1).
		Set("updated_at", e.UpdatedAt).
		Where(squirrel.Eq{"id": e.ID, "version": e.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("stock entry", e.ID)
	}
	e.Version++
	return nil
}

// AdjustQuantity applies delta clamped at zero in the store and returns the
// resulting quantity.
func (r *LedgerRepo) AdjustQuantity(ctx context.Context, entryID id.ID, delta int) (int, error) {
	sql := `
		UPDATE stock_entries
		SET quantity = GREATEST(0, quantity + $2),
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		RETURNING quantity
	`

	var quantity int
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, entryID, delta).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("stock entry", entryID)
		}
		return 0, apperror.NewDatabase(err)
	}
	return quantity, nil
}

// Delete removes an entry.
func (r *LedgerRepo) Delete(ctx context.Context, entryID id.ID) error {
	q := r.builder.Delete(stockEntriesTable).Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock entry", entryID)
	}
	return nil
}

// LocationHasStock reports whether any entry at the location holds stock.
func (r *LedgerRepo) LocationHasStock(ctx context.Context, quinta *string) (bool, error) {
	q := r.builder.Select("1").
		From(stockEntriesTable).
		Where(squirrel.Eq{"quinta": quinta}).
		Where(squirrel.Gt{"quantity": 0}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, apperror.NewDatabase(err)
	}
	return true, nil
}
