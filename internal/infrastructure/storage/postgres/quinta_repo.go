package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
	"quintastock/internal/domain/quinta"
)

const quintasTable = "quintas"

var quintaColumns = []string{
	"id", "name", "is_active", "version", "created_at", "updated_at",
}

// QuintaRepo implements quinta.Repository.
type QuintaRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewQuintaRepo creates a new quinta catalog repository.
func NewQuintaRepo(txManager *TxManager) *QuintaRepo {
	return &QuintaRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ quinta.Repository = (*QuintaRepo)(nil)

// Create inserts a new quinta.
func (r *QuintaRepo) Create(ctx context.Context, q *quinta.Quinta) error {
	ins := r.builder.Insert(quintasTable).
		Columns(quintaColumns...).
		Values(q.ID, q.Name, q.IsActive, q.Version, q.CreatedAt, q.UpdatedAt)

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// GetByID retrieves a quinta by ID.
func (r *QuintaRepo) GetByID(ctx context.Context, quintaID id.ID) (*quinta.Quinta, error) {
	return r.getOne(ctx, squirrel.Eq{"id": quintaID}, quintaID)
}

// GetByName retrieves a quinta by its unique name.
func (r *QuintaRepo) GetByName(ctx context.Context, name string) (*quinta.Quinta, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name}, name)
}

func (r *QuintaRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*quinta.Quinta, error) {
	sel := r.builder.Select(quintaColumns...).
		From(quintasTable).
		Where(where).
		Limit(1)

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var q quinta.Quinta
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &q, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quinta", key)
		}
		return nil, apperror.NewDatabase(err)
	}
	return &q, nil
}

// List returns all quintas ordered by name.
func (r *QuintaRepo) List(ctx context.Context, includeInactive bool) ([]*quinta.Quinta, error) {
	sel := r.builder.Select(quintaColumns...).
		From(quintasTable).
		OrderBy("name")
	if !includeInactive {
		sel = sel.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var quintas []*quinta.Quinta
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &quintas, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return quintas, nil
}

// Update modifies a quinta with optimistic locking.
func (r *QuintaRepo) Update(ctx context.Context, q *quinta.Quinta) error {
	upd := r.builder.Update(quintasTable).
		Set("name", q.Name).
		Set("is_active", q.IsActive).
		Set("version", q.Version+1).
		Set("updated_at", q.UpdatedAt).
		Where(squirrel.Eq{"id": q.ID, "version": q.Version})

	sql, args, err := upd.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("quinta", q.ID)
	}
	q.Version++
	return nil
}

// Delete removes a quinta from the catalog.
func (r *QuintaRepo) Delete(ctx context.Context, quintaID id.ID) error {
	del := r.builder.Delete(quintasTable).Where(squirrel.Eq{"id": quintaID})

	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("quinta", quintaID)
	}
	return nil
}
