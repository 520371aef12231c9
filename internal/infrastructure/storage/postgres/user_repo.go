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
	"quintastock/internal/domain/auth"
)

const usersTable = "users"

var userColumns = []string{
	"id", "username", "name", "password_hash", "role", "permissions",
	"quinta", "is_active", "version", "created_at", "updated_at",
}

// UserRepo implements auth.UserRepository. Permissions persist as text[].
type UserRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *TxManager) *UserRepo {
	return &UserRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ auth.UserRepository = (*UserRepo)(nil)

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	ins := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID, user.Username, user.Name, user.PasswordHash, user.Role,
			user.Permissions, user.Quinta, user.IsActive, user.Version,
			user.CreatedAt, user.UpdatedAt,
		)

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID)
}

// GetByUsername retrieves a user by login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username}, username)
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*auth.User, error) {
	sel := r.builder.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1)

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, apperror.NewDatabase(err)
	}
	return &user, nil
}

// List returns all users ordered by name.
func (r *UserRepo) List(ctx context.Context) ([]*auth.User, error) {
	sel := r.builder.Select(userColumns...).
		From(usersTable).
		OrderBy("name")

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []*auth.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return users, nil
}

// Update modifies a user with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	upd := r.builder.Update(usersTable).
		Set("username", user.Username).
		Set("name", user.Name).
		Set("password_hash", user.PasswordHash).
		Set("role", user.Role).
		Set("permissions", user.Permissions).
		Set("quinta", user.Quinta).
		Set("is_active", user.IsActive).
		Set("version", user.Version+1).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID, "version": user.Version})

	sql, args, err := upd.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}
	user.Version++
	return nil
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	del := r.builder.Delete(usersTable).Where(squirrel.Eq{"id": userID})

	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID)
	}
	return nil
}

// ExistsByUsername checks username uniqueness.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	sel := r.builder.Select("1").
		From(usersTable).
		Where(squirrel.Eq{"username": username}).
		Limit(1)

	sql, args, err := sel.ToSql()
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
