package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
	"quintastock/internal/domain/auth"
)

const refreshTokensTable = "refresh_tokens"

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewTokenRepo creates a new refresh token repository.
func NewTokenRepo(txManager *TxManager) *TokenRepo {
	return &TokenRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ auth.TokenRepository = (*TokenRepo)(nil)

// SaveRefreshToken stores a hashed refresh token.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	ins := r.builder.Insert(refreshTokensTable).
		Columns("id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at").
		Values(token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.RevokedAt, token.CreatedAt)

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// GetRefreshToken retrieves a token by hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	sel := r.builder.Select("id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at").
		From(refreshTokensTable).
		Where(squirrel.Eq{"token_hash": tokenHash}).
		Limit(1)

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var token auth.RefreshToken
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &token, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refresh token", "")
		}
		return nil, apperror.NewDatabase(err)
	}
	return &token, nil
}

// RevokeRefreshToken marks a token revoked.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	return r.revoke(ctx, squirrel.Eq{"id": tokenID}, reason)
}

// RevokeAllUserTokens revokes every live token of a user.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	return r.revoke(ctx, squirrel.Eq{"user_id": userID}, reason)
}

func (r *TokenRepo) revoke(ctx context.Context, where squirrel.Eq, reason string) error {
	upd := r.builder.Update(refreshTokensTable).
		Set("revoked_at", time.Now()).
		Set("revoke_reason", reason).
		Where(where).
		Where(squirrel.Eq{"revoked_at": nil})

	sql, args, err := upd.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}
