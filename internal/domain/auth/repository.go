package auth

import (
	"context"

	"quintastock/internal/core/id"
)

// UserRepository is the persistence surface for user accounts. Update uses
// optimistic locking on the version column.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, userID id.ID) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// TokenRepository stores refresh tokens. Only the SHA-256 hash of a token is
// ever persisted, lookups take the hash too.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error
}
