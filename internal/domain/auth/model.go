// Package auth provides authentication and user administration.
package auth

import (
	"context"
	"strings"
	"time"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/id"
	"quintastock/internal/core/security"
)

// User is an account able to sign in. Role and permissions drive the
// approval policy and area access; Quinta pins quinta-role users to their
// own estate.
type User struct {
	ID           id.ID     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Permissions  []string  `db:"permissions" json:"permissions"`
	Quinta       *string   `db:"quinta" json:"quinta,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	Version      int       `db:"version" json:"version"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser creates an active user with a fresh ID.
func NewUser(username, name, passwordHash, role string) *User {
	now := time.Now()
	return &User{
		ID:           id.New(),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks account invariants.
func (u *User) Validate(ctx context.Context) error {
	if u.Username == "" {
		return apperror.NewValidation("username is required").
			WithDetail("field", "username")
	}
	if u.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if !security.ValidRole(u.Role) {
		return apperror.NewValidation("invalid role").
			WithDetail("field", "role").
			WithDetail("value", u.Role)
	}
	for _, p := range u.Permissions {
		if !security.ValidPermission(p) {
			return apperror.NewValidation("unknown permission").
				WithDetail("field", "permissions").
				WithDetail("value", p)
		}
	}
	if u.Role == security.RoleQuinta && (u.Quinta == nil || strings.TrimSpace(*u.Quinta) == "") {
		return apperror.NewValidation("quinta users must have an assigned quinta").
			WithDetail("field", "quinta")
	}
	return nil
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// HomeQuinta returns the assigned quinta or empty string.
func (u *User) HomeQuinta() string {
	if u.Quinta == nil {
		return ""
	}
	return *u.Quinta
}

// Credentials carries a login attempt.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the login result.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// RefreshToken is a stored, hashed refresh token.
type RefreshToken struct {
	ID        id.ID      `db:"id"`
	UserID    id.ID      `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// IsValid reports whether the token may still be exchanged.
func (t *RefreshToken) IsValid() bool {
	return t.RevokedAt == nil && time.Now().Before(t.ExpiresAt)
}
