package auth

import (
	"context"

	"github.com/hongminglow/campus-connect/internal/models"
)

// Identity is what the auth gate attaches to an authenticated request.
type Identity struct {
	UserID int64
	Email  string
	Role   models.Role
}

type identityKey struct{}

// WithIdentity returns a child context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity set by WithIdentity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type claimsKey struct{}

// WithClaims attaches verified claims and the identity they encode.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey{}, claims)
	return WithIdentity(ctx, claims.Identity())
}

// ClaimsFromContext returns the claims set by WithClaims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}
