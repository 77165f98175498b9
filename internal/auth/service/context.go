package service

import (
	"context"

	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/domain"
)

type claimsKey struct{}

// ContextWithClaims attaches the verified access-token identity to ctx.
func ContextWithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*domain.Claims)
	return claims, ok && claims != nil
}
