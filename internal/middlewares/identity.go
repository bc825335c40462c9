package middlewares

import (
	"context"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

type identityKey struct{}

// WithIdentity stores the authenticated user in ctx.
func WithIdentity(ctx context.Context, user *models.UserDB) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFromContext returns the authenticated user, or nil.
func IdentityFromContext(ctx context.Context) *models.UserDB {
	user, _ := ctx.Value(identityKey{}).(*models.UserDB)
	return user
}
