package middleware

import (
	"context"

	"mediconnect/internal/auth"
	"mediconnect/internal/model"
)

type ctxKey string

// The three claims are stored separately so callers can read just the one
// they need.
const (
	UserIDKey ctxKey = "uid"
	RoleKey   ctxKey = "role"
	EmailKey  ctxKey = "email"
)

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id.UserID)
	ctx = context.WithValue(ctx, RoleKey, id.Role)
	return context.WithValue(ctx, EmailKey, id.Email)
}

// IdentityFromContext reports false when the request was not authenticated.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	if !ok || uid == "" {
		return auth.Identity{}, false
	}
	role, _ := ctx.Value(RoleKey).(model.Role)
	email, _ := ctx.Value(EmailKey).(string)
	return auth.Identity{UserID: uid, Role: role, Email: email}, true
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}
