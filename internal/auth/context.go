package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxRole
	ctxCapabilities
)

// WithIdentity stores the verified identity and its derived capability set
// on the context. Called once per request by the auth middleware.
func WithIdentity(ctx context.Context, userID string, role Role) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	ctx = context.WithValue(ctx, ctxCapabilities, Capabilities(role))
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxUserID).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func RoleFrom(ctx context.Context) (Role, error) {
	if r, ok := ctx.Value(ctxRole).(Role); ok && r != "" {
		return r, nil
	}
	return "", errors.New("role not in context")
}

// Can reports whether the request identity holds the capability
func Can(ctx context.Context, cap Capability) bool {
	caps, ok := ctx.Value(ctxCapabilities).(map[Capability]bool)
	return ok && caps[cap]
}
