// Package identity carries the authenticated user through a context.
package identity

import "context"

type ctxKey struct{}

// WithUser returns a copy of ctx bound to userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the user bound to ctx, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
