package auth

import "context"

type ctxKey int

const userCtxKey ctxKey = iota

// User is the authenticated request originator.
type User struct {
	ID       int
	Username string
}

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext returns the logged user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(userCtxKey).(*User)
	if !ok {
		return nil
	}
	return user
}
