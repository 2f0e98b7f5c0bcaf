package auth

import "context"

var _ Checker = (*SessionChecker)(nil)
var _ Checker = (*SessionTestChecker)(nil)

// Checker resolves a session token into the id of the logged user.
type Checker interface {
	UserID(ctx context.Context, token string) (int, bool, error)
}
