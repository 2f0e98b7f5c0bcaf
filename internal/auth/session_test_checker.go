package auth

import "context"

// SessionTestChecker is an in-memory Checker, token -> user id.
type SessionTestChecker struct {
	Sessions map[string]int
}

func NewSessionTestChecker() *SessionTestChecker {
	return &SessionTestChecker{
		Sessions: map[string]int{},
	}
}

func (c *SessionTestChecker) UserID(_ context.Context, token string) (int, bool, error) {
	userID, ok := c.Sessions[token]
	if !ok {
		return 0, false, nil
	}
	return userID, true, nil
}
