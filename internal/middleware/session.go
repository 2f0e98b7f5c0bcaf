package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/notesbox/internal/auth"
	"github.com/2beens/notesbox/internal/users"
)

type userGetter interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

type SessionMiddleware struct {
	checker  auth.Checker
	users    userGetter
	loginURL string
}

func NewSessionMiddleware(checker auth.Checker, users userGetter, loginURL string) *SessionMiddleware {
	return &SessionMiddleware{
		checker:  checker,
		users:    users,
		loginURL: loginURL,
	}
}

// LoadSession resolves the session cookie into the current user. Requests
// without a valid session continue as anonymous.
func (m *SessionMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		token := auth.TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		userID, ok, err := m.checker.UserID(ctx, token)
		if err != nil {
			log.Warnf("[session] check token => %s: %s", r.URL.Path, err)
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			log.Tracef("[session] expired or unknown token => %s", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.Get(ctx, userID)
		if err != nil {
			if !errors.Is(err, users.ErrUserNotFound) {
				log.Errorf("[session] get user %d: %s", userID, err)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx = auth.WithUser(ctx, &auth.User{ID: user.ID, Username: user.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginRequired redirects anonymous requests to the login page, keeping the
// requested URL in the next query param.
func (m *SessionMiddleware) LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == nil {
			http.Redirect(w, r, LoginRedirectURL(m.loginURL, r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRedirectURL builds <loginURL>?next=<escaped next>, leaving slashes readable.
func LoginRedirectURL(loginURL, next string) string {
	escaped := url.QueryEscape(next)
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return loginURL + "?next=" + escaped
}
