package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/notesbox/internal/auth"
	"github.com/2beens/notesbox/internal/telemetry/metrics"
	"github.com/2beens/notesbox/internal/telemetry/tracing"
	"github.com/2beens/notesbox/internal/web"
	"github.com/2beens/notesbox/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersRepo interface {
	Add(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type sessionService interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

const invalidLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type Handler struct {
	repo          usersRepo
	sessions      sessionService
	renderer      *web.Renderer
	metrics       *metrics.Manager
	sessionTTL    time.Duration
	secureCookies bool
}

func NewHandler(
	repo usersRepo,
	sessions sessionService,
	renderer *web.Renderer,
	metrics *metrics.Manager,
	sessionTTL time.Duration,
	secureCookies bool,
) *Handler {
	return &Handler{
		repo:          repo,
		sessions:      sessions,
		renderer:      renderer,
		metrics:       metrics,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

func (handler *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	form := &LoginForm{Next: SafeNext(r.URL.Query().Get("next"))}
	handler.renderer.Render(w, r, http.StatusOK, "users/login.html", web.Data{"Form": form})
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("login failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	form := NewLoginForm(r.PostForm)
	if next := SafeNext(form.Next); next != "" {
		form.Next = next
	} else {
		form.Next = SafeNext(r.URL.Query().Get("next"))
	}

	if form.Username == "" || form.Password == "" {
		form.Error = invalidLoginMessage
		handler.renderer.Render(w, r, http.StatusOK, "users/login.html", web.Data{"Form": form})
		return
	}

	user, err := handler.repo.GetByUsername(ctx, form.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		tracing.RecordError(span, err)
		log.Errorf("login, get user [%s]: %s", form.Username, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if user == nil || !pkg.CheckPasswordHash(form.Password, user.PasswordHash) {
		userIP, _ := pkg.ReadUserIP(r)
		log.Tracef("login failed for [%s] from %s", form.Username, userIP)
		handler.metrics.CounterLogins.WithLabelValues("failed").Inc()
		form.Error = invalidLoginMessage
		handler.renderer.Render(w, r, http.StatusOK, "users/login.html", web.Data{"Form": form})
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		tracing.RecordError(span, err)
		log.Errorf("login, create session for user %d: %s", user.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	auth.SetSessionCookie(w, token, handler.sessionTTL, handler.secureCookies)
	handler.metrics.CounterLogins.WithLabelValues("success").Inc()
	log.Debugf("user %d [%s] logged in", user.ID, user.Username)

	if form.Next != "" {
		http.Redirect(w, r, form.Next, http.StatusFound)
		return
	}
	handler.renderer.Redirect(w, r, "notes:list")
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := auth.TokenFromRequest(r); token != "" {
		loggedOut, err := handler.sessions.Logout(ctx, token)
		if err != nil {
			log.Errorf("logout: %s", err)
		} else if !loggedOut {
			log.Tracef("logout: no session for token")
		}
	}

	auth.ClearSessionCookie(w, handler.secureCookies)

	r = r.WithContext(auth.WithUser(ctx, nil))
	handler.renderer.Render(w, r, http.StatusOK, "users/logout.html", nil)
}

func (handler *Handler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "users/signup.html", web.Data{
		"Form": &SignupForm{Errors: map[string]string{}},
	})
}

func (handler *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.signup")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("signup failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	form := NewSignupForm(r.PostForm)
	if !form.Validate() {
		handler.renderer.Render(w, r, http.StatusOK, "users/signup.html", web.Data{"Form": form})
		return
	}

	passwordHash, err := pkg.HashPassword(form.Password1)
	if err != nil {
		tracing.RecordError(span, err)
		log.Errorf("signup, hash password: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &User{
		Username:     form.Username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if err := handler.repo.Add(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			form.Errors["username"] = "A user with that username already exists."
			handler.renderer.Render(w, r, http.StatusOK, "users/signup.html", web.Data{"Form": form})
			return
		}
		tracing.RecordError(span, err)
		log.Errorf("signup, add user [%s]: %s", form.Username, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterSignups.Inc()
	log.Printf("new user signed up: %d [%s]", user.ID, user.Username)
	handler.renderer.Redirect(w, r, "users:login")
}

// SetupRoutes registers the account routes. Credential submissions go through postLimiter.
func (handler *Handler) SetupRoutes(r *mux.Router, postLimiter mux.MiddlewareFunc) {
	r.HandleFunc("/auth/login/", handler.HandleLoginPage).Methods(http.MethodGet).Name("users:login")
	r.Handle("/auth/login/", postLimiter(http.HandlerFunc(handler.HandleLogin))).Methods(http.MethodPost).Name("users:login:post")
	r.HandleFunc("/auth/logout/", handler.HandleLogout).Methods(http.MethodGet, http.MethodPost).Name("users:logout")
	r.HandleFunc("/auth/signup/", handler.HandleSignupPage).Methods(http.MethodGet).Name("users:signup")
	r.Handle("/auth/signup/", postLimiter(http.HandlerFunc(handler.HandleSignup))).Methods(http.MethodPost).Name("users:signup:post")
}
