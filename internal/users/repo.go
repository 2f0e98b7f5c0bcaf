package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/notesbox/internal/telemetry/tracing"
	"github.com/2beens/notesbox/pkg"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user *User) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer span.End()

	if strings.TrimSpace(user.Username) == "" || user.PasswordHash == "" {
		return errors.New("username or password hash empty")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	var id int
	err := r.db.QueryRow(
		ctx,
		`INSERT INTO app_user (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id;`,
		user.Username, user.PasswordHash, user.CreatedAt,
	).Scan(&id)
	if err != nil {
		tracing.RecordError(span, err)
		if pkg.IsUniqueViolationError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer span.End()

	return r.getOne(ctx,
		`SELECT id, username, password_hash, created_at FROM app_user WHERE id = $1;`,
		id,
	)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByUsername")
	defer span.End()

	return r.getOne(ctx,
		`SELECT id, username, password_hash, created_at FROM app_user WHERE username = $1;`,
		username,
	)
}

func (r *Repo) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
