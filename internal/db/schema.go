package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// Schema creates the users and notes tables. It is safe to run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS app_user
(
    id            SERIAL PRIMARY KEY,
    username      VARCHAR(150) NOT NULL,
    password_hash VARCHAR      NOT NULL,
    created_at    TIMESTAMPTZ  NOT NULL DEFAULT now(),
    CONSTRAINT app_user_username_key UNIQUE (username)
);

CREATE TABLE IF NOT EXISTS note
(
    id         SERIAL PRIMARY KEY,
    title      VARCHAR(100) NOT NULL,
    text       TEXT         NOT NULL,
    slug       VARCHAR(100) NOT NULL,
    author_id  INTEGER      NOT NULL REFERENCES app_user (id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
    CONSTRAINT note_slug_key UNIQUE (slug)
);

CREATE INDEX IF NOT EXISTS ix_note_author_id ON note (author_id);
`

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// EnsureSchema runs the schema statements using the simple protocol (no args).
func EnsureSchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	log.Debugln("db schema ensured")
	return nil
}

// EnsureSchemaWithRetry keeps trying EnsureSchema with exponential backoff until it
// succeeds, maxWait elapses or ctx is done. Postgres may come up after the service.
func EnsureSchemaWithRetry(ctx context.Context, db execer, maxWait time.Duration) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 200 * time.Millisecond
	expBackoff.MaxInterval = 5 * time.Second
	expBackoff.MaxElapsedTime = maxWait

	attempt := 0
	return backoff.RetryNotify(
		func() error {
			attempt++
			return EnsureSchema(ctx, db)
		},
		backoff.WithContext(expBackoff, ctx),
		func(err error, next time.Duration) {
			log.Warnf("db not ready (attempt %d), retry in %s: %s", attempt, next, err)
		},
	)
}
