package notes

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
	ErrNoteNotFound = errors.New("note not found")
	ErrSlugExists   = errors.New("note slug already exists")
	ErrEmptySlug    = errors.New("note slug cannot be derived from title")
	ErrNoAuthor     = errors.New("note author does not exist")
)

const slugConstraintName = "note_slug_key"

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores a new note, deriving the slug from the title when it is blank.
func (r *Repo) Add(ctx context.Context, note *Note) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.add")
	defer span.End()

	if strings.TrimSpace(note.Title) == "" || strings.TrimSpace(note.Text) == "" {
		return errors.New("note title or text empty")
	}
	if note.AuthorID <= 0 {
		return errors.New("note author not set")
	}
	if note.Slug == "" {
		note.Slug = Slugify(note.Title)
		if note.Slug == "" {
			return ErrEmptySlug
		}
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	var id int
	err := r.db.QueryRow(
		ctx,
		`INSERT INTO note (title, text, slug, author_id, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		note.Title, note.Text, note.Slug, note.AuthorID, note.CreatedAt,
	).Scan(&id)
	if err != nil {
		tracing.RecordError(span, err)
		return mapWriteError(err)
	}

	note.ID = id
	span.SetAttributes(tracing.IntAttr("note_id", id))
	return nil
}

// GetBySlug returns the note only when it belongs to authorID. A note owned by
// someone else is reported exactly like a missing one.
func (r *Repo) GetBySlug(ctx context.Context, slug string, authorID int) (*Note, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.getBySlug")
	defer span.End()

	var note Note
	err := r.db.QueryRow(
		ctx,
		`SELECT id, title, text, slug, author_id, created_at FROM note WHERE slug = $1 AND author_id = $2;`,
		slug, authorID,
	).Scan(&note.ID, &note.Title, &note.Text, &note.Slug, &note.AuthorID, &note.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	return &note, nil
}

func (r *Repo) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.slugExists")
	defer span.End()

	var exists bool
	err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM note WHERE slug = $1 AND id <> $2);`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		tracing.RecordError(span, err)
		return false, err
	}

	return exists, nil
}

func (r *Repo) ListByAuthor(ctx context.Context, authorID int) ([]Note, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.listByAuthor")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, title, text, slug, author_id, created_at
			FROM note
			WHERE author_id = $1
			ORDER BY id;`,
		authorID,
	)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.ID, &note.Title, &note.Text, &note.Slug, &note.AuthorID, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

// Update changes title, text and slug of a note owned by note.AuthorID.
func (r *Repo) Update(ctx context.Context, note *Note) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.update")
	defer span.End()

	if strings.TrimSpace(note.Title) == "" || strings.TrimSpace(note.Text) == "" {
		return errors.New("note title or text empty")
	}
	if note.Slug == "" {
		note.Slug = Slugify(note.Title)
		if note.Slug == "" {
			return ErrEmptySlug
		}
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE note SET title = $1, text = $2, slug = $3 WHERE id = $4 AND author_id = $5;`,
		note.Title, note.Text, note.Slug, note.ID, note.AuthorID,
	)
	if err != nil {
		tracing.RecordError(span, err)
		return mapWriteError(err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, slug string, authorID int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.delete")
	defer span.End()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM note WHERE slug = $1 AND author_id = $2;`,
		slug, authorID,
	)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.count")
	defer span.End()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM note;`).Scan(&count); err != nil {
		tracing.RecordError(span, err)
		return 0, err
	}
	span.SetAttributes(tracing.IntAttr("count", count))
	return count, nil
}

func mapWriteError(err error) error {
	if pkg.IsUniqueViolationError(err) && pkg.UniqueViolationConstraint(err) == slugConstraintName {
		return ErrSlugExists
	}
	if pkg.IsForeignKeyViolationError(err) {
		return ErrNoAuthor
	}
	return err
}
