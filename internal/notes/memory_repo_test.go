package notes_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/2beens/notesbox/internal/notes"
)

// memoryRepo mirrors the postgres repo semantics, including the unique slug.
type memoryRepo struct {
	mu     sync.Mutex
	lastID int
	notes  map[int]notes.Note
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		notes: make(map[int]notes.Note),
	}
}

func (r *memoryRepo) slugTaken(slug string, excludeID int) bool {
	for id, n := range r.notes {
		if n.Slug == slug && id != excludeID {
			return true
		}
	}
	return false
}

func (r *memoryRepo) Add(_ context.Context, note *notes.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if note.Slug == "" {
		note.Slug = notes.Slugify(note.Title)
		if note.Slug == "" {
			return notes.ErrEmptySlug
		}
	}
	if r.slugTaken(note.Slug, 0) {
		return notes.ErrSlugExists
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	r.lastID++
	note.ID = r.lastID
	r.notes[note.ID] = *note
	return nil
}

func (r *memoryRepo) GetBySlug(_ context.Context, slug string, authorID int) (*notes.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notes {
		if n.Slug == slug && n.AuthorID == authorID {
			found := n
			return &found, nil
		}
	}
	return nil, notes.ErrNoteNotFound
}

func (r *memoryRepo) SlugExists(_ context.Context, slug string, excludeID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slugTaken(slug, excludeID), nil
}

func (r *memoryRepo) ListByAuthor(_ context.Context, authorID int) ([]notes.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var list []notes.Note
	for _, n := range r.notes {
		if n.AuthorID == authorID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *memoryRepo) Update(_ context.Context, note *notes.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.notes[note.ID]
	if !ok || existing.AuthorID != note.AuthorID {
		return notes.ErrNoteNotFound
	}
	if r.slugTaken(note.Slug, note.ID) {
		return notes.ErrSlugExists
	}
	existing.Title = note.Title
	existing.Text = note.Text
	existing.Slug = note.Slug
	r.notes[note.ID] = existing
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, slug string, authorID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.notes {
		if n.Slug == slug && n.AuthorID == authorID {
			delete(r.notes, id)
			return nil
		}
	}
	return notes.ErrNoteNotFound
}

func (r *memoryRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

func (r *memoryRepo) get(id int) (notes.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	return n, ok
}
