package notes

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
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=notes_test

type notesRepo interface {
	Add(ctx context.Context, note *Note) error
	GetBySlug(ctx context.Context, slug string, authorID int) (*Note, error)
	SlugExists(ctx context.Context, slug string, excludeID int) (bool, error)
	ListByAuthor(ctx context.Context, authorID int) ([]Note, error)
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, slug string, authorID int) error
}

const slugPattern = "{slug:[-a-zA-Z0-9_]+}"

type Handler struct {
	repo     notesRepo
	renderer *web.Renderer
	metrics  *metrics.Manager
}

func NewHandler(
	repo notesRepo,
	renderer *web.Renderer,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		repo:     repo,
		renderer: renderer,
		metrics:  metrics,
	}
}

// SetupRoutes registers the notes pages. Everything except the home page
// goes through requireLogin.
func (handler *Handler) SetupRoutes(r *mux.Router, requireLogin mux.MiddlewareFunc) {
	private := func(h http.HandlerFunc) http.Handler {
		return requireLogin(h)
	}

	r.HandleFunc("/", handler.HandleHome).Methods(http.MethodGet).Name("notes:home")
	r.Handle("/notes/", private(handler.HandleList)).Methods(http.MethodGet).Name("notes:list")
	r.Handle("/add/", private(handler.HandleAdd)).Methods(http.MethodGet, http.MethodPost).Name("notes:add")
	r.Handle("/done/", private(handler.HandleSuccess)).Methods(http.MethodGet).Name("notes:success")
	r.Handle("/note/"+slugPattern+"/", private(handler.HandleDetail)).Methods(http.MethodGet).Name("notes:detail")
	r.Handle("/edit/"+slugPattern+"/", private(handler.HandleEdit)).Methods(http.MethodGet, http.MethodPost).Name("notes:edit")
	r.Handle("/delete/"+slugPattern+"/", private(handler.HandleDelete)).
		Methods(http.MethodGet, http.MethodPost, http.MethodDelete).
		Name("notes:delete")
}

func (handler *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "notes/home.html", nil)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.list")
	defer span.End()

	user, ok := handler.currentUser(w, r)
	if !ok {
		return
	}

	notes, err := handler.repo.ListByAuthor(ctx, user.ID)
	if err != nil {
		tracing.RecordError(span, err)
		log.Errorf("list notes for user %d: %s", user.ID, err)
		http.Error(w, "failed to get notes", http.StatusInternalServerError)
		return
	}

	if len(notes) == 0 {
		notes = []Note{}
	}

	handler.renderer.Render(w, r, http.StatusOK, "notes/list.html", web.Data{
		"ObjectList": notes,
	})
}

func (handler *Handler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "notes/success.html", nil)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.add")
	defer span.End()

	user, ok := handler.currentUser(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		handler.renderForm(w, r, NewForm(nil), nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("add new note failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	form := NewForm(r.PostForm)
	valid, err := form.Clean(ctx, handler.repo, 0)
	if err != nil {
		tracing.RecordError(span, err)
		log.Errorf("add new note, clean form: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !valid {
		handler.renderForm(w, r, form, nil)
		return
	}

	note := &Note{
		Title:     form.Title,
		Text:      form.Text,
		Slug:      form.Slug,
		AuthorID:  user.ID,
		CreatedAt: time.Now(),
	}
	if err := handler.repo.Add(ctx, note); err != nil {
		if errors.Is(err, ErrSlugExists) {
			form.SetSlugTaken()
			handler.renderForm(w, r, form, nil)
			return
		}
		tracing.RecordError(span, err)
		log.Errorf("failed to add new note [%s] for user %d: %s", note.Slug, user.ID, err)
		http.Error(w, "error, failed to add new note", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNotesCreated.Inc()
	log.Printf("new note added: [%s] [%s]: %d", note.Title, note.Slug, note.ID)
	handler.renderer.Redirect(w, r, "notes:success")
}

func (handler *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	note, ok := handler.ownedNote(w, r, "handler.notes.detail")
	if !ok {
		return
	}

	handler.renderer.Render(w, r, http.StatusOK, "notes/detail.html", web.Data{
		"Note": note,
	})
}

func (handler *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.edit")
	defer span.End()

	note, ok := handler.ownedNote(w, r.WithContext(ctx), "handler.notes.edit.get")
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		handler.renderForm(w, r, FormFromNote(note), note)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("update note failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	form := NewForm(r.PostForm)
	valid, err := form.Clean(ctx, handler.repo, note.ID)
	if err != nil {
		tracing.RecordError(span, err)
		log.Errorf("update note %d, clean form: %s", note.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !valid {
		handler.renderForm(w, r, form, note)
		return
	}

	updated := &Note{
		ID:        note.ID,
		Title:     form.Title,
		Text:      form.Text,
		Slug:      form.Slug,
		AuthorID:  note.AuthorID,
		CreatedAt: note.CreatedAt,
	}
	if err := handler.repo.Update(ctx, updated); err != nil {
		switch {
		case errors.Is(err, ErrSlugExists):
			form.SetSlugTaken()
			handler.renderForm(w, r, form, note)
		case errors.Is(err, ErrNoteNotFound):
			handler.renderer.NotFound(w, r)
		default:
			tracing.RecordError(span, err)
			log.Errorf("failed to update note %d: %s", note.ID, err)
			http.Error(w, "error, failed to update note", http.StatusInternalServerError)
		}
		return
	}

	handler.metrics.CounterNotesUpdated.Inc()
	log.Printf("note updated: [%s] [%s]: %d", updated.Title, updated.Slug, updated.ID)
	handler.renderer.Redirect(w, r, "notes:success")
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		note, ok := handler.ownedNote(w, r, "handler.notes.delete.confirm")
		if !ok {
			return
		}
		handler.renderer.Render(w, r, http.StatusOK, "notes/delete.html", web.Data{
			"Note": note,
		})
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.delete")
	defer span.End()

	user, ok := handler.currentUser(w, r)
	if !ok {
		return
	}

	slug := mux.Vars(r)["slug"]
	if err := handler.repo.Delete(ctx, slug, user.ID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			handler.renderer.NotFound(w, r)
			return
		}
		tracing.RecordError(span, err)
		log.Errorf("failed to delete note [%s]: %s", slug, err)
		http.Error(w, "error, note not deleted, internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNotesDeleted.Inc()
	log.Printf("note deleted: [%s] by user %d", slug, user.ID)
	handler.renderer.Redirect(w, r, "notes:success")
}

// ownedNote loads the note from the slug path var, scoped to the current user.
// Writes a 404 when the note is missing or owned by someone else.
func (handler *Handler) ownedNote(w http.ResponseWriter, r *http.Request, spanName string) (*Note, bool) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	user, ok := handler.currentUser(w, r)
	if !ok {
		return nil, false
	}

	slug := mux.Vars(r)["slug"]
	span.SetAttributes(tracing.StringAttr("slug", slug))

	note, err := handler.repo.GetBySlug(ctx, slug, user.ID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			log.Tracef("note [%s] not found for user %d", slug, user.ID)
			handler.renderer.NotFound(w, r)
			return nil, false
		}
		tracing.RecordError(span, err)
		log.Errorf("get note [%s]: %s", slug, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	return note, true
}

// currentUser is always set behind requireLogin; a missing user means the
// handler was mounted without it.
func (handler *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		log.Errorf("notes handler reached without a user: %s", r.URL.Path)
		handler.renderer.NotFound(w, r)
		return nil, false
	}
	return user, true
}

func (handler *Handler) renderForm(w http.ResponseWriter, r *http.Request, form *Form, note *Note) {
	data := web.Data{"Form": form}
	if note != nil {
		data["Note"] = note
	}
	handler.renderer.Render(w, r, http.StatusOK, "notes/form.html", data)
}
