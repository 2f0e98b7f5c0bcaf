// Package web renders the HTML pages of the notes service.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/notesbox/internal/auth"
	"github.com/2beens/notesbox/pkg"
)

//go:embed templates
var templatesFS embed.FS

const (
	baseTemplate     = "templates/base.html"
	NotFoundTemplate = "404.html"
)

var ErrRouteNotFound = errors.New("route not found")

// Data is the context passed to a page template.
type Data map[string]any

// RenderHook is called with every rendered page, before it is written out.
type RenderHook func(name string, status int, data Data)

type Renderer struct {
	router    *mux.Router
	templates map[string]*template.Template
	policy    *bluemonday.Policy
	hook      RenderHook
}

// NewRenderer parses the base layout together with each page template.
// Routes are resolved by name at render time, so the router can be filled after this call.
func NewRenderer(router *mux.Router) (*Renderer, error) {
	r := &Renderer{
		router:    router,
		templates: make(map[string]*template.Template),
		policy:    bluemonday.UGCPolicy(),
	}

	if err := r.parseTemplates(); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return r, nil
}

func (r *Renderer) SetRenderHook(hook RenderHook) {
	r.hook = hook
}

func (r *Renderer) parseTemplates() error {
	funcMap := template.FuncMap{
		"url":        r.URL,
		"markdown":   r.renderMarkdown,
		"formatTime": formatTime,
	}

	return fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == baseTemplate || !strings.HasSuffix(path, ".html") {
			return nil
		}

		tmpl, err := template.New("base").Funcs(funcMap).ParseFS(templatesFS, baseTemplate, path)
		if err != nil {
			return fmt.Errorf("template %s: %w", path, err)
		}

		name := strings.TrimPrefix(path, "templates/")
		r.templates[name] = tmpl
		return nil
	})
}

// Render writes the named page with the given status.
// The current user is added to the data under "User" unless already set.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data Data) {
	tmpl, ok := r.templates[name]
	if !ok {
		log.Errorf("render: template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = Data{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = auth.UserFromContext(req.Context())
	}

	if r.hook != nil {
		r.hook(name, status, data)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Errorf("render: execute template %q: %s", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), status)
}

// NotFound renders the not-found page. Missing objects and objects owned by someone
// else both end up here, with the same body.
func (r *Renderer) NotFound(w http.ResponseWriter, req *http.Request) {
	r.Render(w, req, http.StatusNotFound, NotFoundTemplate, Data{})
}

// Redirect sends a 302 to the named route.
func (r *Renderer) Redirect(w http.ResponseWriter, req *http.Request, routeName string, pairs ...string) {
	target, err := r.URL(routeName, pairs...)
	if err != nil {
		log.Errorf("redirect to %s: %s", routeName, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, req, target, http.StatusFound)
}

// URL reverses a named route, e.g. URL("notes:detail", "slug", "my-note").
func (r *Renderer) URL(routeName string, pairs ...string) (string, error) {
	return ReverseURL(r.router, routeName, pairs...)
}

func ReverseURL(router *mux.Router, routeName string, pairs ...string) (string, error) {
	route := router.Get(routeName)
	if route == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, routeName)
	}
	u, err := route.URL(pairs...)
	if err != nil {
		return "", fmt.Errorf("reverse %s: %w", routeName, err)
	}
	return u.String(), nil
}

func (r *Renderer) renderMarkdown(s string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	htmlContent := markdown.ToHTML([]byte(s), p, renderer)
	return template.HTML(r.policy.SanitizeBytes(htmlContent))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}
