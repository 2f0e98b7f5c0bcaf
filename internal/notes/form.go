package notes

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

type slugChecker interface {
	SlugExists(ctx context.Context, slug string, excludeID int) (bool, error)
}

// Form is the note submission form. The author is never taken from the
// submission, it is always the requesting user.
type Form struct {
	Title  string
	Text   string
	Slug   string
	Errors map[string]string
}

func NewForm(values url.Values) *Form {
	return &Form{
		Title:  strings.TrimSpace(values.Get("title")),
		Text:   values.Get("text"),
		Slug:   strings.TrimSpace(values.Get("slug")),
		Errors: map[string]string{},
	}
}

func FormFromNote(note *Note) *Form {
	return &Form{
		Title:  note.Title,
		Text:   note.Text,
		Slug:   note.Slug,
		Errors: map[string]string{},
	}
}

func (f *Form) Validate() bool {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}

	if f.Title == "" {
		f.Errors["title"] = "This field is required."
	} else if utf8.RuneCountInString(f.Title) > MaxTitleLength {
		f.Errors["title"] = fmt.Sprintf("Ensure this value has at most %d characters.", MaxTitleLength)
	}

	if strings.TrimSpace(f.Text) == "" {
		f.Errors["text"] = "This field is required."
	}

	if f.Slug != "" && !IsValidSlug(f.Slug) {
		f.Errors["slug"] = "Enter a valid slug consisting of letters, numbers, underscores or hyphens, at most 100 characters."
	}

	return len(f.Errors) == 0
}

// Clean validates the form, derives the slug from the title when it was left
// blank and rejects a slug used by any note other than excludeID.
func (f *Form) Clean(ctx context.Context, checker slugChecker, excludeID int) (bool, error) {
	if !f.Validate() {
		return false, nil
	}

	if f.Slug == "" {
		f.Slug = Slugify(f.Title)
		if f.Slug == "" {
			f.Errors["slug"] = "Cannot derive a slug from this title, please enter one."
			return false, nil
		}
	}

	exists, err := checker.SlugExists(ctx, f.Slug, excludeID)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		f.SetSlugTaken()
		return false, nil
	}

	return true, nil
}

func (f *Form) SetSlugTaken() {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors["slug"] = fmt.Sprintf("%s - this slug is already taken, choose a unique one.", f.Slug)
}
