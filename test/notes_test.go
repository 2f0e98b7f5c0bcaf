//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) noteAuthor(slug string) string {
	var username string
	s.Require().NoError(s.DB.QueryRow(
		`SELECT u.username FROM note n JOIN app_user u ON u.id = n.author_id WHERE n.slug = $1;`,
		slug,
	).Scan(&username))
	return username
}

func (s *IntegrationTestSuite) TestNotes() {
	ctx := context.Background()

	author := signupAndLogin(ctx, s.T(), "author")
	notAuthor := signupAndLogin(ctx, s.T(), "not-author")
	anonymous := newTestClient(s.T())

	s.T().Run("anonymous redirected to login", func(t *testing.T) {
		for _, path := range []string{
			"/notes/",
			"/add/",
			"/done/",
			"/note/some-slug/",
			"/edit/some-slug/",
			"/delete/some-slug/",
		} {
			resp := anonymous.get(ctx, path)
			assert.Equal(t, http.StatusFound, resp.StatusCode, path)
			assert.Equal(t, "/auth/login/?next="+path, resp.Location, path)
		}
	})

	s.T().Run("create derives slug", func(t *testing.T) {
		countBefore := s.notesCount()

		resp := author.post(ctx, "/add/", url.Values{
			"title": {"Заголовок"},
			"text":  {"Текст"},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode, resp.Body)
		assert.Equal(t, "/done/", resp.Location)
		assert.Equal(t, countBefore+1, s.notesCount())
		assert.Equal(t, "author", s.noteAuthor("zagolovok"))
	})

	s.T().Run("duplicate slug not persisted", func(t *testing.T) {
		countBefore := s.notesCount()

		resp := author.post(ctx, "/add/", url.Values{
			"title": {"Another title"},
			"text":  {"text"},
			"slug":  {"zagolovok"},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, countBefore, s.notesCount())
	})

	s.T().Run("author field ignored", func(t *testing.T) {
		var authorID int
		require.NoError(t, s.DB.QueryRow(`SELECT id FROM app_user WHERE username = 'author';`).Scan(&authorID))

		resp := notAuthor.post(ctx, "/add/", url.Values{
			"title":  {"Mine"},
			"text":   {"text"},
			"slug":   {"not-author-note"},
			"author": {strconv.Itoa(authorID)},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode, resp.Body)
		assert.Equal(t, "not-author", s.noteAuthor("not-author-note"))
	})

	s.T().Run("list shows own notes only", func(t *testing.T) {
		resp := author.get(ctx, "/notes/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Body, "Заголовок")
		assert.NotContains(t, resp.Body, "not-author-note")

		resp = notAuthor.get(ctx, "/notes/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotContains(t, resp.Body, "zagolovok")
	})

	s.T().Run("non author gets not found", func(t *testing.T) {
		for _, path := range []string{"/note/zagolovok/", "/edit/zagolovok/", "/delete/zagolovok/"} {
			assert.Equal(t, http.StatusNotFound, notAuthor.get(ctx, path).StatusCode, path)
		}
		assert.Equal(t, http.StatusNotFound, notAuthor.post(ctx, "/edit/zagolovok/", url.Values{
			"title": {"hacked"},
			"text":  {"hacked"},
		}).StatusCode)
		assert.Equal(t, http.StatusNotFound, notAuthor.post(ctx, "/delete/zagolovok/", nil).StatusCode)
		assert.Equal(t, "author", s.noteAuthor("zagolovok"))
	})

	s.T().Run("author can view edit and delete", func(t *testing.T) {
		for _, path := range []string{"/note/zagolovok/", "/edit/zagolovok/", "/delete/zagolovok/"} {
			assert.Equal(t, http.StatusOK, author.get(ctx, path).StatusCode, path)
		}

		resp := author.post(ctx, "/edit/zagolovok/", url.Values{
			"title": {"Edited"},
			"text":  {"edited text"},
			"slug":  {"edited"},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode, resp.Body)
		assert.Equal(t, "/done/", resp.Location)
		assert.Equal(t, http.StatusNotFound, author.get(ctx, "/note/zagolovok/").StatusCode)
		assert.Equal(t, http.StatusOK, author.get(ctx, "/note/edited/").StatusCode)

		countBefore := s.notesCount()
		resp = author.post(ctx, "/delete/edited/", nil)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/done/", resp.Location)
		assert.Equal(t, countBefore-1, s.notesCount())
		assert.Equal(t, http.StatusOK, author.get(ctx, "/done/").StatusCode)
	})
}
