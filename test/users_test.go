//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestUsers() {
	ctx := context.Background()

	s.T().Run("public pages", func(t *testing.T) {
		c := newTestClient(t)
		for _, path := range []string{"/", "/auth/login/", "/auth/logout/", "/auth/signup/"} {
			assert.Equal(t, http.StatusOK, c.get(ctx, path).StatusCode, path)
		}
	})

	s.T().Run("signup validation", func(t *testing.T) {
		c := newTestClient(t)

		resp := c.post(ctx, "/auth/signup/", url.Values{
			"username":  {"mismatch"},
			"password1": {testPassword},
			"password2": {testPassword + "x"},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var count int
		require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM app_user WHERE username = 'mismatch';`).Scan(&count))
		assert.Zero(t, count)
	})

	s.T().Run("username taken", func(t *testing.T) {
		signupAndLogin(ctx, t, "taken")

		resp := newTestClient(t).post(ctx, "/auth/signup/", url.Values{
			"username":  {"taken"},
			"password1": {testPassword},
			"password2": {testPassword},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	s.T().Run("login failure and next", func(t *testing.T) {
		signupAndLogin(ctx, t, "returning")

		c := newTestClient(t)
		resp := c.post(ctx, "/auth/login/", url.Values{
			"username": {"returning"},
			"password": {"wrong-password"},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, http.StatusFound, c.get(ctx, "/notes/").StatusCode)

		resp = c.post(ctx, "/auth/login/", url.Values{
			"username": {"returning"},
			"password": {testPassword},
			"next":     {"/add/"},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/add/", resp.Location)
		assert.Equal(t, http.StatusOK, c.get(ctx, "/add/").StatusCode)
	})

	s.T().Run("logout ends session", func(t *testing.T) {
		c := signupAndLogin(ctx, t, "leaving")
		require.Equal(t, http.StatusOK, c.get(ctx, "/notes/").StatusCode)

		assert.Equal(t, http.StatusOK, c.post(ctx, "/auth/logout/", nil).StatusCode)

		resp := c.get(ctx, "/notes/")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/auth/login/?next=/notes/", resp.Location)
	})
}
