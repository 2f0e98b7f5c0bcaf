//go:build integration_test || all_tests

package test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

type testClient struct {
	t          *testing.T
	httpClient *http.Client
}

// newTestClient keeps cookies between requests and never follows redirects,
// so tests can assert on the Location header.
func newTestClient(t *testing.T) *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t: t,
		httpClient: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type testResponse struct {
	StatusCode int
	Location   string
	Body       string
}

func (c *testClient) do(ctx context.Context, method, path string, form url.Values) testResponse {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, body)
	require.NoError(c.t, err)
	req.Header.Set("User-Agent", "test-agent")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return testResponse{
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
		Body:       string(respBytes),
	}
}

func (c *testClient) get(ctx context.Context, path string) testResponse {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *testClient) post(ctx context.Context, path string, form url.Values) testResponse {
	if form == nil {
		form = url.Values{}
	}
	return c.do(ctx, http.MethodPost, path, form)
}

// signupAndLogin registers a new account and returns a client holding its session.
func signupAndLogin(ctx context.Context, t *testing.T, username string) *testClient {
	c := newTestClient(t)

	resp := c.post(ctx, "/auth/signup/", url.Values{
		"username":  {username},
		"password1": {testPassword},
		"password2": {testPassword},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode, resp.Body)
	require.Equal(t, "/auth/login/", resp.Location)

	resp = c.post(ctx, "/auth/login/", url.Values{
		"username": {username},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode, resp.Body)
	require.Equal(t, "/notes/", resp.Location)

	return c
}
