package account_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containercalc/containercalc/modules/account"
)

func newTestServer(t *testing.T) (*httptest.Server, *fixture) {
	t.Helper()
	f := newFixture(t)
	srv := httptest.NewServer(account.Router(f.svc, nil))
	t.Cleanup(srv.Close)
	return srv, f
}

func postJSON(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func TestRouter_SignUpFlow(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/signup",
		`{"email":"u1@example.com","password":"correct-horse","name":"U One","company":"Acme"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie, "sign-up must set the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	// The issued cookie resolves on the session endpoint.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/session", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	sessResp, err := client.Do(req)
	require.NoError(t, err)
	defer sessResp.Body.Close()

	assert.Equal(t, http.StatusOK, sessResp.StatusCode)
	assert.Equal(t, "no-store", sessResp.Header.Get("Cache-Control"))
	body := readBody(t, sessResp)
	assert.Contains(t, body, `"u1@example.com"`)
}

func TestRouter_SignUpValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := srv.Client()

	t.Run("bad email", func(t *testing.T) {
		t.Parallel()
		resp := postJSON(t, client, srv.URL+"/signup", `{"email":"nope","password":"correct-horse"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("short password", func(t *testing.T) {
		t.Parallel()
		resp := postJSON(t, client, srv.URL+"/signup", `{"email":"u2@example.com","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		resp := postJSON(t, client, srv.URL+"/signup", `{`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRouter_SignIn(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/signup", `{"email":"u1@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		resp := postJSON(t, client, srv.URL+"/signin", `{"email":"u1@example.com","password":"correct-horse"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotNil(t, sessionCookie(t, resp))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		resp := postJSON(t, client, srv.URL+"/signin", `{"email":"u1@example.com","password":"wrong-pass"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "Invalid email or password")
	})

	t.Run("duplicate sign up", func(t *testing.T) {
		t.Parallel()
		resp := postJSON(t, client, srv.URL+"/signup", `{"email":"u1@example.com","password":"correct-horse"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestRouter_AnonymousSession(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/session")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"user":null}`, readBody(t, resp))
}

func TestRouter_SignOut(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/signup", `{"email":"u1@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/signout", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	outResp, err := client.Do(req)
	require.NoError(t, err)
	defer outResp.Body.Close()

	assert.Equal(t, http.StatusOK, outResp.StatusCode)
	cleared := sessionCookie(t, outResp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// The revoked cookie no longer resolves.
	sessReq, err := http.NewRequest(http.MethodGet, srv.URL+"/session", nil)
	require.NoError(t, err)
	sessReq.AddCookie(cookie)
	sessResp, err := client.Do(sessReq)
	require.NoError(t, err)
	defer sessResp.Body.Close()
	assert.JSONEq(t, `{"user":null}`, readBody(t, sessResp))
}

func TestRouter_ResetPassword(t *testing.T) {
	t.Parallel()

	srv, f := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/signup", `{"email":"u1@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("request accepts known and unknown emails alike", func(t *testing.T) {
		resp := postJSON(t, client, srv.URL+"/reset-password", `{"email":"u1@example.com"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = postJSON(t, client, srv.URL+"/reset-password", `{"email":"nobody@example.com"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("confirm with mailed token", func(t *testing.T) {
		resp := postJSON(t, client, srv.URL+"/reset-password", `{"email":"u1@example.com"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		msg, ok := f.mailer.last()
		require.True(t, ok)
		token := extractResetToken(t, msg.BodyHTML)

		resp = postJSON(t, client, srv.URL+"/reset-password/confirm",
			`{"token":"`+token+`","password":"battery-staple"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = postJSON(t, client, srv.URL+"/signin", `{"email":"u1@example.com","password":"battery-staple"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("confirm rejects garbage token", func(t *testing.T) {
		resp := postJSON(t, client, srv.URL+"/reset-password/confirm",
			`{"token":"garbage","password":"battery-staple"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("request requires valid email", func(t *testing.T) {
		resp := postJSON(t, client, srv.URL+"/reset-password", `{"email":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
