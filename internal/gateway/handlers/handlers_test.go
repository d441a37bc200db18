package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/session"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var (
	alice = identity.Identity{UserID: "u-1", Username: "alice", Role: models.RoleUser}
	root  = identity.Identity{UserID: "u-0", Username: "root", Role: models.RoleAdmin}
)

type fakeAuthority struct {
	id         identity.Identity
	err        error
	resolveErr error
	previous   string
	loggedOut  string
}

func (f *fakeAuthority) sess() *session.Session {
	return &session.Session{ID: token, Identity: f.id, ExpiresAt: time.Now().Add(time.Hour)}
}

func (f *fakeAuthority) Login(_ context.Context, _, _, previous string) (*session.Session, error) {
	f.previous = previous
	if f.err != nil {
		return nil, f.err
	}
	return f.sess(), nil
}

func (f *fakeAuthority) Register(_ context.Context, _, _, _, previous string) (*session.Session, error) {
	return f.Login(context.Background(), "", "", previous)
}

func (f *fakeAuthority) Logout(_ context.Context, tok string) {
	f.loggedOut = tok
}

func (f *fakeAuthority) ResolveSession(_ context.Context, tok string) (*session.Session, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if tok != token {
		return nil, common.ErrUnauthenticated
	}
	return f.sess(), nil
}

func newRouter(auth Authority, sliding bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(auth, CookieConfig{Name: "sid", Secure: true, MaxAge: time.Hour}, sliding, logging.Discard())

	r := httpx.NewEngine(logging.Discard())
	r.Use(h.Session())
	r.POST("/login", h.Login)
	r.POST("/signup", h.Signup)
	r.GET("/logout", h.Logout)
	r.GET("/whoami", RequireSession(), func(c *gin.Context) {
		id, _ := identity.FromGin(c)
		c.String(http.StatusOK, id.Username)
	})
	return r
}

func form(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestLogin_FormRedirectsByRole(t *testing.T) {
	tests := []struct {
		id       identity.Identity
		location string
	}{
		{alice, "/"},
		{root, "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.id.Username, func(t *testing.T) {
			r := newRouter(&fakeAuthority{id: tt.id}, false)
			w := serve(r, form("/login", url.Values{"username": {tt.id.Username}, "password": {"secret1"}}))

			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))

			c := cookie(t, w)
			assert.Equal(t, token, c.Value)
			assert.True(t, c.HttpOnly)
			assert.True(t, c.Secure)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			assert.Equal(t, "/", c.Path)
			assert.Equal(t, 3600, c.MaxAge)
		})
	}
}

func TestLogin_JSON(t *testing.T) {
	r := newRouter(&fakeAuthority{id: root}, false)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"root","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, root, body.User)
	assert.Equal(t, "/dashboard", body.Redirect)
	assert.NotContains(t, w.Body.String(), token)
}

func TestLogin_PassesPreviousToken(t *testing.T) {
	auth := &fakeAuthority{id: alice}
	r := newRouter(auth, false)

	req := form("/login", url.Values{"username": {"alice"}, "password": {"secret1"}})
	req.AddCookie(&http.Cookie{Name: "sid", Value: "planted"})
	serve(r, req)

	assert.Equal(t, "planted", auth.previous)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		location string
	}{
		{"bad password", common.ErrInvalidCredentials, http.StatusUnauthorized, "/login?error=login_failed"},
		{"verifier down", common.ErrUpstreamUnavailable, http.StatusUnauthorized, "/login?error=login_failed"},
		{"missing fields", common.NewValidationError(common.CodeMissingFields), http.StatusBadRequest, "/login?error=missing_fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakeAuthority{err: tt.err}, false)

			w := serve(r, form("/login", url.Values{"username": {"alice"}, "password": {"x"}}))
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
			assert.Empty(t, w.Result().Cookies())

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			w = serve(r, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSignup_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"mismatch", common.NewValidationError(common.CodePasswordMismatch), http.StatusBadRequest, common.CodePasswordMismatch},
		{"taken", common.ErrUsernameTaken, http.StatusConflict, common.CodeUsernameTaken},
		{"upstream", common.ErrUpstreamUnavailable, http.StatusServiceUnavailable, common.CodeSignupFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakeAuthority{err: tt.err}, false)

			w := serve(r, form("/signup", url.Values{"username": {"alice"}, "password": {"secret1"}, "confirmPassword": {"secret1"}}))
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/signup?error="+tt.code, w.Header().Get("Location"))

			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"username":"alice","password":"secret1","confirmPassword":"secret1"}`))
			req.Header.Set("Content-Type", "application/json")
			w = serve(r, req)
			assert.Equal(t, tt.status, w.Code)

			var body httpx.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestSignup_LogsIn(t *testing.T) {
	r := newRouter(&fakeAuthority{id: alice}, false)

	w := serve(r, form("/signup", url.Values{"username": {"alice"}, "password": {"secret1"}, "confirmPassword": {"secret1"}}))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, token, cookie(t, w).Value)
}

func TestLogout(t *testing.T) {
	auth := &fakeAuthority{id: alice}
	r := newRouter(auth, false)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	w := serve(r, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, token, auth.loggedOut)
	assert.Equal(t, -1, cookie(t, w).MaxAge)

	again := httptest.NewRequest(http.MethodGet, "/logout", nil)
	again.AddCookie(&http.Cookie{Name: "sid", Value: token})
	w = serve(r, again)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestSession(t *testing.T) {
	t.Run("valid cookie resolves", func(t *testing.T) {
		r := newRouter(&fakeAuthority{id: alice}, false)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("sliding re-issues cookie", func(t *testing.T) {
		r := newRouter(&fakeAuthority{id: alice}, true)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3600, cookie(t, w).MaxAge)
	})

	t.Run("dead cookie is cleared", func(t *testing.T) {
		r := newRouter(&fakeAuthority{id: alice}, false)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "stale"})
		w := serve(r, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, -1, cookie(t, w).MaxAge)
	})

	t.Run("store outage keeps cookie", func(t *testing.T) {
		r := newRouter(&fakeAuthority{id: alice, resolveErr: common.ErrUpstreamUnavailable}, false)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
		w := serve(r, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("no cookie is anonymous", func(t *testing.T) {
		r := newRouter(&fakeAuthority{id: alice}, false)
		w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body httpx.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, common.CodeUnauthenticated, body.Code)
	})
}
