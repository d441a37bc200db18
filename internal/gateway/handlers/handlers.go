// Package handlers serves the endpoints the gateway answers itself: login,
// signup and logout, plus the middleware that resolves the session cookie
// on every request.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/session"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/gin-gonic/gin"
)

type Authority interface {
	Login(ctx context.Context, username, password, previous string) (*session.Session, error)
	Register(ctx context.Context, username, password, confirm, previous string) (*session.Session, error)
	Logout(ctx context.Context, token string)
	ResolveSession(ctx context.Context, token string) (*session.Session, error)
}

type Handler struct {
	auth    Authority
	cookie  CookieConfig
	sliding bool
	logger  logging.Logger
}

// NewHandler wires the auth endpoints. With sliding set, every resolved
// request re-issues the cookie with a fresh Max-Age.
func NewHandler(auth Authority, cookie CookieConfig, sliding bool, logger logging.Logger) *Handler {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = common.SessionLifetime
	}
	return &Handler{auth: auth, cookie: cookie, sliding: sliding, logger: logger.With("module", "gateway_handlers")}
}

type credentials struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

type loginResponse struct {
	Success  bool              `json:"success"`
	User     identity.Identity `json:"user"`
	Redirect string            `json:"redirect"`
}

// Session resolves the cookie into an identity for the rest of the chain.
// A cookie that names no live session is cleared; a store outage leaves it
// alone and the request continues anonymous.
func (h *Handler) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := h.cookie.read(c)
		if token == "" {
			c.Next()
			return
		}

		sess, err := h.auth.ResolveSession(c.Request.Context(), token)
		switch {
		case err == nil:
			identity.Install(c, sess.Identity)
			if h.sliding {
				h.cookie.set(c, sess.ID)
			}
		case errors.Is(err, common.ErrUnauthenticated):
			h.cookie.clear(c)
		}
		c.Next()
	}
}

// RequireSession answers 401 JSON for anonymous requests.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity.FromGin(c); !ok {
			httpx.AbortError(c, http.StatusUnauthorized, common.CodeUnauthenticated, "authentication required")
			return
		}
		c.Next()
	}
}

func (h *Handler) Login(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		h.loginFailed(c, common.NewValidationError(common.CodeMissingFields))
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), in.Username, in.Password, h.cookie.read(c))
	if err != nil {
		h.loginFailed(c, err)
		return
	}
	h.succeed(c, sess)
}

func (h *Handler) Signup(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		h.signupFailed(c, common.NewValidationError(common.CodeMissingFields))
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), in.Username, in.Password, in.ConfirmPassword, h.cookie.read(c))
	if err != nil {
		h.signupFailed(c, err)
		return
	}
	h.succeed(c, sess)
}

// Logout always clears the cookie and sends the browser home.
func (h *Handler) Logout(c *gin.Context) {
	h.auth.Logout(c.Request.Context(), h.cookie.read(c))
	h.cookie.clear(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) bind(c *gin.Context) (credentials, bool) {
	var in credentials
	var err error
	if httpx.WantsJSON(c) {
		err = c.ShouldBindJSON(&in)
	} else {
		err = c.ShouldBind(&in)
	}
	return in, err == nil
}

func (h *Handler) succeed(c *gin.Context, sess *session.Session) {
	h.cookie.set(c, sess.ID)

	target := sess.Identity.Home()
	if httpx.WantsJSON(c) {
		c.JSON(http.StatusOK, loginResponse{Success: true, User: sess.Identity, Redirect: target})
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) loginFailed(c *gin.Context, err error) {
	code := common.ValidationCode(err)
	status := http.StatusBadRequest
	if code == "" {
		// wrong password and verifier outage look the same from outside
		code = common.CodeLoginFailed
		status = http.StatusUnauthorized
	}
	h.fail(c, "/login", status, code)
}

func (h *Handler) signupFailed(c *gin.Context, err error) {
	code := common.ValidationCode(err)
	status := http.StatusBadRequest
	switch {
	case code != "":
	case errors.Is(err, common.ErrUsernameTaken):
		code = common.CodeUsernameTaken
		status = http.StatusConflict
	default:
		code = common.CodeSignupFailed
		status = http.StatusServiceUnavailable
	}
	h.fail(c, "/signup", status, code)
}

func (h *Handler) fail(c *gin.Context, page string, status int, code string) {
	if httpx.WantsJSON(c) {
		c.JSON(status, httpx.ErrorBody{Success: false, Code: code})
		return
	}
	c.Redirect(http.StatusFound, page+"?"+url.Values{"error": {code}}.Encode())
}
