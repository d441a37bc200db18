// Package handlers renders the public pages. It trusts only the identity
// headers the gateway attaches.
package handlers

import (
	"net/http"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/frontend/views"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	titleHome      = "KubeLearn | Master Kubernetes"
	titleDashboard = "Dashboard | KubeLearn"
	titleLogin     = "Login | KubeLearn"
	titleSignup    = "Signup | KubeLearn"
	titleNotFound  = "Not found | KubeLearn"
)

var errorMessages = map[string]string{
	common.CodeMissingFields:    "Please fill in every field.",
	common.CodePasswordMismatch: "Passwords do not match.",
	common.CodePasswordTooShort: "Password must be at least 6 characters.",
	common.CodePasswordTooLong:  "Password is too long.",
	common.CodeUsernameTooShort: "Username must be at least 3 characters.",
	common.CodeUsernameTooLong:  "Username is too long.",
	common.CodeUsernameTaken:    "That username is already taken.",
	common.CodeLoginFailed:      "Invalid username or password.",
	common.CodeSignupFailed:     "Sign up is unavailable right now, please try again.",
}

// ErrorMessage turns an error code from the query string into page text.
// Unknown codes get a generic message; the raw value is never echoed.
func ErrorMessage(code string) string {
	if code == "" {
		return ""
	}
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Something went wrong, please try again."
}

type page struct {
	Title       string
	Description string
	User        *identity.Identity
	Error       string
}

type Handler struct {
	verifier *identity.Verifier
	logger   logging.Logger
}

// NewHandler builds the page handlers. A nil verifier accepts bare identity
// headers.
func NewHandler(verifier *identity.Verifier, logger logging.Logger) *Handler {
	return &Handler{verifier: verifier, logger: logger.With("module", "frontend_handlers")}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", httpx.Health)

	withIdentity := identity.Middleware(h.verifier, h.logger)
	pages := r.Group("/", withIdentity)
	pages.GET("/", h.Home)
	pages.GET("/dashboard", h.Dashboard)
	pages.GET("/login", h.authPage(views.PageLogin, titleLogin))
	pages.GET("/signup", h.authPage(views.PageSignup, titleSignup))

	r.NoRoute(withIdentity, h.NotFound)
}

func current(c *gin.Context) *identity.Identity {
	id, ok := identity.FromGin(c)
	if !ok {
		return nil
	}
	return &id
}

func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, views.PageHome, page{
		Title:       titleHome,
		Description: "The modern platform to learn Kubernetes",
		User:        current(c),
	})
}

func (h *Handler) Dashboard(c *gin.Context) {
	user := current(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.HTML(http.StatusOK, views.PageDashboard, page{
		Title:       titleDashboard,
		Description: "Your personal learning dashboard.",
		User:        user,
	})
}

// authPage serves the login and signup forms. A browser that already has a
// session is sent to its landing page instead.
func (h *Handler) authPage(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := current(c); user != nil {
			c.Redirect(http.StatusFound, user.Home())
			return
		}
		c.HTML(http.StatusOK, name, page{
			Title: title,
			Error: ErrorMessage(c.Query("error")),
		})
	}
}

func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, views.PageNotFound, page{Title: titleNotFound})
}
