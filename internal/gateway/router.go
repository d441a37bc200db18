package gateway

import (
	"net/http"
	"path"
	"strings"

	"github.com/dmitrijs2005/kubelearn/internal/gateway/handlers"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/gin-gonic/gin"
)

// Target is the component a request is routed to.
type Target int

const (
	TargetAuth Target = iota
	TargetDirectory
	TargetRenderer
)

func (t Target) String() string {
	switch t {
	case TargetAuth:
		return "auth"
	case TargetDirectory:
		return "directory"
	default:
		return "renderer"
	}
}

type rule struct {
	prefix string
	target Target
}

// routingTable is matched top to bottom; auth paths come first.
var routingTable = []rule{
	{"/logout", TargetAuth},
	{"/login", TargetAuth},
	{"/signup", TargetAuth},
	{"/api/", TargetDirectory},
	{"/", TargetRenderer},
}

// Classify returns the target for a cleaned URL path. Prefixes match on
// segment boundaries: /login matches /login and /login/x but not /loginx.
func Classify(p string) Target {
	for _, r := range routingTable {
		if matchPrefix(p, r.prefix) {
			return r.target
		}
	}
	return TargetRenderer
}

func matchPrefix(p, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if strings.HasSuffix(prefix, "/") {
		return p == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(p, prefix)
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// cleanPath is path.Clean that keeps a trailing slash.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// NewRouter assembles the gateway. Terminal auth endpoints are answered
// here; everything else is classified and forwarded.
func NewRouter(h *handlers.Handler, renderer, directory http.Handler, logger logging.Logger) *gin.Engine {
	r := httpx.NewEngine(logger)
	r.Use(h.Session())

	r.GET("/health", httpx.Health)
	r.POST("/login", h.Login)
	r.POST("/signup", h.Signup)
	r.GET("/logout", h.Logout)

	toDirectory := gin.WrapH(directory)
	api := r.Group("/api", handlers.RequireSession())
	api.GET("/users", toDirectory)
	api.DELETE("/users/:id", identity.RequireRole(models.RoleAdmin), toDirectory)

	r.NoRoute(dispatch(renderer, directory))
	return r
}

// dispatch forwards anything without an explicit route. Non-terminal
// methods on auth paths (GET /login, GET /signup) are pages and go to the
// renderer.
func dispatch(renderer, directory http.Handler) gin.HandlerFunc {
	requireSession := handlers.RequireSession()

	return func(c *gin.Context) {
		raw := c.Request.URL.Path
		if p := cleanPath(raw); p != raw {
			u := *c.Request.URL
			u.Path = p
			u.RawPath = ""
			c.Redirect(http.StatusMovedPermanently, u.RequestURI())
			return
		}

		switch Classify(raw) {
		case TargetDirectory:
			requireSession(c)
			if c.IsAborted() {
				return
			}
			directory.ServeHTTP(c.Writer, c.Request)
		default:
			renderer.ServeHTTP(c.Writer, c.Request)
		}
	}
}
