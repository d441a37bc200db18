package identity

import (
	"net/http"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/httpx"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/gin-gonic/gin"
)

const ginKey = "identity"

// Middleware decodes the identity headers into the request context. With a
// non-nil verifier a request whose assertion does not match is treated as
// anonymous. It never rejects on its own; see RequireIdentity.
func Middleware(v *Verifier, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromHeaders(c.Request.Header)
		if ok && v != nil {
			if err := v.Verify(c.GetHeader(common.HeaderUserAssertion), id); err != nil {
				logger.Warn(c.Request.Context(), "identity assertion rejected",
					"user_id", id.UserID, "error", err)
				ok = false
			}
		}

		if ok {
			Install(c, id)
		}
		c.Next()
	}
}

// Install makes id visible to FromGin and to FromContext on the request
// context.
func Install(c *gin.Context, id Identity) {
	c.Set(ginKey, id)
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), id))
}

// FromGin returns the identity installed by Middleware.
func FromGin(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromGin(c); !ok {
			httpx.AbortError(c, http.StatusUnauthorized, common.CodeUnauthenticated, "authentication required")
			return
		}
		c.Next()
	}
}

func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromGin(c)
		if !ok {
			httpx.AbortError(c, http.StatusUnauthorized, common.CodeUnauthenticated, "authentication required")
			return
		}
		if id.Role != role {
			httpx.AbortError(c, http.StatusForbidden, common.CodeForbidden, "insufficient role")
			return
		}
		c.Next()
	}
}
