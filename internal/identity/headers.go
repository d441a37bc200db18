package identity

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/models"
)

const headerPrefix = "X-User-"

// Strip removes every X-User-* header. Clients must never be able to
// pre-populate identity metadata.
func Strip(h http.Header) {
	for k := range h {
		if strings.HasPrefix(http.CanonicalHeaderKey(k), headerPrefix) {
			delete(h, k)
		}
	}
}

// Attach strips h and then writes id as X-User-Id, X-User-Name and
// X-User-Role.
func Attach(h http.Header, id Identity) {
	Strip(h)
	h.Set(common.HeaderUserID, id.UserID)
	h.Set(common.HeaderUserName, id.Username)
	h.Set(common.HeaderUserRole, string(id.Role))
}

// FromHeaders reads the identity attached by the gateway. Both id and name
// are required; an unknown or missing role degrades to user.
func FromHeaders(h http.Header) (Identity, bool) {
	id := Identity{
		UserID:   h.Get(common.HeaderUserID),
		Username: h.Get(common.HeaderUserName),
	}
	if id.UserID == "" || id.Username == "" {
		return Identity{}, false
	}

	role, ok := models.ParseRole(h.Get(common.HeaderUserRole))
	if !ok {
		role = models.RoleUser
	}
	id.Role = role

	return id, true
}
