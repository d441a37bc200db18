// Package identity describes who a request acts for and how that travels
// from the gateway to the downstream services: request headers, an optional
// signed assertion and the request context.
package identity

import (
	"context"

	"github.com/dmitrijs2005/kubelearn/internal/models"
)

// Identity is the verified subject of a session. It never carries a
// password hash.
type Identity struct {
	UserID   string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func FromUser(u *models.User) Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Home is where a freshly authenticated browser lands.
func (i Identity) Home() string {
	if i.IsAdmin() {
		return "/dashboard"
	}
	return "/"
}

// Valid reports whether every field is set and the role is known.
func (i Identity) Valid() bool {
	_, ok := models.ParseRole(string(i.Role))
	return ok && i.UserID != "" && i.Username != ""
}

type ctxKey string

const identityKey ctxKey = "identity"

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
