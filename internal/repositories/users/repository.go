// Package users is the Credential Store access layer: the users table in
// PostgreSQL plus an in-memory implementation with the same semantics.
package users

import (
	"context"

	"github.com/dmitrijs2005/kubelearn/internal/models"
)

type Repository interface {
	// Create inserts user and fills ID and CreatedAt. It returns
	// common.ErrUsernameTaken when the username already exists; the check
	// and the insert are one atomic step.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// List returns all users, newest first.
	List(ctx context.Context) ([]models.User, error)
	// Delete returns common.ErrNotFound when no row was removed.
	Delete(ctx context.Context, id string) error
}
