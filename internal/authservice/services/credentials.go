// Package services implements the Credential Verifier: password checks and
// account creation against the Credential Store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/dbx"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/users"
	"github.com/dmitrijs2005/kubelearn/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

type Service struct {
	store        Store
	cost         int
	queryTimeout time.Duration
	dummyHash []byte
	logger    logging.Logger
}

// NewService prepares a hash of a random password at the configured cost.
// Verify compares against it when the user does not exist, so a miss costs
// the same as a wrong password. Every Credential Store call is bounded by
// queryTimeout; zero leaves only the caller's deadline.
func NewService(store Store, cost int, queryTimeout time.Duration, logger logging.Logger) (*Service, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	random, err := shared.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(random), cost)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:        store,
		cost:         cost,
		queryTimeout: queryTimeout,
		dummyHash:    dummy,
		logger:       logger.With("module", "credentials"),
	}, nil
}

// Verify returns the user when password matches. Unknown user and wrong
// password are the same error.
func (s *Service) Verify(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, common.NewValidationError(common.CodeMissingFields)
	}

	qctx, cancel := dbx.QueryContext(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.store.Users().GetByUsername(qctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.logger.Info(ctx, "verify failed", "username", username)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "verify lookup", "username", username, "error", err)
		return nil, storeError(err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error(ctx, "stored hash unusable", "user_id", user.ID, "error", err)
		}
		s.logger.Info(ctx, "verify failed", "username", username)
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// Create registers a user. The uniqueness check and the insert run in one
// transaction and the unique index settles races: of concurrent requests
// for one username exactly one succeeds.
func (s *Service) Create(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if err := common.ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}
	if _, ok := models.ParseRole(string(role)); !ok {
		return nil, common.NewValidationError(common.CodeInvalidRole)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %v", common.ErrInternal, err)
	}

	qctx, cancel := dbx.QueryContext(ctx, s.queryTimeout)
	defer cancel()

	var created *models.User
	err = s.store.InTx(qctx, func(ctx context.Context, repo users.Repository) error {
		if _, err := repo.GetByUsername(ctx, username); err == nil {
			return common.ErrUsernameTaken
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		u, err := repo.Create(ctx, &models.User{Username: username, PasswordHash: string(hash), Role: role})
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			s.logger.Info(ctx, "username taken", "username", username)
			return nil, common.ErrUsernameTaken
		}
		s.logger.Error(ctx, "create user", "username", username, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info(ctx, "user created", "user_id", created.ID, "username", username, "role", role)
	return created, nil
}

// storeError classifies a Credential Store failure. A query that ran out of
// time is an unavailable upstream, anything else is internal.
func storeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	return fmt.Errorf("%w: %v", common.ErrInternal, err)
}
