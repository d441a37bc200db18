// Package directory is the cache-aside read path over the users table.
//
// Reads try the Shared Cache first and fall back to the Credential Store.
// Writes go to the Credential Store first and then invalidate the cached
// listing, never the other way round: invalidating first would let a
// concurrent reader repopulate the cache from the row about to be deleted.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/dbx"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/dmitrijs2005/kubelearn/internal/repositories/users"
	"github.com/sethvargo/go-retry"
)

// ListKey is the directory-namespace key holding the full listing.
const ListKey = "users:all"

const (
	SourceCache  = "cache"
	SourceOrigin = "origin"
)

// Cache is the subset of cache.Namespace used here.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Listing struct {
	Source string              `json:"source"`
	Data   []models.PublicUser `json:"data"`
}

type Options struct {
	TTL               time.Duration
	QueryTimeout      time.Duration
	InvalidateRetries uint64
	InvalidateBackoff time.Duration
}

func DefaultOptions() Options {
	return Options{
		TTL:               5 * time.Minute,
		QueryTimeout:      3 * time.Second,
		InvalidateRetries: 3,
		InvalidateBackoff: 50 * time.Millisecond,
	}
}

type Service struct {
	repo   users.Repository
	cache  Cache
	opts   Options
	logger logging.Logger
}

func NewService(repo users.Repository, cache Cache, opts Options, logger logging.Logger) *Service {
	return &Service{repo: repo, cache: cache, opts: opts, logger: logger.With("module", "directory")}
}

// ListUsers returns every user, newest first. Any cache problem falls back
// to the origin; only an origin failure fails the call.
func (s *Service) ListUsers(ctx context.Context) (*Listing, error) {
	if data, ok := s.fromCache(ctx); ok {
		return &Listing{Source: SourceCache, Data: data}, nil
	}

	qctx, cancel := dbx.QueryContext(ctx, s.opts.QueryTimeout)
	defer cancel()

	rows, err := s.repo.List(qctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", common.ErrUpstreamUnavailable, err)
	}

	data := make([]models.PublicUser, 0, len(rows))
	for i := range rows {
		data = append(data, rows[i].Public())
	}

	s.populate(ctx, data)

	return &Listing{Source: SourceOrigin, Data: data}, nil
}

func (s *Service) fromCache(ctx context.Context) ([]models.PublicUser, bool) {
	raw, err := s.cache.Get(ctx, ListKey)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			s.logger.Warn(ctx, "directory cache read failed", "error", err)
		}
		return nil, false
	}

	var data []models.PublicUser
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		s.logger.Warn(ctx, "directory cache entry unreadable", "error", err)
		return nil, false
	}
	return data, true
}

func (s *Service) populate(ctx context.Context, data []models.PublicUser) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn(ctx, "directory cache encode failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, ListKey, raw, s.opts.TTL); err != nil {
		s.logger.Warn(ctx, "directory cache write failed", "error", err)
	}
}

// GetUser reads one user from the origin.
func (s *Service) GetUser(ctx context.Context, id string) (*models.PublicUser, error) {
	qctx, cancel := dbx.QueryContext(ctx, s.opts.QueryTimeout)
	defer cancel()

	u, err := s.repo.GetByID(qctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get user: %v", common.ErrUpstreamUnavailable, err)
	}

	pu := u.Public()
	return &pu, nil
}

// DeleteUser removes a user and then invalidates the cached listing before
// returning. Callers other than admins are refused before the origin is
// touched. When invalidation keeps failing the row is still gone and
// common.ErrCacheInvalidation is returned.
func (s *Service) DeleteUser(ctx context.Context, id string, callerRole models.Role) error {
	if callerRole != models.RoleAdmin {
		return common.ErrForbidden
	}

	qctx, cancel := dbx.QueryContext(ctx, s.opts.QueryTimeout)
	err := s.repo.Delete(qctx, id)
	cancel()
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: delete user: %v", common.ErrUpstreamUnavailable, err)
	}

	if err := s.invalidate(ctx); err != nil {
		s.logger.Error(ctx, "directory invalidation failed", "user_id", id, "error", err)
		return fmt.Errorf("%w: %v", common.ErrCacheInvalidation, err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *Service) invalidate(ctx context.Context) error {
	base := s.opts.InvalidateBackoff
	if base <= 0 {
		base = DefaultOptions().InvalidateBackoff
	}
	b := retry.NewExponential(base)
	b = retry.WithMaxRetries(s.opts.InvalidateRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.cache.Delete(ctx, ListKey); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
