// Package session persists browser sessions in the session namespace of the
// Shared Cache. A session is keyed by an opaque 256-bit random token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/shared"
)

// TokenBytes is the entropy of a session token; the cookie carries it hex
// encoded.
const TokenBytes = 32

type Session struct {
	ID        string            `json:"-"`
	Identity  identity.Identity `json:"identity"`
	CreatedAt time.Time         `json:"createdAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Backend is the subset of cache.Namespace used by the store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetXX(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	backend Backend
	ttl     time.Duration
	sliding bool
	now     func() time.Time
}

// NewStore returns a store issuing sessions of lifetime ttl. With sliding
// set, Touch pushes the expiry forward on every use.
func NewStore(backend Backend, ttl time.Duration, sliding bool) *Store {
	if ttl <= 0 {
		ttl = common.SessionLifetime
	}
	return &Store{backend: backend, ttl: ttl, sliding: sliding, now: time.Now}
}

func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) Sliding() bool { return s.sliding }

// ValidToken reports whether token is well formed. It does no I/O.
func ValidToken(token string) bool {
	return shared.IsHexToken(token, TokenBytes)
}

// Create mints a fresh token for id and persists the session. The write has
// completed when Create returns.
func (s *Store) Create(ctx context.Context, id identity.Identity) (*Session, error) {
	token, err := shared.MakeRandHexString(TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}

	now := s.now().UTC()
	sess := &Session{ID: token, Identity: id, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	if err := s.save(ctx, sess, now, s.backend.Set); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session. Malformed, unknown and expired tokens all yield
// common.ErrUnauthenticated; backend failures wrap
// common.ErrUpstreamUnavailable.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	if !ValidToken(token) {
		return nil, common.ErrUnauthenticated
	}

	raw, err := s.backend.Get(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrCacheMiss) {
			return nil, common.ErrUnauthenticated
		}
		return nil, err
	}

	sess := &Session{}
	if err := json.Unmarshal(raw, sess); err != nil || !sess.Identity.Valid() {
		return nil, common.ErrUnauthenticated
	}
	sess.ID = token

	if !s.now().Before(sess.ExpiresAt) {
		return nil, common.ErrUnauthenticated
	}
	return sess, nil
}

// Touch extends a session by the full lifetime. It is a no-op unless the
// store is sliding. A session destroyed since it was read stays destroyed:
// Touch then returns common.ErrUnauthenticated.
func (s *Store) Touch(ctx context.Context, sess *Session) error {
	if !s.sliding {
		return nil
	}
	now := s.now().UTC()
	sess.ExpiresAt = now.Add(s.ttl)

	err := s.save(ctx, sess, now, s.backend.SetXX)
	if errors.Is(err, common.ErrCacheMiss) {
		return common.ErrUnauthenticated
	}
	return err
}

// Destroy deletes a session. Malformed tokens are ignored.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if !ValidToken(token) {
		return nil
	}
	return s.backend.Delete(ctx, token)
}

type writeFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error

func (s *Store) save(ctx context.Context, sess *Session, now time.Time, write writeFunc) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := sess.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return common.ErrUnauthenticated
	}
	return write(ctx, sess.ID, raw, ttl)
}
