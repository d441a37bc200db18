package sessionauthority

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/kubelearn/internal/cache"
	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/session"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/dmitrijs2005/kubelearn/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = identity.Identity{UserID: "u-1", Username: "alice", Role: models.RoleUser}

type fakeVerifier struct {
	id    identity.Identity
	err   error
	calls int
}

func (f *fakeVerifier) Verify(context.Context, string, string) (identity.Identity, error) {
	f.calls++
	return f.id, f.err
}

func (f *fakeVerifier) Register(context.Context, string, string) (identity.Identity, error) {
	f.calls++
	return f.id, f.err
}

type countingStore struct {
	*session.Store
	gets int
}

func (s *countingStore) Get(ctx context.Context, token string) (*session.Session, error) {
	s.gets++
	return s.Store.Get(ctx, token)
}

func newAuthority(t *testing.T, v *fakeVerifier) (*Authority, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	store := &countingStore{Store: session.NewStore(cache.NewNamespace(rdb, cache.SessionPrefix, 200*time.Millisecond), time.Hour, false)}
	return New(v, store, logging.Discard()), store, mr
}

func TestLogin_Success(t *testing.T) {
	a, _, mr := newAuthority(t, &fakeVerifier{id: alice})
	ctx := context.Background()

	sess, err := a.Login(ctx, "alice", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, alice, sess.Identity)
	assert.True(t, mr.Exists("session:"+sess.ID), "session is stored before Login returns")

	id, ok := a.Resolve(ctx, sess.ID)
	assert.True(t, ok)
	assert.Equal(t, alice, id)
}

func TestLogin_FailuresCreateNoSession(t *testing.T) {
	for _, verr := range []error{common.ErrInvalidCredentials, common.ErrUpstreamUnavailable} {
		a, _, mr := newAuthority(t, &fakeVerifier{err: verr})

		_, err := a.Login(context.Background(), "alice", "wrong", "")
		assert.ErrorIs(t, err, verr)
		assert.Empty(t, mr.Keys())
	}
}

func TestLogin_MissingFieldsSkipsVerifier(t *testing.T) {
	v := &fakeVerifier{id: alice}
	a, _, _ := newAuthority(t, v)

	_, err := a.Login(context.Background(), "alice", "", "")
	assert.Equal(t, common.CodeMissingFields, common.ValidationCode(err))
	assert.Equal(t, 0, v.calls)
}

func TestLogin_DestroysPreviousSession(t *testing.T) {
	a, _, mr := newAuthority(t, &fakeVerifier{id: alice})
	ctx := context.Background()

	first, err := a.Login(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	second, err := a.Login(ctx, "alice", "secret1", first.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, mr.Exists("session:"+first.ID))
	_, ok := a.Resolve(ctx, first.ID)
	assert.False(t, ok)
}

func TestRegister_LocalValidationBeforeUpstream(t *testing.T) {
	tests := []struct {
		name                        string
		username, password, confirm string
		code                        string
	}{
		{"missing username", "", "secret1", "secret1", common.CodeMissingFields},
		{"missing confirm", "alice", "secret1", "", common.CodeMissingFields},
		{"mismatch", "alice", "secret1", "secret2", common.CodePasswordMismatch},
		{"short password", "alice", "123", "123", common.CodePasswordTooShort},
		{"short username", "al", "secret1", "secret1", common.CodeUsernameTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeVerifier{id: alice}
			a, _, mr := newAuthority(t, v)

			_, err := a.Register(context.Background(), tt.username, tt.password, tt.confirm, "")
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.code, common.ValidationCode(err))
			assert.Equal(t, 0, v.calls, "no upstream call for invalid input")
			assert.Empty(t, mr.Keys())
		})
	}
}

func TestRegister_LogsIn(t *testing.T) {
	a, _, _ := newAuthority(t, &fakeVerifier{id: alice})

	sess, err := a.Register(context.Background(), "alice", "secret1", "secret1", "")
	require.NoError(t, err)

	id, ok := a.Resolve(context.Background(), sess.ID)
	assert.True(t, ok)
	assert.Equal(t, "alice", id.Username)
}

func TestRegister_UsernameTaken(t *testing.T) {
	a, _, mr := newAuthority(t, &fakeVerifier{err: common.ErrUsernameTaken})

	_, err := a.Register(context.Background(), "alice", "secret1", "secret1", "")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
	assert.Empty(t, mr.Keys())
}

func TestLogout(t *testing.T) {
	a, _, _ := newAuthority(t, &fakeVerifier{id: alice})
	ctx := context.Background()

	sess, err := a.Login(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	a.Logout(ctx, sess.ID)
	_, ok := a.Resolve(ctx, sess.ID)
	assert.False(t, ok)

	a.Logout(ctx, sess.ID)
	a.Logout(ctx, "")
	a.Logout(ctx, "garbage")
}

func TestResolve_MalformedTokenNoIO(t *testing.T) {
	a, store, _ := newAuthority(t, &fakeVerifier{})

	for _, tok := range []string{"", "abc", strings.Repeat("z", 64), strings.Repeat("a", 65)} {
		_, ok := a.Resolve(context.Background(), tok)
		assert.False(t, ok)
	}
	assert.Equal(t, 0, store.gets)
}

func TestResolve_StoreDownIsAnonymous(t *testing.T) {
	a, _, mr := newAuthority(t, &fakeVerifier{id: alice})
	sess, err := a.Login(context.Background(), "alice", "secret1", "")
	require.NoError(t, err)

	mr.Close()

	_, ok := a.Resolve(context.Background(), sess.ID)
	assert.False(t, ok)

	_, err = a.ResolveSession(context.Background(), sess.ID)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestLogin_StoreDownFails(t *testing.T) {
	a, _, mr := newAuthority(t, &fakeVerifier{id: alice})
	mr.Close()

	_, err := a.Login(context.Background(), "alice", "secret1", "")
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

// logoutRace destroys the session right after it was read, as a concurrent
// GET /logout would.
type logoutRace struct {
	*session.Store
}

func (s *logoutRace) Get(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.Store.Get(ctx, token)
	if err == nil {
		_ = s.Store.Destroy(ctx, token)
	}
	return sess, err
}

func TestResolveSession_SlidingDoesNotOutliveLogout(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	store := session.NewStore(cache.NewNamespace(rdb, cache.SessionPrefix, 200*time.Millisecond), time.Hour, true)
	a := New(&fakeVerifier{id: alice}, &logoutRace{Store: store}, logging.Discard())

	sess, err := a.Login(context.Background(), "alice", "secret1", "")
	require.NoError(t, err)

	_, err = a.ResolveSession(context.Background(), sess.ID)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.False(t, mr.Exists(cache.SessionPrefix+sess.ID))
}
