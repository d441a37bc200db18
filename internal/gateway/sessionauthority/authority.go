// Package sessionauthority decides who a browser is. It is the only code
// that mints or destroys sessions, and a session is only ever minted from an
// identity the Credential Verifier just returned.
package sessionauthority

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/gateway/session"
	"github.com/dmitrijs2005/kubelearn/internal/identity"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
)

type Verifier interface {
	Verify(ctx context.Context, username, password string) (identity.Identity, error)
	Register(ctx context.Context, username, password string) (identity.Identity, error)
}

type SessionStore interface {
	Create(ctx context.Context, id identity.Identity) (*session.Session, error)
	Get(ctx context.Context, token string) (*session.Session, error)
	Touch(ctx context.Context, sess *session.Session) error
	Destroy(ctx context.Context, token string) error
}

type Authority struct {
	verifier Verifier
	sessions SessionStore
	logger   logging.Logger
}

func New(verifier Verifier, sessions SessionStore, logger logging.Logger) *Authority {
	return &Authority{verifier: verifier, sessions: sessions, logger: logger.With("module", "session_authority")}
}

// Login verifies credentials and opens a session. previous is the token the
// browser already carried, if any; it is destroyed first so a planted token
// can never become authenticated.
func (a *Authority) Login(ctx context.Context, username, password, previous string) (*session.Session, error) {
	if username == "" || password == "" {
		return nil, common.NewValidationError(common.CodeMissingFields)
	}

	id, err := a.verifier.Verify(ctx, username, password)
	if err != nil {
		a.logFailure(ctx, "login failed", username, err)
		return nil, err
	}

	return a.open(ctx, id, previous)
}

// Register validates locally, creates the account and logs the new user in.
// No upstream call happens for input that fails validation.
func (a *Authority) Register(ctx context.Context, username, password, confirm, previous string) (*session.Session, error) {
	if username == "" || password == "" || confirm == "" {
		return nil, common.NewValidationError(common.CodeMissingFields)
	}
	if password != confirm {
		return nil, common.NewValidationError(common.CodePasswordMismatch)
	}
	if err := common.ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	id, err := a.verifier.Register(ctx, username, password)
	if err != nil {
		a.logFailure(ctx, "signup failed", username, err)
		return nil, err
	}

	a.logger.Info(ctx, "user registered", "user_id", id.UserID, "username", id.Username)
	return a.open(ctx, id, previous)
}

func (a *Authority) open(ctx context.Context, id identity.Identity, previous string) (*session.Session, error) {
	if previous != "" {
		if err := a.sessions.Destroy(ctx, previous); err != nil {
			a.logger.Warn(ctx, "previous session not destroyed", "error", err)
		}
	}

	sess, err := a.sessions.Create(ctx, id)
	if err != nil {
		a.logger.Error(ctx, "session not created", "user_id", id.UserID, "error", err)
		return nil, fmt.Errorf("%w: session store: %v", common.ErrUpstreamUnavailable, err)
	}

	a.logger.Info(ctx, "session created", "user_id", id.UserID, "role", id.Role)
	return sess, nil
}

// Logout destroys the session behind token. Missing and malformed tokens
// are a no-op; a store failure is logged and swallowed since the cookie is
// cleared regardless.
func (a *Authority) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := a.sessions.Destroy(ctx, token); err != nil {
		a.logger.Warn(ctx, "logout: session not destroyed", "error", err)
	}
}

// Resolve returns the identity behind token, if any.
func (a *Authority) Resolve(ctx context.Context, token string) (identity.Identity, bool) {
	sess, err := a.ResolveSession(ctx, token)
	if err != nil {
		return identity.Identity{}, false
	}
	return sess.Identity, true
}

// ResolveSession is Resolve with the reason for a failure:
// common.ErrUnauthenticated when the token is absent, malformed or expired,
// common.ErrUpstreamUnavailable when the store could not be asked. In the
// latter case the caller treats the browser as anonymous but keeps its
// cookie.
func (a *Authority) ResolveSession(ctx context.Context, token string) (*session.Session, error) {
	if token == "" || !session.ValidToken(token) {
		return nil, common.ErrUnauthenticated
	}

	sess, err := a.sessions.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, common.ErrUnauthenticated) {
			a.logger.Warn(ctx, "session lookup failed, treating as anonymous", "error", err)
		}
		return nil, err
	}

	if err := a.sessions.Touch(ctx, sess); err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			// destroyed by a concurrent logout or login
			return nil, err
		}
		a.logger.Warn(ctx, "session not extended", "user_id", sess.Identity.UserID, "error", err)
	}
	return sess, nil
}

func (a *Authority) logFailure(ctx context.Context, msg, username string, err error) {
	switch {
	case errors.Is(err, common.ErrUpstreamUnavailable):
		a.logger.Warn(ctx, msg, "username", username, "reason", "verifier unavailable", "error", err)
	default:
		a.logger.Info(ctx, msg, "username", username, "error", err)
	}
}
