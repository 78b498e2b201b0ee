package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sgmi/proddash/internal/logging"
	"github.com/sgmi/proddash/internal/production"
)

// Backend is the server side of authentication.
type Backend interface {
	Login(ctx context.Context, creds production.Credentials) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Token, error)
}

// Authenticator logs users in and out, keeping the session in a Store.
// With offline mode enabled, an unreachable backend yields a mock session.
type Authenticator struct {
	backend Backend
	store   *Store
	offline bool
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAuthenticator returns an authenticator. backend may be nil when only
// offline sessions are wanted.
func NewAuthenticator(backend Backend, store *Store, offline bool, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		backend: backend,
		store:   store,
		offline: offline,
		logger:  logging.ComponentLogger(logger, "auth"),
		now:     time.Now,
	}
}

// Store returns the session store.
func (a *Authenticator) Store() *Store { return a.store }

// Login validates creds, authenticates against the backend and stores the
// resulting session.
func (a *Authenticator) Login(ctx context.Context, creds production.Credentials) (Session, error) {
	if err := creds.Validate(); err != nil {
		return Session{}, err
	}

	var (
		sess Session
		err  error
	)
	if a.backend != nil {
		sess, err = a.backend.Login(ctx, creds)
	} else {
		err = errBackendMissing
	}
	if err != nil {
		if !a.offline || !Unavailable(err) {
			return Session{}, fmt.Errorf("login: %w", err)
		}
		a.logger.Warn().Ctx(ctx).Err(err).Str("username", creds.Username).
			Msg("backend unavailable, starting offline session")
		now := a.now()
		sess = Session{User: MockUser(creds.Username, now), Token: MockToken(creds.Username, now)}
	}

	if err := a.store.Save(sess); err != nil {
		return Session{}, err
	}
	a.logger.Info().Ctx(ctx).Str("username", sess.User.Username).Str("role", string(sess.User.Role)).
		Msg("logged in")
	return sess, nil
}

// Logout forgets the stored session.
func (a *Authenticator) Logout(ctx context.Context) error {
	a.logger.Info().Ctx(ctx).Msg("logged out")
	return a.store.Clear()
}

// Refresh implements RefreshFunc. Offline tokens are re-minted locally.
func (a *Authenticator) Refresh(ctx context.Context, current Session) (Token, error) {
	if current.Token.IsMock() || a.backend == nil {
		return MockToken(current.User.Username, a.now()), nil
	}
	return a.backend.Refresh(ctx, current.Token.RefreshToken)
}

var errBackendMissing = unavailableError{errors.New("no authentication backend configured")}

type unavailableError struct{ error }

func (unavailableError) Unavailable() bool { return true }

// Unavailable reports whether err means the backend could not be reached,
// as opposed to rejecting the request.
func Unavailable(err error) bool {
	var u interface{ Unavailable() bool }
	return errors.As(err, &u) && u.Unavailable()
}
