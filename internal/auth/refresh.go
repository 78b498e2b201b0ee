package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sgmi/proddash/internal/logging"
)

// Refresh timing.
const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultRefreshBuffer   = 10 * time.Minute
)

// RefreshFunc exchanges a session's refresh token for a new token.
type RefreshFunc func(ctx context.Context, current Session) (Token, error)

// Refresher renews the stored token shortly before it expires.
type Refresher struct {
	store    *Store
	refresh  RefreshFunc
	interval time.Duration
	buffer   time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRefresher checks the stored token every interval and refreshes it when
// it expires within buffer. Zero durations use the defaults.
func NewRefresher(store *Store, refresh RefreshFunc, interval, buffer time.Duration, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if buffer <= 0 {
		buffer = DefaultRefreshBuffer
	}
	return &Refresher{
		store:    store,
		refresh:  refresh,
		interval: interval,
		buffer:   buffer,
		logger:   logging.ComponentLogger(logger, "auth"),
		now:      time.Now,
	}
}

// Run checks the token on every tick until ctx is done. Failed refreshes
// are logged and retried on the next tick.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Check(ctx); err != nil && !errors.Is(err, ErrNoSession) {
				r.logger.Error().Ctx(ctx).Err(err).Msg("automatic token refresh failed")
			}
		}
	}
}

// Check refreshes the stored token if it is close to expiry and reports
// whether it did.
func (r *Refresher) Check(ctx context.Context) (bool, error) {
	sess, err := r.store.Load()
	if err != nil {
		return false, err
	}
	if !sess.Token.ExpiresWithin(r.now(), r.buffer) {
		return false, nil
	}

	tok, err := r.refresh(ctx, sess)
	if err != nil {
		return false, err
	}
	sess.Token = tok
	if err := r.store.Save(sess); err != nil {
		return false, err
	}
	r.logger.Debug().Ctx(ctx).Time("expires_at", tok.ExpiresAt).Msg("token refreshed")
	return true, nil
}
