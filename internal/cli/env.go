package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/api"
	"github.com/sgmi/proddash/internal/auth"
	"github.com/sgmi/proddash/internal/config"
	"github.com/sgmi/proddash/internal/production"
)

// env bundles what data commands need: configuration, the session store,
// a backend client and a number formatter.
type env struct {
	cfg    *config.Config
	store  *auth.Store
	client *api.Client
	format *production.Formatter
}

// newEnv builds the backend client from the global config. Responses are
// cached per user when the cache is enabled.
func newEnv() (*env, error) {
	cfg := config.GetGlobalConfig()
	store := auth.NewStore(cfg.Auth.SessionFile)

	subject := ""
	if sess, err := store.Load(); err == nil {
		subject = sess.User.Username
	}

	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(store),
		api.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		fs, err := openCache(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("response cache unavailable, continuing without it")
		} else if fs.Enabled() {
			opts = append(opts, api.WithCache(fs, subject))
		}
	}

	client, err := api.New(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		store:  store,
		client: client,
		format: production.NewFormatter(cfg.Dashboard.Locale),
	}, nil
}

// authenticator returns an authenticator over the env's client and store.
func (e *env) authenticator(offline bool) *auth.Authenticator {
	return auth.NewAuthenticator(e.client, e.store, offline, logger)
}

// startRefresher keeps the stored token fresh until ctx is done.
func (e *env) startRefresher(ctx context.Context) {
	r := auth.NewRefresher(e.store, e.authenticator(false).Refresh,
		e.cfg.Auth.RefreshInterval, e.cfg.Auth.RefreshBuffer, logger)
	go r.Run(ctx)
}

// commandContext returns the command context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
