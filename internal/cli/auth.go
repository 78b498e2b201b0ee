package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/auth"
	"github.com/sgmi/proddash/internal/config"
	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/form"
	"github.com/sgmi/proddash/internal/production"
)

// Login form fields.
const (
	fieldUsername = "username"
	fieldPassword = "password"
)

const loginSuccessMessage = "Login realizado com sucesso!"

// NewLoginCmd authenticates and stores the session.
func NewLoginCmd() *cobra.Command {
	var username, password string
	var offline bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the production backend",
		Long: `Signs in and stores the session for later commands. Missing credentials
are prompted for; the password is read without echo on a terminal.

With --offline, an unreachable backend starts a local session instead of
failing, so the dashboard can be explored without a server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, err := newEnv()
			if err != nil {
				return err
			}

			p := newPrompter(cmd.OutOrStdout(), cmd.InOrStdin())
			if username == "" {
				if username, err = p.line("Usuário", ""); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.password("Senha"); err != nil {
					return err
				}
			}

			sess, err := login(ctx, e.authenticator(offline), username, password)
			if err != nil {
				return err
			}
			cmd.Println(loginSuccessMessage)
			cmd.Printf("Bem-vindo, %s (%s)\n", sess.User.Username, roleLabel(sess.User.Role))
			if sess.Token.IsMock() {
				cmd.Println("Sessão offline: o backend não respondeu.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&offline, "offline", false, "start a local session when the backend is unreachable")
	return cmd
}

// login submits credentials through a form so validation failures carry
// the field they belong to.
func login(ctx context.Context, a *auth.Authenticator, username, password string) (auth.Session, error) {
	var sess auth.Session
	state := form.New(map[string]string{fieldUsername: username, fieldPassword: password},
		func(ctx context.Context, v map[string]string) error {
			var err error
			sess, err = a.Login(ctx, production.Credentials{Username: v[fieldUsername], Password: v[fieldPassword]})
			return err
		}, loginSuccessMessage)

	if err := state.Submit(ctx); err != nil {
		fe := state.Err()
		if fe == nil {
			return auth.Session{}, err
		}
		logger.Debug().Ctx(ctx).Err(err).Str("field", fe.Field).Msg("login failed")
		if fe.Field != "" {
			return auth.Session{}, fmt.Errorf("%s: %s", fe.Field, fe.Message)
		}
		return auth.Session{}, errors.New(fe.Message)
	}
	return sess, nil
}

// NewLogoutCmd forgets the stored session.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.authenticator(false).Logout(commandContext(cmd)); err != nil {
				return err
			}
			cmd.Println("Sessão encerrada.")
			return nil
		},
	}
}

// whoamiOutput is the structured form of whoami.
type whoamiOutput struct {
	Username  string    `json:"username"  yaml:"username"`
	Role      auth.Role `json:"role"      yaml:"role"`
	ExpiresAt time.Time `json:"expiresAt" yaml:"expiresAt"`
	Offline   bool      `json:"offline"   yaml:"offline"`
}

// NewWhoamiCmd prints the signed-in user. It exits with ExitNotLoggedIn
// when there is no valid session.
func NewWhoamiCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := engine.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			store := auth.NewStore(config.GetGlobalConfig().Auth.SessionFile)
			sess, err := store.Load()
			if errors.Is(err, auth.ErrNoSession) || (err == nil && !sess.Valid(time.Now())) {
				return &ExitError{Code: ExitNotLoggedIn, Err: auth.ErrNoSession}
			}
			if err != nil {
				return err
			}

			out := whoamiOutput{
				Username:  sess.User.Username,
				Role:      sess.User.Role,
				ExpiresAt: sess.Token.ExpiresAt,
				Offline:   sess.Token.IsMock(),
			}
			return renderValue(cmd, format, out, func() error {
				cmd.Printf("%s (%s)\n", out.Username, roleLabel(out.Role))
				cmd.Printf("Sessão expira em %s\n", time.Until(out.ExpiresAt).Round(time.Second))
				if out.Offline {
					cmd.Println("Sessão offline")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json, yaml, ndjson")
	return cmd
}

func roleLabel(r auth.Role) string {
	if r == auth.RoleDirector {
		return "Diretor"
	}
	return "Produção"
}

