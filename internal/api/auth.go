package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sgmi/proddash/internal/auth"
	"github.com/sgmi/proddash/internal/production"
)

// MsgInvalidCredentials is shown when the backend rejects a login.
const MsgInvalidCredentials = "Usuário ou senha inválidos"

const opLogin = "login"

var _ auth.Backend = (*Client)(nil)

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds production.Credentials) (auth.Session, error) {
	var wire wireLogin
	if err := c.postData(ctx, PathLogin, creds, &wire); err != nil {
		msg := "Erro ao fazer login"
		if code := StatusCode(err); code == http.StatusUnauthorized || code == http.StatusBadRequest {
			msg = MsgInvalidCredentials
		}
		return auth.Session{}, wrap(opLogin, msg, err)
	}
	return auth.Session{
		User: auth.User{
			ID:       wire.User.ID,
			Username: wire.User.Username,
			Role:     auth.Role(wire.User.Role),
		},
		Token: wire.Token.token(),
	}, nil
}

// Refresh exchanges a refresh token for a new token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (auth.Token, error) {
	var wire wireToken
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.postData(ctx, PathRefresh, body, &wire); err != nil {
		return auth.Token{}, wrap("refresh token", "Erro ao renovar sessão", err)
	}
	return wire.token(), nil
}

func (w wireToken) token() auth.Token {
	return auth.Token{
		AccessToken:  w.AccessToken,
		RefreshToken: w.RefreshToken,
		ExpiresAt:    time.UnixMilli(w.ExpiresAt),
	}
}
