package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is what a user may do in the plant.
type Role string

// Roles.
const (
	RoleDirector   Role = "director"
	RoleProduction Role = "production"
)

// User is the authenticated account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsDirector reports whether the user can see director reports.
func (u User) IsDirector() bool { return u.Role == RoleDirector }

// Token is an access/refresh token pair.
type Token struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Valid reports whether the token is present and unexpired at now.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// ExpiresWithin reports whether the token expires within d of now.
func (t Token) ExpiresWithin(now time.Time, d time.Duration) bool {
	return t.ExpiresAt.Sub(now) <= d
}

// Session is a user together with their token.
type Session struct {
	User  User  `json:"user"`
	Token Token `json:"token"`
}

// Valid reports whether the session can be used at now.
func (s Session) Valid(now time.Time) bool {
	return s.User.Username != "" && s.Token.Valid(now)
}

// MockTTL is the lifetime of tokens minted for offline use.
const MockTTL = time.Hour

// MockToken mints an offline token for username valid for MockTTL.
func MockToken(username string, now time.Time) Token {
	ms := now.UnixMilli()
	return Token{
		AccessToken:  fmt.Sprintf("mock_access_token_%s_%d", username, ms),
		RefreshToken: fmt.Sprintf("mock_refresh_token_%s_%d", username, ms),
		ExpiresAt:    now.Add(MockTTL),
	}
}

// MockUser builds an offline user. Usernames containing "director" or
// "diretor" get the director role.
func MockUser(username string, now time.Time) User {
	role := RoleProduction
	lower := strings.ToLower(username)
	if strings.Contains(lower, "director") || strings.Contains(lower, "diretor") {
		role = RoleDirector
	}
	return User{
		ID:       fmt.Sprintf("user_%s_%d", username, now.UnixMilli()),
		Username: username,
		Role:     role,
	}
}

// IsMock reports whether the token was minted by MockToken.
func (t Token) IsMock() bool {
	return strings.HasPrefix(t.AccessToken, "mock_access_token_")
}
