// Package auth keeps the logged-in user's session on disk and refreshes
// the access token before it expires.
package auth
