// Package api is the HTTP client for the production backend.
//
// Responses arrive wrapped in a {"data": ...} envelope with snake_case
// fields; the client unwraps them into production types. Reads can be
// served from the on-disk response cache, and every failure is returned as
// an *Error carrying a message fit to show the user.
package api
