// Package fetch turns an asynchronous data source into explicit
// loading, error and data state with user-triggered retry.
//
// A Controller runs its source on demand. Every cycle gets a request token;
// only the result of the latest token is committed, so a slow response can
// never overwrite a newer one. Each cycle also waits for a minimum latency
// floor that runs concurrently with the source, giving the UI a visible,
// consistent loading phase even for fast responses.
//
// On failure the controller records a single human-readable message and
// keeps the last good data so callers can keep showing it.
package fetch
