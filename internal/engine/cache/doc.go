// Package cache keeps backend API responses on disk for a short time.
//
// Responses are stored as one JSON file per key under the configured
// directory (default ~/.proddash/cache). Keys are SHA256 hashes of the
// endpoint, its query parameters and the session subject, so two users on
// the same machine never share entries. Entries expire after a TTL taken
// from config or PRODDASH_CACHE_TTL_SECONDS; Prune drops expired entries
// and evicts the oldest ones once the directory exceeds its size budget.
package cache
