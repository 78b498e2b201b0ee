package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached response.
type Entry struct {
	// Key is the hash returned by GenerateKey.
	Key string `json:"key"`

	// Endpoint is the API path the response came from, kept for debugging.
	Endpoint string `json:"endpoint,omitempty"`

	// Data is the decoded response payload.
	Data json.RawMessage `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at now.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Age is how long ago the entry was written.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Remaining is the time left before expiry, never negative.
func (e *Entry) Remaining(now time.Time) time.Duration {
	return max(e.ExpiresAt.Sub(now), 0)
}

// Decode unmarshals the payload into v.
func (e *Entry) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}
