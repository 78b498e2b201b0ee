package fetch

import "time"

// State is a snapshot of a controller.
type State[T any] struct {
	// Data is the last successfully loaded value; nil until the first success.
	Data *T
	// Loading is true while a cycle is in flight.
	Loading bool
	// Err is the message of the last failed cycle, empty after a success.
	Err string
	// Token identifies the latest cycle started.
	Token uint64
	// UpdatedAt is when the last cycle completed.
	UpdatedAt time.Time
}

// HasData reports whether any cycle has succeeded.
func (s State[T]) HasData() bool { return s.Data != nil }

// Failed reports whether the last completed cycle failed.
func (s State[T]) Failed() bool { return s.Err != "" }

// initial is the state of a new controller: loading, no data, no error.
func initial[T any]() State[T] {
	return State[T]{Loading: true}
}

// started begins cycle token.
func started[T any](s State[T], token uint64) State[T] {
	s.Loading = true
	s.Err = ""
	s.Token = token
	return s
}

// succeeded commits data for token. Stale or already-completed tokens are ignored.
func succeeded[T any](s State[T], token uint64, data T, at time.Time) State[T] {
	if !s.accepts(token) {
		return s
	}
	s.Data = &data
	s.Loading = false
	s.Err = ""
	s.UpdatedAt = at
	return s
}

// failed commits an error for token and keeps Data untouched.
func failed[T any](s State[T], token uint64, msg string, at time.Time) State[T] {
	if !s.accepts(token) {
		return s
	}
	s.Loading = false
	s.Err = msg
	s.UpdatedAt = at
	return s
}

func (s State[T]) accepts(token uint64) bool {
	return s.Loading && token == s.Token
}
