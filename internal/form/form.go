// Package form tracks the state of a submit-once form: its values, the
// current error or success message, and whether a submission is running.
package form

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/sgmi/proddash/internal/production"
)

// Messages.
const (
	DefaultSuccessMessage = "Operação realizada com sucesso!"
	UnexpectedError       = "Erro inesperado"
)

// ErrSubmitting is returned when Submit is called while a submission runs.
var ErrSubmitting = errors.New("form is already submitting")

// FieldError is the error shown on the form, optionally tied to a field.
type FieldError struct {
	Message string
	Field   string
}

// SubmitFunc receives a copy of the values on submit.
type SubmitFunc func(ctx context.Context, values map[string]string) error

// State is the form state. The zero value is not usable; use New.
type State struct {
	mu         sync.Mutex
	initial    map[string]string
	values     map[string]string
	err        *FieldError
	success    string
	submitting bool

	onSubmit       SubmitFunc
	successMessage string
}

// New returns a form holding initial values. An empty successMessage uses
// DefaultSuccessMessage.
func New(initial map[string]string, onSubmit SubmitFunc, successMessage string) *State {
	if successMessage == "" {
		successMessage = DefaultSuccessMessage
	}
	return &State{
		initial:        maps.Clone(initial),
		values:         maps.Clone(initial),
		onSubmit:       onSubmit,
		successMessage: successMessage,
	}
}

// Values returns a copy of the current values.
func (s *State) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// Value returns one value.
func (s *State) Value(field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[field]
}

// Set stores a value.
func (s *State) Set(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[field] = value
}

// Err returns the current error, or nil.
func (s *State) Err() *FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return nil
	}
	e := *s.err
	return &e
}

// SetError replaces the current error. nil clears it.
func (s *State) SetError(e *FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = e
}

// ClearError removes the current error.
func (s *State) ClearError() { s.SetError(nil) }

// Success returns the current success message.
func (s *State) Success() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.success
}

// SetSuccess replaces the success message.
func (s *State) SetSuccess(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.success = msg
}

// ClearSuccess removes the success message.
func (s *State) ClearSuccess() { s.SetSuccess("") }

// Submitting reports whether a submission is running.
func (s *State) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Valid reports whether every value is non-empty.
func (s *State) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.values {
		if v == "" {
			return false
		}
	}
	return true
}

// Reset restores the initial values and clears all messages.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = maps.Clone(s.initial)
	s.err = nil
	s.success = ""
	s.submitting = false
}

// Submit runs the submit function. Success sets the success message;
// failure sets the error from the returned error. Without a submit
// function it does nothing.
func (s *State) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.onSubmit == nil {
		s.mu.Unlock()
		return nil
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitting
	}
	s.submitting = true
	s.err = nil
	s.success = ""
	values := maps.Clone(s.values)
	s.mu.Unlock()

	err := s.onSubmit(ctx, values)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.err = toFieldError(err)
		return err
	}
	s.success = s.successMessage
	return nil
}

func toFieldError(err error) *FieldError {
	var verr *production.ValidationError
	if errors.As(err, &verr) {
		return &FieldError{Message: verr.Message, Field: verr.Field}
	}
	var m interface{ Message() string }
	if errors.As(err, &m) && m.Message() != "" {
		return &FieldError{Message: m.Message()}
	}
	if msg := err.Error(); msg != "" {
		return &FieldError{Message: msg}
	}
	return &FieldError{Message: UnexpectedError}
}
