package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgmi/proddash/internal/production"
)

func TestState_ValuesAndValid(t *testing.T) {
	s := New(map[string]string{"product": "", "quantity": ""}, nil, "")
	assert.False(t, s.Valid())

	s.Set("product", "Broa")
	s.Set("quantity", "12,5")
	assert.True(t, s.Valid())
	assert.Equal(t, "Broa", s.Value("product"))

	vals := s.Values()
	vals["product"] = "changed"
	assert.Equal(t, "Broa", s.Value("product"), "Values returns a copy")

	s.Reset()
	assert.Empty(t, s.Value("product"))
	assert.False(t, s.Valid())
}

func TestState_SubmitSuccess(t *testing.T) {
	var got map[string]string
	s := New(map[string]string{"product": "Broa"}, func(_ context.Context, v map[string]string) error {
		got = v
		return nil
	}, "Produção registrada!")
	s.SetError(&FieldError{Message: "old"})

	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, map[string]string{"product": "Broa"}, got)
	assert.Equal(t, "Produção registrada!", s.Success())
	assert.Nil(t, s.Err())
	assert.False(t, s.Submitting())

	s.ClearSuccess()
	assert.Empty(t, s.Success())
}

func TestState_SubmitDefaultMessage(t *testing.T) {
	s := New(nil, func(context.Context, map[string]string) error { return nil }, "")
	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, DefaultSuccessMessage, s.Success())
}

type userFacing struct{}

func (userFacing) Error() string   { return "HTTP 500" }
func (userFacing) Message() string { return "Erro ao criar plano de produção" }

type blankError struct{}

func (blankError) Error() string { return "" }

func TestState_SubmitErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantMsg   string
		wantField string
	}{
		{name: "plain", err: errors.New("boom"), wantMsg: "boom"},
		{name: "validation", err: &production.ValidationError{Field: "quantityKg", Message: production.MsgMinQuantity}, wantMsg: production.MsgMinQuantity, wantField: "quantityKg"},
		{name: "user facing", err: userFacing{}, wantMsg: "Erro ao criar plano de produção"},
		{name: "blank", err: blankError{}, wantMsg: UnexpectedError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(map[string]string{"a": "1"}, func(context.Context, map[string]string) error { return tt.err }, "")
			s.SetSuccess("stale")

			require.Error(t, s.Submit(context.Background()))
			fe := s.Err()
			require.NotNil(t, fe)
			assert.Equal(t, tt.wantMsg, fe.Message)
			assert.Equal(t, tt.wantField, fe.Field)
			assert.Empty(t, s.Success())

			s.ClearError()
			assert.Nil(t, s.Err())
		})
	}
}

func TestState_SubmitWithoutHandler(t *testing.T) {
	s := New(nil, nil, "")
	require.NoError(t, s.Submit(context.Background()))
	assert.Empty(t, s.Success())
}

func TestState_SubmitWhileSubmitting(t *testing.T) {
	release := make(chan struct{})
	s := New(nil, func(context.Context, map[string]string) error {
		<-release
		return nil
	}, "")

	done := make(chan error, 1)
	go func() { done <- s.Submit(context.Background()) }()
	require.Eventually(t, s.Submitting, time.Second, 5*time.Millisecond)
	require.ErrorIs(t, s.Submit(context.Background()), ErrSubmitting)

	close(release)
	require.NoError(t, <-done)
}
