package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Line(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(&out, strings.NewReader("  ana  \n\n"))

	got, err := p.line("Usuário", "")
	require.NoError(t, err)
	assert.Equal(t, "ana", got)
	assert.Equal(t, "Usuário: ", out.String())

	got, err = p.line("Turno", "MORNING")
	require.NoError(t, err)
	assert.Equal(t, "MORNING", got)

	_, err = p.line("Data", "")
	require.ErrorIs(t, err, errNoInput)
}

func TestPrompter_LineWithoutNewline(t *testing.T) {
	p := newPrompter(&bytes.Buffer{}, strings.NewReader("last"))
	got, err := p.line("x", "")
	require.NoError(t, err)
	assert.Equal(t, "last", got)
}

func TestPrompter_Password(t *testing.T) {
	p := newPrompter(&bytes.Buffer{}, strings.NewReader(" s3cret \n"))
	got, err := p.password("Senha")
	require.NoError(t, err)
	assert.Equal(t, " s3cret ", got, "passwords are not trimmed")

	_, err = p.password("Senha")
	require.ErrorIs(t, err, errNoInput)
}

func TestPrompter_PasswordFromTerminal(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(&out, strings.NewReader(""))
	p.isTerm = true
	p.readPwd = func(int) ([]byte, error) { return []byte("hidden"), nil }

	got, err := p.password("Senha")
	require.NoError(t, err)
	assert.Equal(t, "hidden", got)
	assert.Equal(t, "Senha: \n", out.String())
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"sim\n", true},
		{"\n", false},
		{"n\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := newPrompter(&bytes.Buffer{}, strings.NewReader(tt.input))
			assert.Equal(t, tt.want, p.confirm("Continuar?"))
		})
	}
}
