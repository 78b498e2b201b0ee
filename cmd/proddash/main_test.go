package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sgmi/proddash/internal/cli"
	"github.com/sgmi/proddash/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.NotNil(t, root)
		assert.Equal(t, "proddash", root.Use)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, cli.ExitOK},
		{"generic error", errors.New("boom"), cli.ExitFailure},
		{"exit error", &cli.ExitError{Code: cli.ExitNotLoggedIn}, cli.ExitNotLoggedIn},
		{"wrapped exit error", fmt.Errorf("outer: %w", &cli.ExitError{Code: 42}), 42},
		{"joined exit error", errors.Join(errors.New("a"), &cli.ExitError{Code: cli.ExitUsage}), cli.ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
