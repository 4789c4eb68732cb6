package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantContain string
	}{
		{
			name:        "version flag",
			args:        []string{"--version"},
			wantContain: "commit:",
		},
		{
			name:        "help flag",
			args:        []string{"--help"},
			wantContain: "Quick Start:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			out, err := env.run("", tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantContain)
		})
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"login", "signup", "logout", "whoami", "list", "show", "update", "create", "drafts", "export", "open", "browse", "inspect", "healthcheck"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestGuardedCommandsDeclareRoutes(t *testing.T) {
	for _, c := range []string{"show", "update", "create", "export", "whoami", "browse"} {
		cmd, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		route, ok := cmd.Annotations[routeAnnotation]
		require.True(t, ok, "%s has no route", c)
		r, _, matched := views.Match(route)
		require.True(t, matched, "%s route %s does not match", c, route)
		assert.True(t, r.Guarded, "%s should be guarded", c)
	}
}

func TestSetupCreatesStateDirectory(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("", "logout")
	require.NoError(t, err)
	assert.FileExists(t, env.dbPath())
}

func TestCommandError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, commandError(context.Background(), nil))
	})

	t.Run("redirect to sign in", func(t *testing.T) {
		err := commandError(context.Background(), &views.RedirectError{To: "/", Cause: &internal.HTTPError{Status: 401}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session rejected")
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := errors.New("boom")
		assert.Same(t, cause, commandError(context.Background(), cause))
	})

	t.Run("cancel without a session controller passes through", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := commandError(ctx, context.Canceled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
