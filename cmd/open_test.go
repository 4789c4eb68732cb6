package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("", "open", "/app/settings/profile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such route")
	assert.Contains(t, out, "404")
	assert.Contains(t, out, "This page could not be found.")
}

func TestOpenPublicRoutes(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/", "jtrac login"},
		{"/signup", "jtrac signup"},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			env := newTestEnv(t)
			out, err := env.run("", "open", tt.route)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestOpenGuardedRouteWithoutSession(t *testing.T) {
	for _, route := range []string{"/app", "/app/workspace", "/app/pdn/PDN-001", "/app/git/All-GIT"} {
		t.Run(route, func(t *testing.T) {
			env := newTestEnv(t)
			env.withPDNs()

			_, err := env.run("", "open", route)
			assert.ErrorIs(t, err, errNotSignedIn)
			assert.Empty(t, env.backend.Requests())
		})
	}
}

func TestOpenListRoutes(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/app", "3 PDN(s)"},
		{"/app/git/All-GIT", "3 PDN(s)"},
		{"/app/workspace", "DELL-backend-services"},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			env := newTestEnv(t)
			env.signIn(101, time.Now().Add(time.Hour))
			env.withPDNs()

			out, err := env.run("", "open", tt.route)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestOpenDetailRoute(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(101, time.Now().Add(time.Hour))
	env.withDetail()

	out, err := env.run("", "open", "/app/pdn/PDN-001")
	require.NoError(t, err)
	assert.Contains(t, out, "OAuth Integration")
	assert.Contains(t, out, "Tracking history (2)")
}

func TestOpenNewPDNRoute(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(101, time.Now().Add(time.Hour))

	out, err := env.run("", "open", "/app/new-pdn")
	require.NoError(t, err)
	assert.Contains(t, out, "Create a new PDN")
	assert.Contains(t, out, "--problem-source")
	assert.Empty(t, env.backend.Requests())
}
