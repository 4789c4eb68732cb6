package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginResponse(token string) map[string]interface{} {
	return testutil.Envelope(200, internal.SuccessMessage, map[string]interface{}{
		"empId":     101,
		"firstName": "Alice",
		"lastName":  "Smith",
		"role":      "Developer",
		"token":     token,
	})
}

func TestLoginCommand(t *testing.T) {
	env := newTestEnv(t)
	token := testutil.MakeToken(t, 101, time.Now().Add(time.Hour))
	env.backend.HandleJSON("POST", "/auth/login", 200, loginResponse(token))

	out, err := env.run("", "login", "-e", "101", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Alice Smith (Developer)")

	posts := env.backend.RequestsTo("POST", "/auth/login")
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].Authorization)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	assert.Equal(t, float64(101), body["empId"])
	assert.Equal(t, "secret", body["password"])

	stored, ok := env.readItem("jtrac.token")
	require.True(t, ok)
	assert.Equal(t, token, stored)

	// the next run restores the session from the stored token
	out, err = env.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice Smith")
	assert.Contains(t, out, "Employee ID: 101")
	assert.Contains(t, out, "Role: Developer")
	assert.Contains(t, out, "Expires:")
}

func TestLoginPasswordFromStdin(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleJSON("POST", "/auth/login", 200, loginResponse(testutil.MakeToken(t, 101, time.Now().Add(time.Hour))))

	_, err := env.run("hunter2\n", "login", "-e", "101")
	require.NoError(t, err)

	posts := env.backend.RequestsTo("POST", "/auth/login")
	require.Len(t, posts, 1)
	assert.Contains(t, string(posts[0].Body), `"password":"hunter2"`)
}

func TestLoginRejected(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleJSON("POST", "/auth/login", 200, testutil.Envelope(200, "Invalid credentials", nil))

	_, err := env.run("", "login", "-e", "101", "-p", "wrong")
	require.Error(t, err)
	assert.Equal(t, "sign in failed: Invalid credentials", err.Error())

	_, ok := env.readItem("jtrac.token")
	assert.False(t, ok)
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"non-numeric id", "", []string{"-e", "alice", "-p", "secret"}, "Employee ID must be numeric"},
		{"missing id", "", []string{"-p", "secret"}, "Employee ID is required"},
		{"missing password", "", []string{"-e", "101"}, "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.run(tt.stdin, append([]string{"login"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, env.backend.Requests())
		})
	}
}

func TestSignupCommand(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleJSON("POST", "/auth/signup", 200, testutil.Envelope(200, internal.SuccessMessage, nil))

	out, err := env.run("longpassword\n", "signup",
		"-e", "2732290",
		"--name", "Alice Smith",
		"--email", "alice@example.com",
		"--department", "Developer")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created")
	assert.Contains(t, out, "jtrac login -e 2732290")

	posts := env.backend.RequestsTo("POST", "/auth/signup")
	require.Len(t, posts, 1)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	assert.Equal(t, "2732290", body["employeeId"])
	assert.Equal(t, "longpassword", body["password"])
	assert.NotContains(t, body, "confirmPassword")
}

func TestSignupRejected(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleJSON("POST", "/auth/signup", 200, testutil.Envelope(409, "Employee already exists", nil))

	_, err := env.run("", "signup", "-e", "2732290", "--name", "Alice Smith", "--email", "alice@example.com",
		"--department", "Developer", "-p", "longpassword", "--confirm-password", "longpassword")
	require.Error(t, err)
	assert.Equal(t, "sign up failed: Employee already exists", err.Error())
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "signup", "-e", "27", "--name", "A", "--email", "nope",
		"-p", "longpassword", "--confirm-password", "different1")
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"Employee ID must be at least 3 characters",
		"Full name must be at least 2 characters",
		"Please enter a valid email address",
		"Please select a department",
		"Passwords don't match",
	} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
	assert.Empty(t, env.backend.Requests())
}

func TestSignupUnknownDepartment(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "signup", "-e", "2732290", "--name", "Alice Smith", "--email", "alice@example.com",
		"--department", "Astronaut", "-p", "password1", "--confirm-password", "password1")
	require.Error(t, err)
	var verr *internal.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Department must be one of Developer, Tester, Lead, Manager")
	assert.Empty(t, env.backend.Requests())
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(101, time.Now().Add(time.Hour))

	out, err := env.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, ok := env.readItem("jtrac.token")
	assert.False(t, ok)

	out, err = env.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestWhoamiRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}
