package cmd

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/jtrac-dev/jtrac/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var draftIDPattern = regexp.MustCompile(`draft ([0-9a-f]+),`)

func createArgs() []string {
	return []string{"create",
		"-d", "Login button unresponsive",
		"--problem-source", "IM",
		"--problem-id", "IM-4711",
		"--workspace", "IM",
		"--impacted-area", "Policy",
		"--sub-module", "OAuth",
		"--component", "src/auth/login.go",
	}
}

func createdResponse(id string) map[string]interface{} {
	return testutil.Envelope(200, internal.SuccessMessage, map[string]interface{}{"pdnId": id})
}

func TestCreateCommand(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(101, time.Now().Add(time.Hour))
	env.backend.HandleJSON("POST", "/pdn/create", 200, createdResponse("IM357"))

	out, err := env.run("", createArgs()...)
	require.NoError(t, err)
	assert.Contains(t, out, "Created PDN IM357")
	assert.Contains(t, out, "jtrac show IM357")

	posts := env.backend.RequestsTo("POST", "/pdn/create")
	require.Len(t, posts, 1)
	var body internal.NewPDNRequest
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	assert.Equal(t, int64(101), body.CreatedBy)
	assert.Equal(t, views.CreateEventCode, body.EventCode)
	assert.Equal(t, "Login button unresponsive", body.Description)
	assert.Equal(t, "OAuth", body.SubModule)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "missing description",
			args: []string{"create", "--problem-source", "IM", "--problem-id", "IM-1", "--workspace", "IM",
				"--impacted-area", "Policy", "--sub-module", "OAuth", "--component", "a.go"},
			want: "Description is required",
		},
		{
			name: "unknown workspace",
			args: append(createArgs(), "--workspace", "XX"),
			want: "Workspace must be one of",
		},
		{
			name: "sub-module outside the impacted area",
			args: append(createArgs(), "--sub-module", "Roles"),
			want: "Sub-module must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.signIn(101, time.Now().Add(time.Hour))

			_, err := env.run("", tt.args...)
			require.Error(t, err)
			var verr *internal.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, env.backend.Requests())
		})
	}
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(101, time.Now().Add(time.Hour))
	env.backend.HandleStatus("POST", "/pdn/create", 500)

	out, err := env.run("", createArgs()...)
	require.ErrorIs(t, err, views.ErrCreateFailed)
	assert.Contains(t, out, "Saved as draft")

	m := draftIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = env.run("", "drafts")
	require.NoError(t, err)
	assert.Contains(t, out, "1 draft(s)")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Login button unresponsive")

	// the retry succeeds; a flag given alongside overrides the draft
	env.backend.HandleJSON("POST", "/pdn/create", 200, createdResponse("IM358"))
	out, err = env.run("", "create", "--draft", id, "-d", "Login button frozen")
	require.NoError(t, err)
	assert.Contains(t, out, "Created PDN IM358")

	posts := env.backend.RequestsTo("POST", "/pdn/create")
	require.Len(t, posts, 2)
	var body internal.NewPDNRequest
	require.NoError(t, json.Unmarshal(posts[1].Body, &body))
	assert.Equal(t, "Login button frozen", body.Description)
	assert.Equal(t, "IM-4711", body.ProblemID)
	assert.Equal(t, int64(101), body.CreatedBy)

	out, err = env.run("", "drafts")
	require.NoError(t, err)
	assert.Contains(t, out, "No drafts")
}

func TestDraftsRemove(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(101, time.Now().Add(time.Hour))
	env.backend.HandleStatus("POST", "/pdn/create", 500)

	out, _ := env.run("", createArgs()...)
	m := draftIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)

	out, err := env.run("", "drafts", "rm", m[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Removed draft "+m[1])

	_, err = env.run("", "drafts", "rm", m[1])
	assert.Error(t, err)
}

func TestCreateRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", createArgs()...)
	assert.ErrorIs(t, err, errNotSignedIn)
	assert.Empty(t, env.backend.Requests())
}
