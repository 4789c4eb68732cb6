package cmd

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testEnv runs the real command tree against a fake backend and a
// throwaway state directory
type testEnv struct {
	t       *testing.T
	dir     string
	backend *testutil.Backend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		t:       t,
		dir:     t.TempDir(),
		backend: testutil.NewBackend(t),
	}
}

func (e *testEnv) dbPath() string {
	return filepath.Join(e.dir, "local-storage.db")
}

// signIn stores a token for empID expiring at exp and returns it
func (e *testEnv) signIn(empID int64, exp time.Time) string {
	e.t.Helper()
	token := testutil.MakeToken(e.t, empID, exp)
	testutil.CreateStateDB(e.t, e.dbPath(), map[string]string{"jtrac.token": token})
	return token
}

// readItem reads one key from the state database after a run
func (e *testEnv) readItem(key string) (string, bool) {
	e.t.Helper()
	db, err := internal.OpenDatabase(e.dbPath())
	if err != nil {
		e.t.Fatalf("Failed to open state database: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)
	return testutil.ReadItem(e.t, db, key)
}

// run executes jtrac with args, feeding stdin, and returns what it printed
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)

	full := append([]string{"--state-dir", e.dir, "--api-url", e.backend.URL()}, args...)
	var out bytes.Buffer
	rootCmd.SetArgs(full)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags puts every flag of c and its children back to its default so
// package-level flag variables do not leak between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

// withPDNs registers the sample records on /pdn/all
func (e *testEnv) withPDNs() {
	e.backend.HandleJSON("GET", "/pdn/all", 200, testutil.Envelope(200, internal.SuccessMessage, testutil.SamplePDNs()))
}

// withDetail registers record, component and tracking routes for PDN-001
func (e *testEnv) withDetail() {
	e.backend.HandleJSON("GET", "/pdn/all/pdnId/PDN-001", 200, testutil.Envelope(200, internal.SuccessMessage, testutil.SamplePDNs()[:1]))
	e.backend.HandleJSON("GET", "/pdn/component/PDN-001", 200, testutil.Envelope(200, internal.SuccessMessage, []map[string]interface{}{
		{"component": "src/auth/oauth.go\nsrc/auth/token.go", "createdBy": 101, "createdDate": "2024-01-15", "pdnId": "PDN-001"},
	}))
	e.backend.HandleJSON("GET", "/pdn/tracking/PDN-001", 200, testutil.Envelope(200, internal.SuccessMessage, []map[string]interface{}{
		{"eventCode": "CREATE_PDN", "details": "Created", "empId": 101, "createdDate": "2024-01-15T10:30:00Z", "pdnId": "PDN-001"},
		{"eventCode": "UPDATE_PDN", "details": "Moved to review\nsee attached trace", "empId": 102, "createdDate": "2024-01-16T09:00:00Z", "pdnId": "PDN-001"},
	}))
}
