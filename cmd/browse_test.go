package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/api"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient serves both the list and the detail screens
type fakeClient struct {
	pdns    []internal.PDN
	listErr error
}

func (f *fakeClient) ListAll(ctx context.Context) ([]internal.PDN, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]internal.PDN(nil), f.pdns...), nil
}

func (f *fakeClient) ListByWorkspace(ctx context.Context, prefix string) ([]internal.PDN, error) {
	return f.ListAll(ctx)
}

func (f *fakeClient) ListByCreator(ctx context.Context, empID string) ([]internal.PDN, error) {
	return f.ListAll(ctx)
}

func (f *fakeClient) GetPDN(ctx context.Context, id string) (*internal.PDN, error) {
	for i := range f.pdns {
		if f.pdns[i].PDNID == id {
			p := f.pdns[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("PDN %s not found", id)
}

func (f *fakeClient) Components(ctx context.Context, id string) ([]internal.Component, error) {
	return []internal.Component{{Component: "src/a.go", CreatedBy: json.Number("101"), PDNID: id}}, nil
}

func (f *fakeClient) Tracking(ctx context.Context, id string) ([]internal.TrackingEntry, error) {
	return []internal.TrackingEntry{
		{EventCode: "CREATE_PDN", Details: "Created", PDNID: id},
		{EventCode: "UPDATE_PDN", Details: "first line\nhidden line", PDNID: id},
	}, nil
}

func (f *fakeClient) UpdatePDN(ctx context.Context, id string, form *api.Form) error {
	return nil
}

func samplePDNs() []internal.PDN {
	return []internal.PDN{
		{PDNID: "PDN-001", Description: "OAuth Integration", CurrentStatus: "Open", CreatedDate: "2024-01-15T10:30:00Z", UpdatedDate: "2024-01-20T09:00:00Z"},
		{PDNID: "PDN-002", Description: "Claim export timeout", CurrentStatus: "In Progress", CreatedDate: "2024-01-10T08:00:00Z", UpdatedDate: "2024-01-25T12:00:00Z"},
		{PDNID: "PDN-003", Description: "Session refresh loop", CurrentStatus: "Closed", CreatedDate: "2024-02-01T14:45:00Z", UpdatedDate: "2024-02-02T10:00:00Z"},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to m. When the model starts loading, the load command is
// run and its result fed back in; other commands (cursor blinks) are dropped.
func send(t *testing.T, m browseModel, msg tea.Msg) browseModel {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(browseModel)
	require.True(t, ok)
	if !bm.loading {
		return bm
	}
	return bm.runCmd(t, cmd)
}

func (m browseModel) runCmd(t *testing.T, cmd tea.Cmd) browseModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case listLoadedMsg, detailLoadedMsg:
		next, _ := m.Update(msg)
		return next.(browseModel)
	}
	return m
}

func loadedModel(t *testing.T, client *fakeClient) browseModel {
	t.Helper()
	m := newBrowseModel(context.Background(), views.GitView(client, "All-GIT"), client)
	return m.runCmd(t, m.Init())
}

func rowIDs(m browseModel) []string {
	ids := make([]string, len(m.rows))
	for i, p := range m.rows {
		ids[i] = p.PDNID
	}
	return ids
}

func TestBrowseInitLoadsList(t *testing.T) {
	m := loadedModel(t, &fakeClient{pdns: samplePDNs()})

	assert.False(t, m.loading)
	assert.Equal(t, views.StateReady, m.state.Status)
	assert.Equal(t, []string{"PDN-003", "PDN-001", "PDN-002"}, rowIDs(m))
	assert.Contains(t, m.View(), "3 of 3")
}

func TestBrowseSearch(t *testing.T) {
	m := loadedModel(t, &fakeClient{pdns: samplePDNs()})

	m = send(t, m, keyRunes("/"))
	require.True(t, m.typing)
	for _, r := range "oauth" {
		m = send(t, m, keyRunes(string(r)))
	}
	assert.Equal(t, []string{"PDN-001"}, rowIDs(m))

	// enter keeps the search, esc clears it
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.typing)
	assert.Equal(t, "oauth", m.state.Search)

	m = send(t, m, keyRunes("/"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.state.Search)
	assert.Len(t, m.rows, 3)
}

func TestBrowseSort(t *testing.T) {
	m := loadedModel(t, &fakeClient{pdns: samplePDNs()})

	m = send(t, m, keyRunes("s"))
	assert.Equal(t, views.FieldLastUpdated, m.state.SortField)
	assert.Equal(t, views.Ascending, m.state.SortDir)
	assert.Equal(t, []string{"PDN-001", "PDN-002", "PDN-003"}, rowIDs(m))

	m = send(t, m, keyRunes("r"))
	assert.Equal(t, views.Descending, m.state.SortDir)
	assert.Equal(t, []string{"PDN-003", "PDN-002", "PDN-001"}, rowIDs(m))
}

func TestBrowseReloadKeepsSearchAndSort(t *testing.T) {
	m := loadedModel(t, &fakeClient{pdns: samplePDNs()})
	m.state.Search = "session"
	m = send(t, m, keyRunes("s"))

	m = send(t, m, keyRunes("R"))
	assert.Equal(t, "session", m.state.Search)
	assert.Equal(t, views.FieldLastUpdated, m.state.SortField)
	assert.Equal(t, []string{"PDN-003"}, rowIDs(m))
}

func TestBrowseDetail(t *testing.T) {
	m := loadedModel(t, &fakeClient{pdns: samplePDNs()})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeDetail, m.mode)
	require.NotNil(t, m.detail)
	assert.Equal(t, "PDN-003", m.detail.ID)

	view := m.View()
	assert.Contains(t, view, "Tracking history (2)")
	assert.Contains(t, view, "first line …")
	assert.NotContains(t, view, "hidden line")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor, "cursor stays on the last entry")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.detail.Expanded(1))
	assert.Contains(t, m.View(), "hidden line")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, m.mode)
	assert.Nil(t, m.detail)
}

func TestBrowseUnauthorizedQuits(t *testing.T) {
	client := &fakeClient{listErr: &internal.HTTPError{Status: 401}}
	m := newBrowseModel(context.Background(), views.GitView(client, "All-GIT"), client)

	msg := m.Init()()
	next, cmd := m.Update(msg)
	bm := next.(browseModel)

	require.NotNil(t, cmd)
	var redirect *views.RedirectError
	require.ErrorAs(t, bm.err, &redirect)
	assert.Equal(t, "/", redirect.To)
}

func TestBrowseEmptyAndFailedLists(t *testing.T) {
	m := loadedModel(t, &fakeClient{})
	assert.Contains(t, m.View(), "No PDNs found")

	m = loadedModel(t, &fakeClient{listErr: &internal.HTTPError{Status: 500}})
	assert.Nil(t, m.err)
	assert.Contains(t, m.View(), "Could not load PDNs.")
}

func TestNextField(t *testing.T) {
	assert.Equal(t, views.FieldDescription, nextField(views.FieldID))
	assert.Equal(t, views.FieldID, nextField(views.FieldLastUpdated))
	assert.Equal(t, views.SortFields[0], nextField("unknown"))
}
