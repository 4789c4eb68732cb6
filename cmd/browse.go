package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var browseView string

var (
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)
)

type browseMode int

const (
	modeList browseMode = iota
	modeDetail
)

type listLoadedMsg struct {
	state *views.ListState
	err   error
}

type detailLoadedMsg struct {
	detail *views.Detail
	err    error
}

// browseModel is the interactive list and detail screen
type browseModel struct {
	ctx    context.Context
	view   views.ListView
	client views.DetailClient

	state   *views.ListState
	rows    []internal.PDN
	table   table.Model
	search  textinput.Model
	typing  bool
	loading bool

	mode   browseMode
	detail *views.Detail
	cursor int

	err error
}

func newBrowseModel(ctx context.Context, view views.ListView, client views.DetailClient) browseModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 12},
			{Title: "Description", Width: 40},
			{Title: "Status", Width: 14},
			{Title: "Created by", Width: 12},
			{Title: "Assigned to", Width: 12},
			{Title: "Created", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	si := textinput.New()
	si.Placeholder = "Search..."
	si.CharLimit = 80
	si.Width = 40

	return browseModel{
		ctx:     ctx,
		view:    view,
		client:  client,
		state:   views.NewListState(view),
		table:   t,
		search:  si,
		loading: true,
	}
}

func (m browseModel) loadList() tea.Cmd {
	ctx, view := m.ctx, m.view
	return func() tea.Msg {
		s := views.NewListState(view)
		err := s.Load(ctx)
		return listLoadedMsg{state: s, err: err}
	}
}

func (m browseModel) loadDetail(id string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		d := views.NewDetail(client, id)
		err := d.Load(ctx)
		return detailLoadedMsg{detail: d, err: err}
	}
}

// Init starts loading the list.
func (m browseModel) Init() tea.Cmd {
	return m.loadList()
}

// Update handles messages.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		m.loading = false
		// keep the user's search and sort across reloads
		msg.state.Search = m.state.Search
		msg.state.SortField, msg.state.SortDir = m.state.SortField, m.state.SortDir
		m.state = msg.state
		if msg.err != nil {
			var redirect *views.RedirectError
			if errors.As(msg.err, &redirect) {
				m.err = msg.err
				return m, tea.Quit
			}
		}
		m.refreshRows()
		return m, nil

	case detailLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.detail = msg.detail
		m.cursor = 0
		m.mode = modeDetail
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-8, 5))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.typing {
		switch msg.String() {
		case "esc":
			m.search.SetValue("")
			fallthrough
		case "enter":
			m.typing = false
			m.search.Blur()
		default:
			m.search, cmd = m.search.Update(msg)
		}
		// live search on each keystroke
		m.state.Search = m.search.Value()
		m.refreshRows()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.typing = true
		m.search.Focus()
		return m, textinput.Blink
	case "s":
		m.state.ToggleSort(nextField(m.state.SortField))
		m.refreshRows()
		return m, nil
	case "r":
		m.state.ToggleSort(m.state.SortField)
		m.refreshRows()
		return m, nil
	case "R":
		m.loading = true
		return m, m.loadList()
	case "enter":
		i := m.table.Cursor()
		if i < 0 || i >= len(m.rows) {
			return m, nil
		}
		m.loading = true
		return m, m.loadDetail(m.rows[i].PDNID)
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.mode = modeList
		m.detail = nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.detail.Tracking)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.detail.Toggle(m.cursor)
	}
	return m, nil
}

// nextField cycles through the sortable fields
func nextField(f views.Field) views.Field {
	for i, sf := range views.SortFields {
		if sf == f {
			return views.SortFields[(i+1)%len(views.SortFields)]
		}
	}
	return views.SortFields[0]
}

func (m *browseModel) refreshRows() {
	m.rows = m.state.Project()
	rows := make([]table.Row, 0, len(m.rows))
	for _, p := range m.rows {
		created := ""
		if t, ok := internal.ParseTimestamp(p.CreatedDate); ok {
			created = t.Local().Format("2006-01-02")
		}
		rows = append(rows, table.Row{
			p.PDNID,
			p.Description,
			p.CurrentStatus,
			p.CreatedByFirstName,
			p.CurrentOwnerFirstName,
			created,
		})
	}
	m.table.SetRows(rows)
}

// View renders the model.
func (m browseModel) View() string {
	if m.mode == modeDetail && m.detail != nil {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("📋 %s", m.view.Route)))
	b.WriteString("\n")

	switch {
	case m.loading && m.state.Status == views.StateLoading:
		b.WriteString("Loading PDNs...\n")
	case m.state.Status == views.StateFailed:
		b.WriteString(sectionErrorStyle.Render("Could not load PDNs.") + "\n")
	case m.state.Status == views.StateEmpty:
		b.WriteString("No PDNs found\n")
	default:
		if m.typing || m.state.Search != "" {
			b.WriteString(m.search.View() + "\n")
		}
		b.WriteString(m.table.View() + "\n")
		b.WriteString(idStyle.Render(fmt.Sprintf("%d of %d • sorted by %s %s", len(m.rows), len(m.state.Records), m.state.SortField, m.state.SortDir)) + "\n")
	}

	b.WriteString(helpStyle.Render("/ search • s sort field • r reverse • enter open • R reload • q quit"))
	return b.String()
}

func (m browseModel) viewDetail() string {
	var b strings.Builder
	displayRecord(&b, m.detail)
	displayComponents(&b, m.detail)

	b.WriteString(headerStyle.Render(fmt.Sprintf("🕓 Tracking history (%d)", len(m.detail.Tracking))) + "\n")
	if m.detail.TrackingErr != nil {
		b.WriteString(sectionErrorStyle.Render("Could not load tracking history.") + "\n")
	}
	for i, entry := range m.detail.Tracking {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		line := marker + eventStyle.Render(orDash(entry.EventCode))
		if entry.CreatedDate != "" {
			line += " " + timestampStyle.Render(entry.CreatedDate)
		}
		b.WriteString(line + "\n")

		details := strings.TrimSpace(entry.Details)
		if details == "" {
			continue
		}
		if m.detail.Expanded(i) {
			b.WriteString(eventContentStyle.Render(wrapText(details, 80)) + "\n")
		} else {
			b.WriteString(eventContentStyle.Render(collapse(details, 72)) + "\n")
		}
	}

	b.WriteString(helpStyle.Render("↑/↓ move • enter expand • esc back • q quit"))
	return b.String()
}

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse [repo]",
	Short: "Browse PDNs interactively",
	Long: `Open an interactive list. Search live, cycle sorting, open a PDN to read
its components and tracking history.

The list is a repository's (default All-GIT); --view switches to the
workspace list or your own PDNs. The browser closes when the session expires.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{routeAnnotation: "/app/git/:gitRepo"},
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := browseListView(args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p := tea.NewProgram(newBrowseModel(ctx, view, current.client), tea.WithAltScreen(), tea.WithContext(ctx))
		final, err := p.Run()
		if err != nil {
			if errors.Is(err, tea.ErrProgramKilled) {
				return commandError(ctx, context.Canceled)
			}
			return fmt.Errorf("browser failed: %w", err)
		}
		if m, ok := final.(browseModel); ok && m.err != nil {
			return commandError(ctx, m.err)
		}
		return nil
	},
}

func browseListView(args []string) (views.ListView, error) {
	switch browseView {
	case "", "git":
		repo := "All-GIT"
		if len(args) == 1 {
			repo = args[0]
		}
		return views.GitView(current.client, repo), nil
	case "workspace":
		return views.WorkspaceView(current.client), nil
	case "mine":
		session, err := signedInSession()
		if err != nil {
			return views.ListView{}, err
		}
		return views.MyPDNView(current.client, session.EmployeeID), nil
	default:
		return views.ListView{}, fmt.Errorf("unknown view %q (supported: git, workspace, mine)", browseView)
	}
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringVar(&browseView, "view", "git", "List to browse: git, workspace or mine")
}
