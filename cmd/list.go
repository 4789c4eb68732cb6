package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var (
	listSearch    string
	listSort      string
	listOrder     string
	listCreatedBy string
	listStatus    string
	listFrom      string
	listTo        string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	workspaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

// statusColors maps well-known statuses to badge colors
var statusColors = map[string]string{
	"Open":         "39",
	"In Progress":  "214",
	"Under Review": "135",
	"Resolved":     "42",
	"Closed":       "243",
	"Rejected":     "196",
}

// truncate cuts s to width terminal cells, ending in "..." when cut
func truncate(s string, width int) string {
	return ansi.Truncate(s, width, "...")
}

func statusBadge(status string) string {
	if status == "" {
		return dateStyle.Render("—")
	}
	color, ok := statusColors[status]
	if !ok {
		color = "255"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(status)
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List PDNs",
	Long: `List PDNs from one of three collections:

  workspace      every PDN, newest first
  mine           the PDNs you created, most recently updated first
  git <repo>     the PDNs of one repository; "All-GIT" lists everything
  git            the configured repositories

Search matches case-insensitively against the visible columns. The git list
also takes structured filters; they combine with each other and the search.`,
}

var listWorkspaceCmd = &cobra.Command{
	Use:         "workspace",
	Short:       "List every PDN",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: "/app/workspace"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, views.WorkspaceView(current.client))
	},
}

var listMineCmd = &cobra.Command{
	Use:         "mine",
	Short:       "List the PDNs you created",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: "/app/my-pdn"},
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := signedInSession()
		if err != nil {
			return err
		}
		return runList(cmd, views.MyPDNView(current.client, session.EmployeeID))
	},
}

var listGitCmd = &cobra.Command{
	Use:         "git [repo]",
	Short:       "List the PDNs of a repository, or the configured repositories",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{routeAnnotation: "/app/git/:gitRepo"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			displayRepositories(cmd.OutOrStdout(), current.cfg.GitRepositories)
			return nil
		}
		return runList(cmd, views.GitView(current.client, args[0]))
	},
}

// displayRepositories prints the repositories offered for navigation
func displayRepositories(out io.Writer, repos []string) {
	if len(repos) == 0 {
		fmt.Fprintln(out, "No repositories configured")
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d repositories", len(repos))))
	for _, repo := range repos {
		fmt.Fprintf(out, "  %s  %s\n", titleStyle.Render(repo), idStyle.Render("jtrac list git "+repo))
	}
}

// listOptions applies the list flags to a freshly created state
func listOptions(s *views.ListState) error {
	s.Search = strings.TrimSpace(listSearch)

	if listSort != "" {
		field, ok := views.ParseField(listSort)
		if !ok {
			return fmt.Errorf("unknown sort field %q (supported: %s)", listSort, joinFields(views.SortFields))
		}
		if field != s.SortField {
			s.SortField, s.SortDir = field, views.Ascending
		}
	}
	switch strings.ToLower(listOrder) {
	case "":
	case "asc":
		s.SortDir = views.Ascending
	case "desc":
		s.SortDir = views.Descending
	default:
		return fmt.Errorf("unknown order %q (supported: asc, desc)", listOrder)
	}

	for _, d := range []string{listFrom, listTo} {
		if d == "" {
			continue
		}
		if _, ok := internal.ParseTimestamp(d); !ok {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC3339)", d)
		}
	}
	s.Filters = views.Filters{
		CreatedBy: listCreatedBy,
		Status:    listStatus,
		DateFrom:  listFrom,
		DateTo:    listTo,
	}
	if s.Filters.Active() && !s.View.Filterable {
		internal.PrintWarning(os.Stderr, "filters only apply to git lists and are ignored here")
	}
	return nil
}

func runList(cmd *cobra.Command, view views.ListView) error {
	state := views.NewListState(view)
	if err := listOptions(state); err != nil {
		return err
	}

	ctx := cmd.Context()
	err := internal.ShowProgress(ctx, "Loading PDNs", func() error {
		return state.Load(ctx)
	})
	if err != nil {
		return commandError(ctx, fmt.Errorf("failed to load %s list: %w", view.Name, err))
	}

	displayList(cmd.OutOrStdout(), state)
	return nil
}

func displayList(out io.Writer, state *views.ListState) {
	records := state.Project()

	switch {
	case state.Status == views.StateLoading:
		fmt.Fprintln(out, headerStyle.Render("Loading PDNs..."))
		return
	case state.Status == views.StateEmpty:
		fmt.Fprintln(out, headerStyle.Render("📋 No PDNs found"))
		return
	case len(records) == 0:
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 No PDNs match (%d hidden by search or filters)", len(state.Records))))
		return
	}

	header := fmt.Sprintf("📋 %d PDN(s)", len(records))
	if len(records) != len(state.Records) {
		header = fmt.Sprintf("📋 %d of %d PDN(s)", len(records), len(state.Records))
	}
	fmt.Fprintln(out, headerStyle.Render(header))
	fmt.Fprintln(out, idStyle.Render(fmt.Sprintf("sorted by %s %s", state.SortField, state.SortDir)))
	fmt.Fprintln(out)

	showWorkspace := state.View.Name == "workspace"

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	columns := []string{"ID", "Description", "Status", "Created by", "Assigned to"}
	if showWorkspace {
		columns = append(columns, "Workspace")
	}
	columns = append(columns, "Created", "Updated")
	for _, c := range columns {
		_, _ = fmt.Fprint(w, titleStyle.Render(c)+"\t")
	}
	_, _ = fmt.Fprintln(w)

	for _, p := range records {
		description := truncate(p.Description, 50)
		row := []string{
			idStyle.Render(p.PDNID),
			description,
			statusBadge(p.CurrentStatus),
			orDash(p.CreatedByFirstName),
			orDash(p.CurrentOwnerFirstName),
		}
		if showWorkspace {
			row = append(row, workspaceStyle.Render(orDash(p.Workspace)))
		}
		row = append(row, formatDate(p.CreatedDate), formatDate(p.UpdatedDate))
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID with `jtrac show <id>`"))
}

// formatDate renders a timestamp relative to now, or as given if it does not parse
func formatDate(value string) string {
	if value == "" {
		return dateStyle.Render("—")
	}
	t, ok := internal.ParseTimestamp(value)
	if !ok {
		return dateStyle.Render(value)
	}
	diff := time.Since(t)
	switch {
	case diff >= 0 && diff < 24*time.Hour:
		return dateStyle.Render(t.Local().Format("Today 15:04"))
	case diff >= 0 && diff < 7*24*time.Hour:
		return dateStyle.Render(t.Local().Format("Mon 15:04"))
	default:
		return dateStyle.Render(t.Local().Format("2006-01-02"))
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func joinFields(fields []views.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listWorkspaceCmd, listMineCmd, listGitCmd)

	listCmd.PersistentFlags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive search")
	listCmd.PersistentFlags().StringVar(&listSort, "sort", "", "Sort field ("+joinFields(views.SortFields)+")")
	listCmd.PersistentFlags().StringVar(&listOrder, "order", "", "Sort order: asc or desc")
	listCmd.PersistentFlags().StringVar(&listCreatedBy, "created-by", "", "Only PDNs created by this name (git lists)")
	listCmd.PersistentFlags().StringVar(&listStatus, "status", "", "Only PDNs with this status (git lists)")
	listCmd.PersistentFlags().StringVar(&listFrom, "from", "", "Only PDNs created on or after this date (git lists)")
	listCmd.PersistentFlags().StringVar(&listTo, "to", "", "Only PDNs created on or before this date (git lists)")
}
