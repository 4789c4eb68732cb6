package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var (
	showExpandAll     bool
	showExpand        []int
	showAddComponents []string
)

var (
	// Styles for show command
	pdnHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1).
			MarginBottom(1)

	pdnMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	componentStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	eventContentStyle = lipgloss.NewStyle().
				Padding(0, 2)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	sectionErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <pdn-id>",
	Short: "Show a PDN with its components and tracking history",
	Long: `Display one PDN: its details, the components it touches and the
tracking history, newest entries last.

Tracking entries are collapsed to their first line; use --expand for all of
them or --expand-entry to open single entries by number.

--add-component appends a component to this view only. It is not sent to the
backend.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{routeAnnotation: "/app/pdn/:id"},
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := signedInSession()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		detail := views.NewDetail(current.client, args[0])
		err = internal.ShowProgress(ctx, "Loading PDN "+args[0], func() error {
			return detail.Load(ctx)
		})
		if err != nil {
			return commandError(ctx, err)
		}

		for _, path := range showAddComponents {
			if err := detail.AddComponent(path, session.EmployeeID); err != nil {
				return err
			}
		}
		if showExpandAll {
			for i := range detail.Tracking {
				detail.Toggle(i)
			}
		}
		for _, n := range showExpand {
			if n < 1 || n > len(detail.Tracking) {
				internal.LogWarn("No tracking entry %d (have %d)", n, len(detail.Tracking))
				continue
			}
			if !detail.Expanded(n - 1) {
				detail.Toggle(n - 1)
			}
		}

		displayDetail(cmd.OutOrStdout(), detail)
		return nil
	},
}

func displayDetail(out io.Writer, d *views.Detail) {
	displayRecord(out, d)
	displayComponents(out, d)
	displayTracking(out, d)
}

func displayRecord(out io.Writer, d *views.Detail) {
	if d.RecordErr != nil {
		fmt.Fprintln(out, pdnHeaderStyle.Render("📄 PDN "+d.ID))
		fmt.Fprintln(out, sectionErrorStyle.Render("Could not load PDN details."))
		fmt.Fprintln(out)
		return
	}
	p := d.Record
	if p == nil {
		fmt.Fprintln(out, pdnHeaderStyle.Render("📄 PDN "+d.ID+" not found"))
		return
	}

	fmt.Fprintln(out, pdnHeaderStyle.Render(fmt.Sprintf("📄 %s  %s", p.PDNID, statusBadge(p.CurrentStatus))))
	fmt.Fprintln(out, wrapText(p.Description, 80))
	fmt.Fprintln(out)

	fields := [][2]string{
		{"Created by", p.CreatedByFirstName},
		{"Assigned to", p.CurrentOwnerFirstName},
		{"Workspace", p.Workspace},
		{"Priority", p.Priority},
		{"Problem ID", p.ProblemID},
		{"Impacted area", p.ImpactedArea},
		{"Module", p.Module},
		{"Sub-module", p.SubModule},
		{"Product", p.Product},
	}
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(out, "%s %s\n", fieldLabelStyle.Render(f[0]+":"), f[1])
		}
	}

	var metaParts []string
	if p.CreatedDate != "" {
		metaParts = append(metaParts, "Created: "+p.CreatedDate)
	}
	if p.UpdatedDate != "" {
		metaParts = append(metaParts, "Updated: "+p.UpdatedDate)
	}
	if len(metaParts) > 0 {
		fmt.Fprintln(out, pdnMetaStyle.Render(strings.Join(metaParts, " • ")))
	}
	fmt.Fprintln(out)
}

func displayComponents(out io.Writer, d *views.Detail) {
	components := d.AllComponents()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🧩 Components (%d)", len(components))))
	if d.ComponentsErr != nil {
		fmt.Fprintln(out, sectionErrorStyle.Render("Could not load components."))
	}
	local := len(d.Components)
	for i, c := range components {
		label := fmt.Sprintf("added by %s", orDash(c.CreatedBy.String()))
		if c.CreatedDate != "" {
			label += " on " + c.CreatedDate
		}
		if i >= local {
			label += " (local)"
		}
		fmt.Fprintln(out, timestampStyle.Render(label))
		fmt.Fprintln(out, componentStyle.Render(strings.Join(c.Paths(), "\n")))
	}
	fmt.Fprintln(out)
}

func displayTracking(out io.Writer, d *views.Detail) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🕓 Tracking history (%d)", len(d.Tracking))))
	if d.TrackingErr != nil {
		fmt.Fprintln(out, sectionErrorStyle.Render("Could not load tracking history."))
	}
	for i, entry := range d.Tracking {
		header := eventStyle.Render(orDash(entry.EventCode)) + " " +
			timestampStyle.Render(fmt.Sprintf("[%d/%d]", i+1, len(d.Tracking)))
		if entry.EmpID != "" {
			header += " " + timestampStyle.Render("by "+entry.EmpID.String())
		}
		if entry.CreatedDate != "" {
			header += " " + timestampStyle.Render(entry.CreatedDate)
		}
		fmt.Fprintln(out, header)

		details := strings.TrimSpace(entry.Details)
		switch {
		case details == "":
			fmt.Fprintln(out, eventContentStyle.Foreground(lipgloss.Color("240")).Render("(no details)"))
		case d.Expanded(i):
			fmt.Fprintln(out, eventContentStyle.Render(wrapText(details, 80)))
		default:
			fmt.Fprintln(out, eventContentStyle.Render(collapse(details, 72)))
		}
	}
}

// collapse keeps the first line of text, cut to width
func collapse(text string, width int) string {
	first, rest, _ := strings.Cut(text, "\n")
	if ansi.StringWidth(first) > width {
		return truncate(first, width)
	}
	if rest != "" {
		return first + " …"
	}
	return first
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if ansi.StringWidth(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if ansi.StringWidth(currentLine)+ansi.StringWidth(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showExpandAll, "expand", false, "Expand every tracking entry")
	showCmd.Flags().IntSliceVar(&showExpand, "expand-entry", nil, "Expand tracking entries by number (1-based)")
	showCmd.Flags().StringArrayVar(&showAddComponents, "add-component", nil, "Add a component to this view (not saved)")
}
