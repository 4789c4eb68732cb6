package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jtrac-dev/jtrac/internal"
)

// MarkdownExporter exports a report as a readable document
type MarkdownExporter struct{}

// Export exports a report to Markdown format
func (e *MarkdownExporter) Export(report *internal.PDNReport, w io.Writer) error {
	p := report.PDN
	if p == nil {
		return fmt.Errorf("report has no PDN record")
	}

	_, _ = fmt.Fprintf(w, "# PDN %s\n\n", p.PDNID)
	_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(p.Description))

	fields := [][2]string{
		{"Status", p.CurrentStatus},
		{"Created by", p.CreatedByFirstName},
		{"Assigned to", p.CurrentOwnerFirstName},
		{"Workspace", p.Workspace},
		{"Created", p.CreatedDate},
		{"Updated", p.UpdatedDate},
		{"Priority", p.Priority},
		{"Problem ID", p.ProblemID},
		{"Impacted area", p.ImpactedArea},
		{"Module", p.Module},
		{"Sub-module", p.SubModule},
		{"Product", p.Product},
	}
	for _, f := range fields {
		if f[1] != "" {
			_, _ = fmt.Fprintf(w, "**%s:** %s  \n", f[0], f[1])
		}
	}
	_, _ = fmt.Fprintf(w, "\n---\n\n")

	_, _ = fmt.Fprintf(w, "## Components (%d)\n\n", len(report.Components))
	for _, c := range report.Components {
		if c.CreatedDate != "" {
			_, _ = fmt.Fprintf(w, "Added %s by %s:\n\n", c.CreatedDate, c.CreatedBy)
		}
		_, _ = fmt.Fprintf(w, "```\n%s\n```\n\n", strings.Join(c.Paths(), "\n"))
	}

	_, _ = fmt.Fprintf(w, "## Tracking history (%d)\n\n", len(report.Tracking))
	for i, entry := range report.Tracking {
		when := ""
		if entry.CreatedDate != "" {
			when = fmt.Sprintf(" (%s)", entry.CreatedDate)
		}
		who := ""
		if entry.EmpID != "" {
			who = fmt.Sprintf(" by %s", entry.EmpID)
		}
		_, _ = fmt.Fprintf(w, "**%s**%s%s\n\n", entry.EventCode, who, when)
		if entry.Details != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(entry.Details))
		}

		if i < len(report.Tracking)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	if report.ExportedAt != "" {
		_, _ = fmt.Fprintf(w, "\n_Exported %s_\n", report.ExportedAt)
	}
	return nil
}

// escapeMarkdown escapes markdown emphasis outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
