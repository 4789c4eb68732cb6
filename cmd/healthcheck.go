package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/auth"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetail bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that jtrac is configured and can reach the backend",
	Long: `Check the health of jtrac by verifying:
  • Configuration
  • Local state directory and database
  • Stored session token
  • Backend reachability

This command is useful for debugging connection and sign-in issues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 jtrac Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckDetail {
			fmt.Fprintf(out, "   API URL: %s\n", current.cfg.APIURL)
			fmt.Fprintf(out, "   Timeout: %s\n", current.cfg.RequestTimeout())
			fmt.Fprintf(out, "   Repositories: %d configured\n", len(current.cfg.GitRepositories))
		}
		fmt.Fprintln(out)

		// Step 2: Local state
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking local state..."))
		fmt.Fprintln(out, successStyle.Render("✅ State database open"))
		if healthcheckDetail {
			fmt.Fprintf(out, "   Directory: %s\n", current.paths.BaseDir)
			fmt.Fprintf(out, "   Database: %s\n", current.paths.DatabasePath())
		}
		if drafts, err := current.drafts.List(); err != nil {
			internal.LogWarn("Failed to read drafts: %v", err)
			fmt.Fprintln(out, warningStyle.Render("⚠️  Could not read drafts:"), err)
		} else if len(drafts) > 0 {
			fmt.Fprintf(out, "   %d draft(s) waiting, see `jtrac drafts`\n", len(drafts))
		}
		fmt.Fprintln(out)

		// Step 3: Session
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking session..."))
		signedIn := current.session.State() == auth.StateAuthenticated
		if signedIn {
			session := current.session.Session()
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Signed in as %s", orDefault(session.FullName(), session.EmployeeID))))
			if healthcheckDetail && session.ExpiresAt > 0 {
				fmt.Fprintf(out, "   Token expires: %s\n", time.Unix(session.ExpiresAt, 0).Local().Format(time.RFC3339))
			}
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Not signed in"))
			if healthcheckDetail {
				fmt.Fprintln(out, "   No stored token, or it was malformed or expired")
			}
		}
		fmt.Fprintln(out)

		// Step 4: Backend
		fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting backend..."))
		ctx, cancel := context.WithTimeout(cmd.Context(), current.cfg.RequestTimeout())
		defer cancel()
		start := time.Now()
		pingErr := current.client.Ping(ctx)
		if pingErr != nil {
			internal.LogDebug("Ping %s failed: %v", current.cfg.APIURL, pingErr)
			fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), pingErr)
		} else {
			fmt.Fprintln(out, successStyle.Render("✅ Backend reachable"))
			if healthcheckDetail {
				fmt.Fprintf(out, "   Round trip: %s\n", time.Since(start).Round(time.Millisecond))
			}
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)

		switch {
		case pingErr != nil:
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			fmt.Fprintf(out, "   • Check api_url (%s) and that the backend is running\n", current.cfg.APIURL)
			return fmt.Errorf("health check failed: %w", pingErr)
		case !signedIn:
			fmt.Fprintln(out, warningStyle.Render("⚠️  Backend reachable but not signed in"))
			fmt.Fprintln(out, "   • Run `jtrac login`")
			return nil
		default:
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetail, "detail", "d", false, "Show detailed diagnostic information")
}
