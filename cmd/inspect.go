package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/auth"
	"github.com/spf13/cobra"
)

var (
	inspectFormat string
)

// stateEntry is one local-storage row as shown by inspect
type stateEntry struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Size    int    `json:"size"`
	Summary string `json:"summary"`
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the local state database",
	Long: `Inspect what jtrac keeps in its local state database:
  • The session token (never printed, only its claims and expiry)
  • Saved drafts
  • Any other keys

Examples:
  jtrac inspect                          # Table of stored keys
  jtrac inspect --format json            # Same, as JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := internal.ListItems(current.db, "%")
		if err != nil {
			return &internal.StorageError{Path: current.paths.DatabasePath(), Op: "read", Err: err}
		}

		entries := make([]stateEntry, 0, len(pairs))
		for _, pair := range pairs {
			entries = append(entries, describeItem(pair, current.cfg.TokenKey, time.Now()))
		}

		out := cmd.OutOrStdout()
		switch inspectFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		case "text", "":
			return displayState(out, current.paths.DatabasePath(), entries)
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}
	},
}

// describeItem classifies a stored row without revealing the token
func describeItem(pair internal.KeyValuePair, tokenKey string, now time.Time) stateEntry {
	entry := stateEntry{Key: pair.Key, Kind: "other", Size: len(pair.Value)}

	switch {
	case pair.Key == tokenKey:
		entry.Kind = "token"
		entry.Summary = describeToken(pair.Value, now)
	case strings.HasPrefix(pair.Key, "draft:"):
		entry.Kind = "draft"
		entry.Summary = "draft " + strings.TrimPrefix(pair.Key, "draft:")
	default:
		entry.Summary = pair.Value
		// Show first line only for multi-line values
		if first, _, found := strings.Cut(entry.Summary, "\n"); found {
			entry.Summary = first + "..."
		}
		entry.Summary = truncate(entry.Summary, 60)
	}
	return entry
}

func describeToken(token string, now time.Time) string {
	if !auth.IsValidTokenFormat(token) {
		return "malformed"
	}
	claims, err := auth.DecodeToken(token)
	if err != nil {
		return "undecodable"
	}
	state := "valid"
	if auth.IsTokenExpired(token, now) {
		state = "expired"
	}
	summary := fmt.Sprintf("%s, employee %s", state, orDash(claims.EmployeeID()))
	if claims.ExpiresAt != nil {
		summary += ", expires " + claims.ExpiresAt.Local().Format(time.RFC3339)
	}
	return summary
}

func displayState(out io.Writer, dbPath string, entries []stateEntry) error {
	fmt.Fprintf(out, "📋 Database: %s\n", dbPath)
	if len(entries) == 0 {
		fmt.Fprintln(out, "⚠️  No stored keys")
		return nil
	}
	fmt.Fprintf(out, "📊 Found %d key(s)\n\n", len(entries))

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Key")+"\t"+titleStyle.Render("Kind")+"\t"+titleStyle.Render("Size")+"\t"+titleStyle.Render("Summary")+"\t")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", idStyle.Render(e.Key), e.Kind, e.Size, e.Summary)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
}
