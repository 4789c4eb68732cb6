package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var (
	updateComment  string
	updateStatus   string
	updateAssignee string
	updateFiles    []string
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <pdn-id>",
	Short: "Add a comment, status change, reassignment or files to a PDN",
	Long: `Post an update to a PDN's tracking history.

At least one of --comment, --status, --assignee or --file is required. Files
are uploaded as attachments; --file may be repeated.`,
	Example: `  jtrac update IM350 -m "retested on staging" --status Resolved
  jtrac update IM350 --assignee Bob --file trace.log --file screenshot.png`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{routeAnnotation: "/app/pdn/:id"},
	RunE: func(cmd *cobra.Command, args []string) error {
		form := &views.UpdateForm{
			Comment:  updateComment,
			Status:   updateStatus,
			Assignee: strings.TrimSpace(updateAssignee),
			Files:    updateFiles,
		}
		if err := checkStatus(form.Status); err != nil {
			return err
		}

		ctx := cmd.Context()
		detail := views.NewDetail(current.client, args[0])
		err := internal.ShowProgress(ctx, "Posting update", func() error {
			return detail.SubmitUpdate(ctx, form)
		})
		if err != nil {
			return commandError(ctx, err)
		}

		out := cmd.OutOrStdout()
		internal.PrintSuccess(out, fmt.Sprintf("Update added to %s", args[0]))
		if detail.TrackingErr == nil {
			fmt.Fprintln(out)
			displayTracking(out, detail)
		}
		return nil
	},
}

// checkStatus rejects statuses outside the configured list
func checkStatus(status string) error {
	statuses := current.cfg.Statuses
	if status == "" || len(statuses) == 0 || slices.Contains(statuses, status) {
		return nil
	}
	v := &internal.ValidationError{}
	v.Add("status", fmt.Sprintf("Status must be one of %s", strings.Join(statuses, ", ")))
	return v
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVarP(&updateComment, "comment", "m", "", "Comment to add")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status")
	updateCmd.Flags().StringVar(&updateAssignee, "assignee", "", "Reassign to this person")
	updateCmd.Flags().StringArrayVarP(&updateFiles, "file", "f", nil, "Attach a file (repeatable)")
}
