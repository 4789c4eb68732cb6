package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var (
	createForm    views.CreateForm
	createDraftID string
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a PDN",
	Long: `Create a new PDN on your behalf.

Description, problem source, problem statement, workspace, impacted area,
sub-module and component are required. Select-style fields must hold one of
the configured options.

If the backend rejects the submission the form is kept as a draft. Resume it
with --draft <id>; flags given alongside override the draft's values.`,
	Example: `  jtrac create -d "Login button unresponsive" --problem-source IM \
    --problem-id IM-4711 --workspace IM --impacted-area Policy \
    --sub-module OAuth --component src/auth/login.go`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: "/app/new-pdn"},
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := signedInSession()
		if err != nil {
			return err
		}

		form := createForm
		var draft *internal.Draft
		if createDraftID != "" {
			draft, err = current.drafts.Load(createDraftID)
			if err != nil {
				return err
			}
			form = mergeForm(views.CreateFormFromRequest(draft.Form), cmd)
		}

		if err := form.Validate(); err != nil {
			return err
		}
		if err := form.CheckChoices(current.cfg); err != nil {
			return err
		}

		ctx := cmd.Context()
		var route string
		err = internal.ShowProgress(ctx, "Creating PDN", func() error {
			var submitErr error
			route, submitErr = form.Submit(ctx, current.client, session)
			return submitErr
		})
		out := cmd.OutOrStdout()
		if err != nil {
			if errors.Is(err, views.ErrCreateFailed) {
				saveDraft(out, draft, form, err)
			}
			return commandError(ctx, err)
		}

		if draft != nil {
			if err := current.drafts.Delete(draft.ID); err != nil {
				internal.LogWarn("Failed to delete draft %s: %v", draft.ID, err)
			}
		}
		_, params, _ := views.Match(route)
		internal.PrintSuccess(out, fmt.Sprintf("Created PDN %s", params["id"]))
		fmt.Fprintln(out, idStyle.Render(fmt.Sprintf("💡 Tip: `jtrac show %s`", params["id"])))
		return nil
	},
}

// mergeForm lays the flags the user actually passed over a draft's values
func mergeForm(base views.CreateForm, cmd *cobra.Command) views.CreateForm {
	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("description", &base.Description, createForm.Description)
	set("problem-source", &base.ProblemSource, createForm.ProblemSource)
	set("problem-id", &base.ProblemID, createForm.ProblemID)
	set("workspace", &base.Workspace, createForm.Workspace)
	set("module", &base.Module, createForm.Module)
	set("sub-module", &base.SubModule, createForm.SubModule)
	set("product", &base.Product, createForm.Product)
	set("impacted-area", &base.ImpactedArea, createForm.ImpactedArea)
	set("component", &base.Component, createForm.Component)
	return base
}

// saveDraft keeps a rejected form so it can be retried
func saveDraft(out io.Writer, draft *internal.Draft, form views.CreateForm, cause error) {
	if draft == nil {
		draft = &internal.Draft{}
	}
	draft.Form = form.Request(0)
	draft.LastError = cause.Error()
	if err := current.drafts.Save(draft); err != nil {
		internal.LogWarn("Failed to save draft: %v", err)
		return
	}
	internal.PrintWarning(out, fmt.Sprintf("Saved as draft %s, retry with `jtrac create --draft %s`", draft.ID, draft.ID))
}

// draftsCmd lists and removes saved drafts
var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List PDN drafts kept after failed submissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		drafts, err := current.drafts.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(drafts) == 0 {
			fmt.Fprintln(out, headerStyle.Render("📝 No drafts"))
			return nil
		}

		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📝 %d draft(s)", len(drafts))))
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Description")+"\t"+titleStyle.Render("Saved")+"\t"+titleStyle.Render("Last error")+"\t")
		for _, d := range drafts {
			description := truncate(d.Form.Description, 40)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", idStyle.Render(d.ID), orDash(description),
				dateStyle.Render(d.UpdatedAt.Local().Format("2006-01-02 15:04")), orDash(d.LastError))
		}
		return w.Flush()
	},
}

var draftsRemoveCmd = &cobra.Command{
	Use:   "rm <draft-id>...",
	Short: "Remove drafts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if _, err := current.drafts.Load(id); err != nil {
				return err
			}
			if err := current.drafts.Delete(id); err != nil {
				return err
			}
			internal.PrintSuccess(cmd.OutOrStdout(), "Removed draft "+id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd, draftsCmd)
	draftsCmd.AddCommand(draftsRemoveCmd)

	f := createCmd.Flags()
	f.StringVarP(&createForm.Description, "description", "d", "", "What is wrong")
	f.StringVar(&createForm.ProblemSource, "problem-source", "", "Problem source (e.g. IM, CR)")
	f.StringVar(&createForm.ProblemID, "problem-id", "", "Problem statement / ticket id")
	f.StringVar(&createForm.Workspace, "workspace", "", "Workspace")
	f.StringVar(&createForm.Module, "module", "", "Module")
	f.StringVar(&createForm.SubModule, "sub-module", "", "Sub-module of the impacted area")
	f.StringVar(&createForm.Product, "product", "", "Product")
	f.StringVar(&createForm.ImpactedArea, "impacted-area", "", "Impacted area")
	f.StringVar(&createForm.Component, "component", "", "Affected files, one per line")
	f.StringVar(&createDraftID, "draft", "", "Resume a saved draft")
}
