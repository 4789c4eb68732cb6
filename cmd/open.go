package cmd

import (
	"fmt"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:   "open <route>",
	Short: "Open a client route, e.g. /app/pdn/IM350",
	Long: `Render the screen behind a client route. Guarded routes (everything
under /app) need a signed-in session.

Routes:
  /                    sign in
  /signup              sign up
  /app                 home (the All-GIT list)
  /app/workspace       every PDN
  /app/my-pdn          your PDNs
  /app/new-pdn         the creation form
  /app/pdn/<id>        one PDN
  /app/git/<repo>      one repository's PDNs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		route, params, ok := views.Match(path)
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, pdnHeaderStyle.Render("404"))
			fmt.Fprintln(out, "This page could not be found.")
			return fmt.Errorf("no such route: %s", path)
		}
		if err := guardRoute(path); err != nil {
			return err
		}

		switch route.Name {
		case "signin":
			internal.PrintInfo(out, "Sign in with `jtrac login -e <employee-id>`")
		case "signup":
			internal.PrintInfo(out, "Register with `jtrac signup`")
		case "app":
			return openGit(cmd, views.HomeRoute)
		case "workspace":
			return runList(cmd, views.WorkspaceView(current.client))
		case "my-pdn":
			session, err := signedInSession()
			if err != nil {
				return err
			}
			return runList(cmd, views.MyPDNView(current.client, session.EmployeeID))
		case "git":
			return runList(cmd, views.GitView(current.client, params["gitRepo"]))
		case "pdn":
			return showCmd.RunE(cmd, []string{params["id"]})
		case "new-pdn":
			fmt.Fprintln(out, createCmd.Long)
			fmt.Fprintln(out)
			fmt.Fprintln(out, createCmd.Example)
		}
		return nil
	},
}

func openGit(cmd *cobra.Command, path string) error {
	_, params, _ := views.Match(path)
	return runList(cmd, views.GitView(current.client, params["gitRepo"]))
}

func init() {
	rootCmd.AddCommand(openCmd)
}
