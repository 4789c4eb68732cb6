package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/api"
	"github.com/jtrac-dev/jtrac/internal/auth"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configFile string
	apiURL     string
	stateDir   string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// routeAnnotation names the client route a command renders. The route table
// decides whether the command needs a signed-in session.
const routeAnnotation = "route"

var errNotSignedIn = errors.New("not signed in, run `jtrac login`")

// app is everything a command run needs, built before the command runs and
// torn down when Execute returns.
type app struct {
	cfg     *internal.Config
	paths   internal.StatePaths
	db      *sql.DB
	session *auth.Controller
	client  *api.Client
	drafts  *internal.DraftStore
	cancel  context.CancelFunc
}

var current *app

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jtrac",
	Short: "Track Problem Description Notes from the terminal",
	Long: `A command line client for the PDN tracking backend.

Sign in once and the session is kept in the local state directory until the
token expires. When it does, the running command stops and you are asked to
sign in again.

Features:
  • List PDNs per workspace, per repository or the ones you created
  • Search, filter and sort lists
  • View a PDN with its components and tracking history
  • Post updates with comments, status changes, reassignment and files
  • Create PDNs, keeping failed submissions as drafts
  • Export a PDN (JSONL, Markdown, YAML, JSON)
  • Browse interactively

Quick Start:
  jtrac login -e 2732290                # Sign in
  jtrac list git All-GIT                # All PDNs, newest first
  jtrac show IM350                      # One PDN with its history
  jtrac update IM350 -m "retested"      # Add a comment`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, opens local state, restores the session and
// applies the route guard for the command about to run.
func setup(cmd *cobra.Command, args []string) error {
	internal.SetVerbose(verbose)

	v := internal.NewConfigViper()
	flags := cmd.Root().PersistentFlags()
	_ = v.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = v.BindPFlag("state_dir", flags.Lookup("state-dir"))

	cfg, err := internal.LoadConfig(v, configFile)
	if err != nil {
		return err
	}

	paths, err := internal.DetectStatePaths(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("failed to get state paths: %w", err)
	}
	if err := paths.Ensure(); err != nil {
		return err
	}
	db, err := internal.OpenDatabase(paths.DatabasePath())
	if err != nil {
		return &internal.StorageError{Path: paths.DatabasePath(), Op: "open", Err: err}
	}

	store := auth.NewSQLiteStore(db, cfg.TokenKey)
	controller := auth.NewController(store)
	controller.Init()

	// derive from the root's context: a subcommand keeps the context of its
	// previous run
	ctx, cancel := context.WithCancel(cmd.Root().Context())
	cmd.SetContext(ctx)

	current = &app{
		cfg:     cfg,
		paths:   paths,
		db:      db,
		session: controller,
		client:  api.New(cfg.APIURL, api.WithTokenSource(store), api.WithTimeout(cfg.RequestTimeout())),
		drafts:  internal.NewDraftStore(db),
		cancel:  cancel,
	}

	// the watchdog's logout stops whatever the command is doing
	controller.OnChange(func(state auth.State, _ *internal.Session) {
		if state == auth.StateUnauthenticated {
			internal.LogDebug("Session ended, cancelling %s", cmd.Name())
			cancel()
		}
	})

	if route, ok := cmd.Annotations[routeAnnotation]; ok {
		return guardRoute(route)
	}
	return nil
}

// guardRoute applies the route guard to path
func guardRoute(path string) error {
	route, _, ok := views.Match(path)
	if !ok || !route.Guarded {
		return nil
	}
	decision := auth.Guard(current.session.State())
	switch decision.Action {
	case auth.Render:
		return nil
	case auth.Redirect:
		return errNotSignedIn
	default:
		return fmt.Errorf("session is still initializing")
	}
}

// teardown releases what setup acquired
func teardown() {
	if current == nil {
		internal.SyncLogger()
		return
	}
	current.session.Close()
	current.cancel()
	if err := current.db.Close(); err != nil {
		internal.LogWarn("Failed to close state database: %v", err)
	}
	current = nil
	internal.SyncLogger()
}

// commandError turns view-level outcomes into what the user should read.
// A redirect to the public route means the backend no longer accepts the
// session; a cancelled context after logout means the session expired.
func commandError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var redirect *views.RedirectError
	if errors.As(err, &redirect) && redirect.To == auth.PublicRoute {
		internal.LogDebug("Redirected to %s: %v", redirect.To, redirect.Cause)
		return errors.New("session rejected by the server, run `jtrac login`")
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil && current != nil &&
		current.session.State() == auth.StateUnauthenticated {
		return errors.New("session expired, run `jtrac login`")
	}
	return err
}

// signedInSession returns the current session; guarded commands always have one
func signedInSession() (*internal.Session, error) {
	s := current.session.Session()
	if s == nil {
		return nil, errNotSignedIn
	}
	return s, nil
}

func init() {
	cobra.OnFinalize(teardown)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is config.yaml in the state directory)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (default "+internal.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory holding the session and drafts (default ~/.jtrac)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
