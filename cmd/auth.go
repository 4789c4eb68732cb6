package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/jtrac-dev/jtrac/internal/auth"
	"github.com/jtrac-dev/jtrac/internal/views"
	"github.com/spf13/cobra"
)

var (
	loginForm  views.SigninForm
	signupForm views.SignupForm
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your employee ID",
	Long: `Sign in and keep the session in the local state directory.

The password is read from the first line of standard input when --password
is not given.`,
	Example: `  jtrac login -e 2732290 -p secret
  echo "$JTRAC_PASSWORD" | jtrac login -e 2732290`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: auth.PublicRoute},
	RunE: func(cmd *cobra.Command, args []string) error {
		form := loginForm
		if form.Password == "" {
			form.Password = readLine(cmd.InOrStdin())
		}
		if err := form.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		var resp *internal.Envelope[internal.AuthData]
		err := internal.ShowProgress(ctx, "Signing in", func() error {
			var loginErr error
			resp, loginErr = current.client.Login(ctx, form.Request())
			return loginErr
		})
		if err != nil {
			internal.LogError("Login error: %v", err)
			return fmt.Errorf("sign in failed, please try again: %w", err)
		}

		if err := current.session.Login(resp); err != nil {
			if errors.Is(err, auth.ErrLoginRejected) {
				return fmt.Errorf("sign in failed: %s", orDefault(resp.Message, "invalid credentials"))
			}
			return err
		}

		session := current.session.Session()
		out := cmd.OutOrStdout()
		internal.PrintSuccess(out, fmt.Sprintf("Signed in as %s (%s)", orDefault(session.FullName(), session.EmployeeID), orDash(session.Role)))
		fmt.Fprintln(out, idStyle.Render("💡 Tip: `jtrac open "+views.HomeRoute+"`"))
		return nil
	},
}

// signupCmd represents the signup command
var signupCmd = &cobra.Command{
	Use:         "signup",
	Short:       "Register a new employee account",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: "/signup"},
	RunE: func(cmd *cobra.Command, args []string) error {
		form := signupForm
		if form.Password == "" {
			form.Password = readLine(cmd.InOrStdin())
			form.ConfirmPassword = form.Password
		}
		if err := form.Validate(); err != nil {
			return err
		}
		if err := form.CheckChoices(current.cfg); err != nil {
			return err
		}

		ctx := cmd.Context()
		err := internal.ShowProgress(ctx, "Creating account", func() error {
			_, signupErr := current.client.Signup(ctx, form.Request())
			return signupErr
		})
		if err != nil {
			var apiErr *internal.APIError
			if errors.As(err, &apiErr) && apiErr.Message != "" {
				return fmt.Errorf("sign up failed: %s", apiErr.Message)
			}
			return fmt.Errorf("sign up failed, please try again: %w", err)
		}

		internal.PrintSuccess(cmd.OutOrStdout(), "Account created, sign in with `jtrac login -e "+form.EmployeeID+"`")
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wasSignedIn := current.session.State() == auth.StateAuthenticated
		current.session.Logout()
		if wasSignedIn {
			internal.PrintSuccess(cmd.OutOrStdout(), "Signed out")
		} else {
			internal.PrintInfo(cmd.OutOrStdout(), "Not signed in")
		}
		return nil
	},
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the signed-in employee",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{routeAnnotation: "/app"},
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := signedInSession()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, pdnHeaderStyle.Render("👤 "+orDefault(session.FullName(), "Unknown")))
		fmt.Fprintf(out, "%s %s\n", fieldLabelStyle.Render("Employee ID:"), session.EmployeeID)
		fmt.Fprintf(out, "%s %s\n", fieldLabelStyle.Render("Role:"), orDash(session.Role))
		if session.ExpiresAt > 0 {
			expires := time.Unix(session.ExpiresAt, 0)
			fmt.Fprintf(out, "%s %s (in %s)\n", fieldLabelStyle.Render("Expires:"),
				expires.Local().Format(time.RFC3339), time.Until(expires).Round(time.Minute))
		}
		return nil
	},
}

// readLine reads one line, without its line ending
func readLine(r io.Reader) string {
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func init() {
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&loginForm.EmployeeID, "employee-id", "e", "", "Employee ID")
	loginCmd.Flags().StringVarP(&loginForm.Password, "password", "p", "", "Password (read from stdin if omitted)")

	signupCmd.Flags().StringVarP(&signupForm.EmployeeID, "employee-id", "e", "", "Employee ID")
	signupCmd.Flags().StringVar(&signupForm.FullName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&signupForm.Email, "email", "", "Email address")
	signupCmd.Flags().StringVar(&signupForm.Department, "department", "", "Department / role")
	signupCmd.Flags().StringVarP(&signupForm.Password, "password", "p", "", "Password (read from stdin if omitted)")
	signupCmd.Flags().StringVar(&signupForm.ConfirmPassword, "confirm-password", "", "Repeat the password")
}
