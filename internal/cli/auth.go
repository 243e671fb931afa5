package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasker/internal/app"
	"github.com/runoshun/tasker/internal/domain"
)

// Errors for missing account input.
var (
	errEmailRequired    = errors.New("email is required")
	errPasswordRequired = errors.New("password is required")
	errNameRequired     = errors.New("name is required")
)

// newLoginCommand creates the login command.
func newLoginCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Email    string
		Password string
	}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the task server",
		Long: `Sign in and remember the credential for later commands.

Missing values are prompted for. The password is read without echo
when stdin is a terminal.

Examples:
  # Prompt for email and password
  tasker login

  # Non-interactive
  tasker login --email me@example.com --password secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd)

			email, err := valueOrPrompt(opts.Email, func() (string, error) { return p.readLine("Email: ") })
			if err != nil {
				return err
			}
			if email == "" {
				return errEmailRequired
			}
			password, err := valueOrPrompt(opts.Password, func() (string, error) { return p.readPassword("Password: ") })
			if err != nil {
				return err
			}
			if password == "" {
				return errPasswordRequired
			}

			if err := c.Session.Login(cmd.Context(), domain.LoginInput{Email: email, Password: password}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayIdentity(c.Session.Identity(), email))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Account password")

	return cmd
}

// newRegisterCommand creates the register command.
func newRegisterCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name     string
		Email    string
		Password string
	}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the task server.

Registration does not sign you in; run 'tasker login' afterwards.

Examples:
  tasker register --name Alice --email alice@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd)

			name, err := valueOrPrompt(opts.Name, func() (string, error) { return p.readLine("Name: ") })
			if err != nil {
				return err
			}
			if name == "" {
				return errNameRequired
			}
			email, err := valueOrPrompt(opts.Email, func() (string, error) { return p.readLine("Email: ") })
			if err != nil {
				return err
			}
			if email == "" {
				return errEmailRequired
			}
			password, err := valueOrPrompt(opts.Password, func() (string, error) { return p.readPassword("Password: ") })
			if err != nil {
				return err
			}
			if password == "" {
				return errPasswordRequired
			}

			if err := c.Session.Register(cmd.Context(), domain.RegisterInput{
				Name:     name,
				Email:    email,
				Password: password,
			}); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run 'tasker login' to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Account password")

	return cmd
}

// newLogoutCommand creates the logout command.
func newLogoutCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A broken credential file is removed below anyway.
			_ = c.Session.Restore()
			if err := c.Session.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
	return cmd
}

// newWhoamiCommand creates the whoami command.
func newWhoamiCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireSession(cmd, c); err != nil {
				return err
			}
			printIdentity(cmd.OutOrStdout(), c.Session.Identity(), c.AppConfig.Server.URL)
			return nil
		},
	}
	return cmd
}

// valueOrPrompt returns v, or asks for it when empty.
func valueOrPrompt(v string, ask func() (string, error)) (string, error) {
	if v != "" {
		return v, nil
	}
	return ask()
}

// requireSession resolves the stored session and fails unless it grants access.
func requireSession(cmd *cobra.Command, c *app.Container) error {
	if err := c.Session.Restore(); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	if domain.GuardRoute(c.Session.Status()) != domain.RouteProtected {
		return domain.ErrNotAuthenticated
	}
	return nil
}

// displayIdentity returns the best short label for the account.
func displayIdentity(id *domain.Identity, fallback string) string {
	if id == nil {
		return fallback
	}
	switch {
	case id.Name != "" && id.Email != "":
		return fmt.Sprintf("%s <%s>", id.Name, id.Email)
	case id.Name != "":
		return id.Name
	case id.Email != "":
		return id.Email
	case fallback != "":
		return fallback
	default:
		return fmt.Sprintf("user %d", id.ID)
	}
}

// printIdentity prints the account details for whoami.
func printIdentity(w io.Writer, id *domain.Identity, server string) {
	if id == nil {
		_, _ = fmt.Fprintln(w, "Signed in (no profile stored)")
		_, _ = fmt.Fprintf(w, "Server: %s\n", server)
		return
	}
	if id.Name != "" {
		_, _ = fmt.Fprintf(w, "Name: %s\n", id.Name)
	}
	if id.Email != "" {
		_, _ = fmt.Fprintf(w, "Email: %s\n", id.Email)
	}
	if id.ID > 0 {
		_, _ = fmt.Fprintf(w, "ID: %d\n", id.ID)
	}
	_, _ = fmt.Fprintf(w, "Server: %s\n", server)
}
