package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fleetpass/fleetctl/internal/auth"
	"github.com/fleetpass/fleetctl/internal/output"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in to the FleetPass API with your staff email and password.

The returned token and profile are stored in the session file
(session.file) and reused by later commands until you run 'fleetctl logout'.

Examples:
  fleetctl login                                   # Prompt for email and password
  fleetctl login --email admin@fleetpass.example   # Prompt for the password only
  echo "$PASS" | fleetctl login --email admin@fleetpass.example --password-stdin`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("email", "e", "", "account email")
	loginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	email, _ := cmd.Flags().GetString("email")
	passwordStdin, _ := cmd.Flags().GetBool("password-stdin")

	if passwordStdin && email == "" {
		return &output.CLIError{
			Summary:  "--email is required with --password-stdin",
			ExitCode: output.ExitUsageError,
		}
	}

	if email == "" {
		var err error
		if email, err = printer.Prompt("Email"); err != nil {
			return &output.CLIError{Summary: "no email given", ExitCode: output.ExitUsageError}
		}
	}

	password, err := readPassword(cmd, passwordStdin)
	if err != nil {
		return err
	}

	if err := authMgr.Login(cmd.Context(), email, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return &output.CLIError{
				Summary:  "Invalid email or password",
				ExitCode: output.ExitAuthRequired,
			}
		}
		return &output.CLIError{
			Summary:  "could not save the session",
			Detail:   err.Error(),
			ExitCode: output.ExitGeneral,
		}
	}

	p, _ := authMgr.Principal()
	printer.Success("Logged in as %s (%s)", p.DisplayName(), p.PrimaryRole())
	printer.PrintHints("login")
	return nil
}

func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading password from stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", &output.CLIError{
			Summary:    "cannot prompt for a password without a terminal",
			Suggestion: "Use --password-stdin",
			ExitCode:   output.ExitUsageError,
		}
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(data), nil
}
