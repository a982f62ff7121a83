package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fleetpass/fleetctl/internal/output"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Long: `Remove the stored token and profile. No request is sent to the API.

Examples:
  fleetctl logout`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	wasLoggedIn := authMgr.IsAuthenticated()
	if err := authMgr.Logout(); err != nil {
		return &output.CLIError{
			Summary:    "could not remove the session",
			Detail:     err.Error(),
			Suggestion: "Delete " + cfg.Session.File + " manually",
			ExitCode:   output.ExitGeneral,
		}
	}

	if !wasLoggedIn {
		printer.Info("Not logged in")
		return nil
	}
	printer.Success("Logged out")
	printer.PrintHints("logout")
	return nil
}
