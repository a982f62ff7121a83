package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetpass/fleetctl/internal/guard"
	"github.com/fleetpass/fleetctl/internal/session"
)

var whoamiCmd = guard.Protect(&cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the user of the stored session.

By default the stored profile is shown as-is. --remote fetches the current
profile from the API and replaces the stored one.

Examples:
  fleetctl whoami
  fleetctl whoami --remote
  fleetctl whoami --json`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
})

func init() {
	rootCmd.AddCommand(whoamiCmd)

	whoamiCmd.Flags().Bool("remote", false, "refresh the profile from the API")
	whoamiCmd.Flags().Bool("json", false, "output as JSON")
}

type whoamiOutput struct {
	session.Principal
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func runWhoami(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	remote, _ := cmd.Flags().GetBool("remote")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if remote {
		if _, err := authMgr.Refresh(cmd.Context()); err != nil {
			return apiFailure(err)
		}
	}

	sess := authMgr.Session()
	var p session.Principal
	if sess.Principal != nil {
		p = *sess.Principal
	}
	out := whoamiOutput{Principal: p}
	exp, hasExp := sess.Expiry()
	if hasExp {
		out.ExpiresAt = &exp
	}

	if jsonOutput {
		return printer.JSON(out)
	}

	printer.Header(p.DisplayName())
	printer.Field("Email", p.Email)
	printer.Field("Role", string(p.PrimaryRole()))
	printer.Field("Roles", strings.Join(p.Roles, ", "))
	printer.Field("Permissions", strings.Join(p.Permissions, ", "))
	if p.OrganizationID != nil {
		printer.Field("Organization", *p.OrganizationID)
	}
	printer.Field("User ID", p.ID)
	if hasExp {
		expiry := exp.Local().Format(time.RFC1123)
		if time.Now().After(exp) {
			expiry += " " + printer.Dim("(expired)")
		}
		printer.Field("Token expires", expiry)
	}
	printer.PrintHints("whoami")
	return nil
}
