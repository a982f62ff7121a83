package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the effective fleetctl configuration after merging
.fleetctl.yaml, FLEETCTL_* environment variables and flags.

Examples:
  fleetctl config              # Show all config
  fleetctl config --json       # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("json", false, "output as JSON")
}

func runConfig(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printer.JSON(cfg)
	}

	printer.Header("Current Configuration")

	table := printer.Table([]string{"KEY", "VALUE"})
	table.AddRow("api.url", cfg.API.URL)
	table.AddRow("session.file", cfg.Session.File)
	table.AddRow("session.persist", fmt.Sprintf("%v", cfg.Session.Persist))
	table.AddRow("logging.level", cfg.Logging.Level)
	table.AddRow("logging.format", cfg.Logging.Format)
	table.AddRow("output.colors", fmt.Sprintf("%v", cfg.Output.Colors))
	table.AddRow("bulk.redirect_delay", cfg.Bulk.RedirectDelay.String())
	if err := table.Render(); err != nil {
		return err
	}

	printer.Print("")
	if authMgr.IsAuthenticated() {
		p, _ := authMgr.Principal()
		printer.Info("Session: logged in as %s", p.Email)
	} else {
		printer.Info("Session: %s", printer.Dim("not logged in"))
	}
	printer.PrintHints("config")
	return nil
}

