package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fleetpass/fleetctl/internal/model"
)

var (
	colorModeValues        = []string{"auto", "always", "never"}
	vehicleStatusValues    = []string{string(model.StatusAvailable), string(model.StatusRented), string(model.StatusMaintenance), string(model.StatusInactive)}
	vehicleConditionValues = []string{string(model.ConditionNew), string(model.ConditionUsed), string(model.ConditionCertifiedPreOwned)}
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Print a completion script for your shell. Besides commands and flags it
completes the fixed values of --color, --status and --condition.

Examples:
  source <(fleetctl completion bash)
  fleetctl completion zsh > "${fpath[1]}/_fleetctl"
  fleetctl completion fish > ~/.config/fish/completions/fleetctl.fish
  fleetctl completion powershell | Out-String | Invoke-Expression

Start a new shell after installing the script.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)

	completionCmd.Flags().Bool("no-descriptions", false, "omit completion descriptions")
}

func runCompletion(cmd *cobra.Command, args []string) error {
	noDesc, _ := cmd.Flags().GetBool("no-descriptions")
	w := cmd.OutOrStdout()

	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, !noDesc)
	case "zsh":
		if noDesc {
			return rootCmd.GenZshCompletionNoDesc(w)
		}
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, !noDesc)
	case "powershell":
		if noDesc {
			return rootCmd.GenPowerShellCompletion(w)
		}
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	}
	return nil
}

// completeEnum offers values for flag and suppresses file completion
func completeEnum(cmd *cobra.Command, flag string, values []string) {
	cobra.CheckErr(cmd.RegisterFlagCompletionFunc(flag,
		cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)))
}
