// Package cmd contains all CLI commands for fleetctl
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fleetpass/fleetctl/internal/api"
	"github.com/fleetpass/fleetctl/internal/auth"
	"github.com/fleetpass/fleetctl/internal/config"
	"github.com/fleetpass/fleetctl/internal/guard"
	"github.com/fleetpass/fleetctl/internal/logging"
	"github.com/fleetpass/fleetctl/internal/output"
	"github.com/fleetpass/fleetctl/internal/session"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	noPersist bool
	colorMode string
	apiURL    string
	cfg       *config.Config
	logger    *slog.Logger
	version   = "dev"

	store   *session.Store
	client  *api.Client
	authMgr *auth.Manager
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "FleetPass fleet management CLI",
	Long: `fleetctl is the staff client for the FleetPass rental platform.

It manages organizations, locations and vehicle inventory through the
FleetPass API, keeps your login session between invocations, and imports
vehicles in bulk from CSV files.

Example usage:
  fleetctl login                         # Sign in and store the session
  fleetctl vehicles list                 # List the vehicle inventory
  fleetctl import template               # Write the CSV import template
  fleetctl import upload --org <id> --location <id> --file fleet.csv
  fleetctl logout                        # Forget the stored session`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(cmd); err != nil {
			return &output.CLIError{
				Summary:    "invalid configuration",
				Detail:     err.Error(),
				Suggestion: "Check .fleetctl.yaml syntax or use --config flag",
				ExitCode:   output.ExitConfigError,
			}
		}
		initSession()
		return checkAccess(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return output.ExitSuccess
	}
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return output.ExitGeneral
}

// ReportError prints err to stderr in the structured format
func ReportError(err error) {
	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = &output.CLIError{Summary: err.Error(), ExitCode: output.ExitGeneral}
	}
	newPrinter().FormatError(cliErr)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .fleetctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colorize output (auto, always, never)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "FleetPass API base URL (overrides api.url)")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "keep the session in memory for this invocation only")

	completeEnum(rootCmd, "color", colorModeValues)
}

// initConfig reads in config file and ENV variables if set. The logger writes
// to the executing command's stderr.
func initConfig(cmd *cobra.Command) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if apiURL != "" {
		if err := cfg.SetAPIURL(apiURL); err != nil {
			return fmt.Errorf("--api-url: %w", err)
		}
	}
	if noPersist {
		cfg.Session.Persist = false
	}

	mode, err := output.ParseColorMode(colorMode)
	if err != nil {
		return err
	}

	logger, err = logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		NoColor: !output.ResolveColors(mode, cfg.Output.Colors),
		Verbose: verbose,
	})
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		"api_url", cfg.API.URL,
		"session_file", cfg.Session.File,
		"persist", cfg.Session.Persist,
	)

	return nil
}

// initSession restores the stored session and wires the client and auth
// manager around it. A missing or unreadable session simply starts logged out.
func initSession() {
	var backend session.Backend = session.NewMemoryBackend()
	if cfg.Session.Persist {
		backend = session.NewFileBackend(cfg.Session.File)
	}

	store = session.NewStore(backend, logger)
	sess := store.Restore()
	client = api.NewClient(cfg.API.URL, store, logger)
	authMgr = auth.NewManager(client, store, logger)

	if sess.IsAuthenticated() {
		logger.Debug("session restored", "email", sess.Principal.Email)
	}
}

// checkAccess runs the route guard for the command about to execute
func checkAccess(cmd *cobra.Command) error {
	decision := guard.New(authMgr).CheckCommand(cmd)
	if decision.Allow {
		return nil
	}
	logger.Debug("guard redirect", "command", cmd.CommandPath(), "to", decision.RedirectTo)
	return &output.CLIError{
		Summary:    "login required",
		Detail:     fmt.Sprintf("'%s' needs an active session", cmd.CommandPath()),
		Suggestion: fmt.Sprintf("Run 'fleetctl %s'", decision.RedirectTo),
		ExitCode:   output.ExitAuthRequired,
	}
}

// newPrinter creates a printer bound to the root command's streams
func newPrinter() *output.Printer {
	mode, err := output.ParseColorMode(colorMode)
	if err != nil {
		mode = output.ColorAuto
	}
	colors := true
	if cfg != nil {
		colors = cfg.Output.Colors
	}
	return output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: colors,
		Quiet:        quiet,
		Out:          rootCmd.OutOrStdout(),
		Err:          rootCmd.ErrOrStderr(),
		In:           rootCmd.InOrStdin(),
	})
}
