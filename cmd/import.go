package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fleetpass/fleetctl/internal/bulk"
	"github.com/fleetpass/fleetctl/internal/guard"
	"github.com/fleetpass/fleetctl/internal/model"
	"github.com/fleetpass/fleetctl/internal/output"
	"github.com/fleetpass/fleetctl/internal/view"
)

var importCmd = guard.Protect(&cobra.Command{
	Use:   "import",
	Short: "Bulk import vehicles from CSV",
	Long: `Import many vehicles at once from a CSV file.

Start from the template, fill in one vehicle per row, then upload it to a
location. Rows are imported independently; failed rows are listed with
their errors.

Examples:
  fleetctl import template                      # Write vehicle_upload_template.csv
  fleetctl import template -o - > fleet.csv     # Template to stdout
  fleetctl import upload --org <id> --location <id> --file fleet.csv`,
})

var importUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a CSV file of vehicles",
	Args:  cobra.NoArgs,
	RunE:  runImportUpload,
}

var importTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the CSV import template",
	Args:  cobra.NoArgs,
	RunE:  runImportTemplate,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importUploadCmd, importTemplateCmd)

	importUploadCmd.Flags().String("org", "", "organization id")
	importUploadCmd.Flags().String("location", "", "location id (must belong to the organization)")
	importUploadCmd.Flags().StringP("file", "f", "", "CSV file to upload")
	importUploadCmd.Flags().Bool("no-redirect", false, "do not show the vehicle list after a complete import")

	importTemplateCmd.Flags().StringP("output", "o", bulk.TemplateFileName, "output path, or - for stdout")
	importTemplateCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func runImportUpload(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	ctx := cmd.Context()

	orgID, _ := cmd.Flags().GetString("org")
	locationID, _ := cmd.Flags().GetString("location")
	path, _ := cmd.Flags().GetString("file")
	noRedirect, _ := cmd.Flags().GetBool("no-redirect")

	if missing := missingUploadFlags(orgID, locationID, path); len(missing) > 0 {
		return &output.CLIError{
			Summary:    bulk.MsgMissingInputs,
			Detail:     "missing " + strings.Join(missing, ", "),
			Suggestion: "Pass --org, --location and --file",
			ExitCode:   output.ExitUsageError,
		}
	}
	if err := validateID("organization", orgID); err != nil {
		return err
	}
	if err := validateID("location", locationID); err != nil {
		return err
	}

	var (
		orgs []model.Organization
		locs []model.Location
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orgs, err = client.ListOrganizations(gctx)
		return err
	})
	g.Go(func() (err error) {
		locs, err = client.ListLocations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return apiFailure(&view.Error{Message: "Failed to fetch organizations and locations", Err: err})
	}

	wf := bulk.New(client, orgs, locs,
		bulk.WithRedirectDelay(cfg.Bulk.RedirectDelay),
		bulk.WithLogger(logger),
	)

	if !hasOrganization(wf.Organizations(), orgID) {
		return &output.CLIError{
			Summary:    fmt.Sprintf("unknown organization: %s", orgID),
			Suggestion: "Run 'fleetctl organizations list' to see available organizations",
			ExitCode:   output.ExitValidationError,
		}
	}
	wf.SelectOrganization(orgID)
	if err := wf.SelectLocation(locationID); err != nil {
		return &output.CLIError{
			Summary:    wf.Err(),
			Detail:     err.Error(),
			Suggestion: fmt.Sprintf("Run 'fleetctl locations list --org %s'", orgID),
			ExitCode:   output.ExitValidationError,
		}
	}
	if _, err := os.Stat(path); err != nil {
		return &output.CLIError{
			Summary:  fmt.Sprintf("cannot read %s", path),
			Detail:   err.Error(),
			ExitCode: output.ExitUsageError,
		}
	}
	f := bulk.FileFromPath(path)
	if err := wf.SelectFile(&f); err != nil {
		return &output.CLIError{
			Summary:    wf.Err(),
			Detail:     fmt.Sprintf("%s has type %s", f.Name, f.DeclaredType),
			Suggestion: "Run 'fleetctl import template' for a file in the expected format",
			ExitCode:   output.ExitValidationError,
		}
	}

	if wf.Stage() == bulk.StageFileSelected {
		printer.Info("Uploading %s...", path)
	}
	out, err := wf.Submit(ctx)
	if errors.Is(err, bulk.ErrIncomplete) {
		return &output.CLIError{
			Summary:    wf.Err(),
			Suggestion: "Pass --org, --location and --file",
			ExitCode:   output.ExitUsageError,
		}
	}
	if err != nil {
		return apiFailure(&view.Error{Message: wf.Err(), Err: err})
	}

	renderBulkResult(printer, out.Result)

	if out.RedirectTo == "" {
		return &output.CLIError{
			Summary:    fmt.Sprintf("%d of %d vehicles failed to import", out.Result.Failed, out.Result.Total),
			Detail:     fmt.Sprintf("%d imported, %d failed", out.Result.Success, out.Result.Failed),
			Suggestion: "Fix the listed rows and upload them again",
			ExitCode:   output.ExitValidationError,
		}
	}

	printer.Success("All %d vehicles imported", out.Result.Success)
	if noRedirect {
		printer.PrintHints("import upload")
		return nil
	}

	select {
	case <-ctx.Done():
		return nil
	case <-time.After(out.After):
	}
	vehiclesListCmd.SetContext(ctx)
	return runVehiclesList(vehiclesListCmd, nil)
}

func missingUploadFlags(orgID, locationID, path string) []string {
	var missing []string
	if orgID == "" {
		missing = append(missing, "--org")
	}
	if locationID == "" {
		missing = append(missing, "--location")
	}
	if path == "" {
		missing = append(missing, "--file")
	}
	return missing
}

func hasOrganization(orgs []model.Organization, id string) bool {
	for _, o := range orgs {
		if o.ID == id {
			return true
		}
	}
	return false
}

// renderBulkResult prints the counts and every row error. Row errors are
// printed even in quiet mode.
func renderBulkResult(printer *output.Printer, res model.BulkUploadResult) {
	printer.Header("Upload Results")
	printer.Field("Total", fmt.Sprint(res.Total))
	printer.Field("Success", fmt.Sprint(res.Success))
	printer.Field("Failed", fmt.Sprint(res.Failed))
	for _, e := range res.Errors {
		printer.Error("%s", e)
	}
}

func runImportTemplate(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	data := bulk.Template()
	if path == "-" {
		_, err := printer.Out().Write(data)
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return &output.CLIError{
			Summary:    fmt.Sprintf("%s already exists", path),
			Suggestion: "Use --force to overwrite or -o to choose another path",
			ExitCode:   output.ExitUsageError,
		}
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	printer.Success("Wrote %s (%d columns, required: %s)",
		path, len(bulk.TemplateHeader), strings.Join(bulk.RequiredColumns, ", "))
	printer.PrintHints("import template")
	return nil
}
