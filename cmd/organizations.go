package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fleetpass/fleetctl/internal/guard"
	"github.com/fleetpass/fleetctl/internal/model"
	"github.com/fleetpass/fleetctl/internal/output"
	"github.com/fleetpass/fleetctl/internal/view"
)

var organizationsCmd = guard.Protect(&cobra.Command{
	Use:     "organizations",
	Aliases: []string{"orgs", "org"},
	Short:   "Manage organizations",
	Long: `List, create and delete organizations.

Examples:
  fleetctl organizations list
  fleetctl organizations create --name "Acme Rentals" --slug acme
  fleetctl organizations delete <id>`,
})

var organizationsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List organizations",
	Args:    cobra.NoArgs,
	RunE:    runOrganizationsList,
}

var organizationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an organization",
	Args:  cobra.NoArgs,
	RunE:  runOrganizationsCreate,
}

var organizationsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an organization",
	Args:    cobra.ExactArgs(1),
	RunE:    runOrganizationsDelete,
}

func init() {
	rootCmd.AddCommand(organizationsCmd)
	organizationsCmd.AddCommand(organizationsListCmd, organizationsCreateCmd, organizationsDeleteCmd)

	organizationsListCmd.Flags().Bool("json", false, "output as JSON")

	organizationsCreateCmd.Flags().String("name", "", "organization name")
	organizationsCreateCmd.Flags().String("slug", "", "URL-friendly identifier")

	organizationsDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

func runOrganizationsList(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	v := view.NewOrganizationsView(client)
	defer v.Unmount()
	orgs, err := v.Load(cmd.Context())
	if err != nil {
		return apiFailure(err)
	}

	if jsonOutput {
		return printer.JSON(orgs)
	}
	return renderOrganizations(printer, orgs)
}

func renderOrganizations(printer *output.Printer, orgs []model.Organization) error {
	if len(orgs) == 0 {
		printer.Info("No organizations found")
		return nil
	}

	printer.Header("Organizations")
	table := printer.Table([]string{"NAME", "SLUG", "STATUS", "CREATED", "ID"})
	for _, o := range orgs {
		table.AddRow(
			printer.Bold(o.Name),
			o.Slug,
			printer.ActiveBadge(o.IsActive),
			formatDate(o.CreatedAt),
			printer.Dim(o.ID),
		)
	}
	return table.Render()
}

func runOrganizationsCreate(cmd *cobra.Command, args []string) error {
	printer := newPrinter()

	name, _ := cmd.Flags().GetString("name")
	slug, _ := cmd.Flags().GetString("slug")

	v := view.NewOrganizationsView(client)
	defer v.Unmount()
	if err := v.Create(cmd.Context(), model.CreateOrganizationRequest{Name: name, Slug: slug}); err != nil {
		return apiFailure(err)
	}

	printer.Success("Created organization %s", printer.Bold(name))
	if orgs, ok := v.State().Data(); ok {
		if err := renderOrganizations(printer, orgs); err != nil {
			return err
		}
	}
	printer.PrintHints("organizations create")
	return nil
}

func runOrganizationsDelete(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	id := args[0]
	if err := validateID("organization", id); err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")

	v := view.NewOrganizationsView(client)
	defer v.Unmount()
	err := v.Delete(cmd.Context(), id, confirmer(printer, yes))
	if errors.Is(err, view.ErrCancelled) {
		printer.Info("Cancelled")
		return nil
	}
	if err != nil {
		return apiFailure(err)
	}

	printer.Success("Deleted organization %s", id)
	return nil
}
