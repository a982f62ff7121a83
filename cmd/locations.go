package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fleetpass/fleetctl/internal/guard"
	"github.com/fleetpass/fleetctl/internal/model"
	"github.com/fleetpass/fleetctl/internal/output"
	"github.com/fleetpass/fleetctl/internal/view"
)

var locationsCmd = guard.Protect(&cobra.Command{
	Use:     "locations",
	Aliases: []string{"location", "loc"},
	Short:   "Manage locations",
	Long: `List, create and delete rental locations.

Examples:
  fleetctl locations list
  fleetctl locations list --org <org-id>
  fleetctl locations create --org <org-id> --name "Downtown" --city Austin --state TX
  fleetctl locations delete <id>`,
})

var locationsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List locations",
	Args:    cobra.NoArgs,
	RunE:    runLocationsList,
}

var locationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a location",
	Args:  cobra.NoArgs,
	RunE:  runLocationsCreate,
}

var locationsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a location",
	Args:    cobra.ExactArgs(1),
	RunE:    runLocationsDelete,
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(locationsListCmd, locationsCreateCmd, locationsDeleteCmd)

	locationsListCmd.Flags().Bool("json", false, "output as JSON")
	locationsListCmd.Flags().String("org", "", "only show locations of this organization")

	f := locationsCreateCmd.Flags()
	f.String("org", "", "owning organization id")
	f.String("name", "", "location name")
	f.String("address1", "", "address line 1")
	f.String("address2", "", "address line 2")
	f.String("city", "", "city")
	f.String("state", "", "state")
	f.String("zip", "", "zip code")
	f.String("country", view.DefaultCountry, "country")
	f.String("phone", "", "phone number")
	f.String("email", "", "contact email")

	locationsDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

func runLocationsList(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	orgID, _ := cmd.Flags().GetString("org")
	if orgID != "" {
		if err := validateID("organization", orgID); err != nil {
			return err
		}
	}

	v := view.NewLocationsView(client)
	defer v.Unmount()
	data, err := v.Load(cmd.Context())
	if err != nil {
		return apiFailure(err)
	}
	if orgID != "" {
		data.Locations = filterLocations(data.Locations, orgID)
	}

	if jsonOutput {
		return printer.JSON(data.Locations)
	}
	return renderLocations(printer, data)
}

func filterLocations(locs []model.Location, orgID string) []model.Location {
	out := make([]model.Location, 0, len(locs))
	for _, l := range locs {
		if l.OrganizationID == orgID {
			out = append(out, l)
		}
	}
	return out
}

func renderLocations(printer *output.Printer, data view.LocationsData) error {
	if len(data.Locations) == 0 {
		printer.Info("No locations found")
		return nil
	}

	printer.Header("Locations")
	table := printer.Table([]string{"NAME", "ORGANIZATION", "CITY", "PHONE", "STATUS", "ID"})
	for _, l := range data.Locations {
		table.AddRow(
			printer.Bold(l.Name),
			data.OrganizationName(l.OrganizationID),
			l.CityState(),
			l.Phone,
			printer.ActiveBadge(l.IsActive),
			printer.Dim(l.ID),
		)
	}
	return table.Render()
}

func runLocationsCreate(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	f := cmd.Flags()

	var req model.CreateLocationRequest
	req.OrganizationID, _ = f.GetString("org")
	req.Name, _ = f.GetString("name")
	req.AddressLine1, _ = f.GetString("address1")
	req.AddressLine2, _ = f.GetString("address2")
	req.City, _ = f.GetString("city")
	req.State, _ = f.GetString("state")
	req.ZipCode, _ = f.GetString("zip")
	req.Country, _ = f.GetString("country")
	req.Phone, _ = f.GetString("phone")
	req.Email, _ = f.GetString("email")

	if req.OrganizationID != "" {
		if err := validateID("organization", req.OrganizationID); err != nil {
			return err
		}
	}

	v := view.NewLocationsView(client)
	defer v.Unmount()
	if err := v.Create(cmd.Context(), req); err != nil {
		return apiFailure(err)
	}

	printer.Success("Created location %s", printer.Bold(req.Name))
	if data, ok := v.State().Data(); ok {
		if err := renderLocations(printer, data); err != nil {
			return err
		}
	}
	printer.PrintHints("locations create")
	return nil
}

func runLocationsDelete(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	id := args[0]
	if err := validateID("location", id); err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")

	v := view.NewLocationsView(client)
	defer v.Unmount()
	err := v.Delete(cmd.Context(), id, confirmer(printer, yes))
	if errors.Is(err, view.ErrCancelled) {
		printer.Info("Cancelled")
		return nil
	}
	if err != nil {
		return apiFailure(err)
	}

	printer.Success("Deleted location %s", id)
	return nil
}
