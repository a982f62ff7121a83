package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fleetpass/fleetctl/internal/guard"
	"github.com/fleetpass/fleetctl/internal/model"
	"github.com/fleetpass/fleetctl/internal/output"
	"github.com/fleetpass/fleetctl/internal/view"
)

var vehiclesCmd = guard.Protect(&cobra.Command{
	Use:     "vehicles",
	Aliases: []string{"vehicle", "veh"},
	Short:   "Manage the vehicle inventory",
	Long: `List, inspect, create, update and delete vehicles.

Examples:
  fleetctl vehicles list
  fleetctl vehicles list --status available
  fleetctl vehicles get <id> --image 2
  fleetctl vehicles create --location <id> --vin 1HGBH41JXMN109186 --make Honda --model Accord --year 2022
  fleetctl vehicles update <id> --status maintenance --mileage 15200
  fleetctl vehicles delete <id>`,
})

var vehiclesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List vehicles",
	Args:    cobra.NoArgs,
	RunE:    runVehiclesList,
}

var vehiclesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one vehicle",
	Args:  cobra.ExactArgs(1),
	RunE:  runVehiclesGet,
}

var vehiclesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a vehicle",
	Args:  cobra.NoArgs,
	RunE:  runVehiclesCreate,
}

var vehiclesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a vehicle; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  runVehiclesUpdate,
}

var vehiclesDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a vehicle",
	Args:    cobra.ExactArgs(1),
	RunE:    runVehiclesDelete,
}

// newVehicleDefaults mirrors the blank form: current year, used, available,
// eligible for service, five seats and four doors.
func newVehicleDefaults() model.VehicleRequest {
	return model.VehicleRequest{
		Year:                 time.Now().Year(),
		Condition:            model.ConditionUsed,
		Status:               model.StatusAvailable,
		IsEligibleForService: true,
		Seats:                5,
		Doors:                4,
	}
}

func init() {
	rootCmd.AddCommand(vehiclesCmd)
	vehiclesCmd.AddCommand(vehiclesListCmd, vehiclesGetCmd, vehiclesCreateCmd, vehiclesUpdateCmd, vehiclesDeleteCmd)

	vehiclesListCmd.Flags().Bool("json", false, "output as JSON")
	vehiclesListCmd.Flags().String("status", "", "only show vehicles with this status")
	vehiclesListCmd.Flags().String("location", "", "only show vehicles at this location")

	vehiclesGetCmd.Flags().Bool("json", false, "output as JSON")
	vehiclesGetCmd.Flags().Int("image", 1, "image to show (1-based, wraps around)")

	addVehicleFlags(vehiclesCreateCmd.Flags(), newVehicleDefaults())
	addVehicleFlags(vehiclesUpdateCmd.Flags(), model.VehicleRequest{})

	completeEnum(vehiclesListCmd, "status", vehicleStatusValues)
	for _, c := range []*cobra.Command{vehiclesCreateCmd, vehiclesUpdateCmd} {
		completeEnum(c, "status", vehicleStatusValues)
		completeEnum(c, "condition", vehicleConditionValues)
	}

	vehiclesDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

func addVehicleFlags(f *pflag.FlagSet, d model.VehicleRequest) {
	f.String("location", d.LocationID, "location id")
	f.String("vin", d.VIN, "vehicle identification number")
	f.String("make", d.Make, "make")
	f.String("model", d.Model, "model")
	f.Int("year", d.Year, "model year")
	f.String("trim", d.Trim, "trim")
	f.String("exterior-color", d.ColorExterior, "exterior color")
	f.String("interior-color", d.ColorInterior, "interior color")
	f.String("condition", string(d.Condition), "condition (new, used, certified_pre_owned)")
	f.Int("mileage", d.Mileage, "odometer reading")
	f.String("plate", d.LicensePlate, "license plate")
	f.String("status", string(d.Status), "status (available, rented, maintenance, inactive)")
	f.Bool("eligible-for-service", d.IsEligibleForService, "eligible for service")
	f.String("body-style", d.BodyStyle, "body style")
	f.String("transmission", d.Transmission, "transmission")
	f.String("drivetrain", d.Drivetrain, "drivetrain")
	f.String("fuel-type", d.FuelType, "fuel type")
	f.String("engine", d.Engine, "engine")
	f.Int("mpg-city", d.MPGCity, "city MPG")
	f.Int("mpg-highway", d.MPGHighway, "highway MPG")
	f.Int("seats", d.Seats, "number of seats")
	f.Int("doors", d.Doors, "number of doors")
	f.String("stock-number", d.StockNumber, "stock number")
	f.String("description", d.Description, "description")
	f.Float64("daily-rate", d.DailyRate, "daily rate")
	f.Float64("weekly-rate", d.WeeklyRate, "weekly rate")
	f.Float64("monthly-rate", d.MonthlyRate, "monthly rate")
	f.StringArray("feature", nil, "feature (repeatable)")
	f.StringArray("image", nil, "image URL (repeatable)")
}

// applyVehicleFlags copies flag values onto req. With onlyChanged set,
// untouched flags keep the existing value.
func applyVehicleFlags(f *pflag.FlagSet, req *model.VehicleRequest, onlyChanged bool) {
	set := func(name string) bool { return !onlyChanged || f.Changed(name) }
	str := func(name string, dst *string) {
		if set(name) {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if set(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	rate := func(name string, dst *float64) {
		if set(name) {
			*dst, _ = f.GetFloat64(name)
		}
	}
	list := func(name string, dst *[]string) {
		if set(name) {
			values, _ := f.GetStringArray(name)
			*dst = model.ParseList(strings.Join(values, "\n"))
		}
	}

	str("location", &req.LocationID)
	str("vin", &req.VIN)
	str("make", &req.Make)
	str("model", &req.Model)
	num("year", &req.Year)
	str("trim", &req.Trim)
	str("exterior-color", &req.ColorExterior)
	str("interior-color", &req.ColorInterior)
	if set("condition") {
		c, _ := f.GetString("condition")
		req.Condition = model.VehicleCondition(c)
	}
	num("mileage", &req.Mileage)
	str("plate", &req.LicensePlate)
	if set("status") {
		s, _ := f.GetString("status")
		req.Status = model.VehicleStatus(s)
	}
	if set("eligible-for-service") {
		req.IsEligibleForService, _ = f.GetBool("eligible-for-service")
	}
	str("body-style", &req.BodyStyle)
	str("transmission", &req.Transmission)
	str("drivetrain", &req.Drivetrain)
	str("fuel-type", &req.FuelType)
	str("engine", &req.Engine)
	num("mpg-city", &req.MPGCity)
	num("mpg-highway", &req.MPGHighway)
	num("seats", &req.Seats)
	num("doors", &req.Doors)
	str("stock-number", &req.StockNumber)
	str("description", &req.Description)
	rate("daily-rate", &req.DailyRate)
	rate("weekly-rate", &req.WeeklyRate)
	rate("monthly-rate", &req.MonthlyRate)
	list("feature", &req.Features)
	list("image", &req.Images)
}

func runVehiclesList(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	status, _ := cmd.Flags().GetString("status")
	locationID, _ := cmd.Flags().GetString("location")

	if !model.VehicleStatus(status).Valid() {
		return &output.CLIError{
			Summary:  fmt.Sprintf("invalid status %q", status),
			Detail:   "must be available, rented, maintenance, or inactive",
			ExitCode: output.ExitUsageError,
		}
	}
	if locationID != "" {
		if err := validateID("location", locationID); err != nil {
			return err
		}
	}

	v := view.NewVehiclesView(client)
	defer v.Unmount()
	vehicles, err := v.Load(cmd.Context())
	if err != nil {
		return apiFailure(err)
	}

	filtered := vehicles[:0:0]
	for _, veh := range vehicles {
		if status != "" && string(veh.Status) != status {
			continue
		}
		if locationID != "" && veh.LocationID != locationID {
			continue
		}
		filtered = append(filtered, veh)
	}

	if jsonOutput {
		return printer.JSON(filtered)
	}
	if len(filtered) == 0 {
		printer.Info("No vehicles found")
		printer.PrintHints("vehicles list")
		return nil
	}

	printer.Header(fmt.Sprintf("Vehicles (%d)", len(filtered)))
	table := printer.Table([]string{"VEHICLE", "VIN", "STATUS", "MILEAGE", "DAILY", "PLATE", "ID"})
	for _, veh := range filtered {
		table.AddRow(
			printer.Bold(veh.Title()),
			veh.VIN,
			printer.StatusBadge(string(veh.Status)),
			strconv.Itoa(veh.Mileage),
			formatMoney(veh.DailyRate),
			veh.LicensePlate,
			printer.Dim(veh.ID),
		)
	}
	if err := table.Render(); err != nil {
		return err
	}
	printer.PrintHints("vehicles list")
	return nil
}

func runVehiclesGet(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	id := args[0]
	if err := validateID("vehicle", id); err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	image, _ := cmd.Flags().GetInt("image")

	v := view.NewVehicleDetailView(client)
	defer v.Unmount()
	veh, err := v.Load(cmd.Context(), id)
	if err != nil {
		return apiFailure(err)
	}

	if jsonOutput {
		return printer.JSON(veh)
	}

	printer.Header(veh.Title())
	printer.Field("Status", printer.StatusBadge(string(veh.Status)))
	printer.Field("VIN", veh.VIN)
	printer.Field("Stock #", veh.StockNumber)
	printer.Field("Plate", veh.LicensePlate)
	printer.Field("Condition", string(veh.Condition))
	printer.Field("Mileage", strconv.Itoa(veh.Mileage))
	printer.Field("Colors", joinNonEmpty(" / ", veh.ColorExterior, veh.ColorInterior))
	printer.Field("Body", joinNonEmpty(", ", veh.BodyStyle, veh.Transmission, veh.Drivetrain))
	printer.Field("Engine", joinNonEmpty(", ", veh.Engine, veh.FuelType))
	if veh.MPGCity > 0 || veh.MPGHighway > 0 {
		printer.Field("MPG", fmt.Sprintf("%d city / %d highway", veh.MPGCity, veh.MPGHighway))
	}
	if veh.Seats > 0 || veh.Doors > 0 {
		printer.Field("Seating", fmt.Sprintf("%d seats, %d doors", veh.Seats, veh.Doors))
	}
	printer.Field("Daily", formatMoney(veh.DailyRate))
	printer.Field("Weekly", formatMoney(veh.WeeklyRate))
	printer.Field("Monthly", formatMoney(veh.MonthlyRate))
	if veh.HasWarranty {
		warranty := veh.WarrantyType
		if veh.WarrantyExpirationDate != nil {
			warranty = joinNonEmpty(", ", warranty, "expires "+formatDate(*veh.WarrantyExpirationDate))
		}
		printer.Field("Warranty", warranty)
	}
	printer.Field("Features", strings.Join(veh.Features, ", "))
	printer.Field("Description", veh.Description)

	carousel := view.NewCarousel(veh.Images)
	current := carousel.Seek(image - 1)
	printer.Field("Image", fmt.Sprintf("%d/%d %s", carousel.Index()+1, carousel.Len(), current))
	printer.Field("Location", veh.LocationID)
	printer.Field("ID", veh.ID)
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func runVehiclesCreate(cmd *cobra.Command, args []string) error {
	req := newVehicleDefaults()
	applyVehicleFlags(cmd.Flags(), &req, false)
	if req.LocationID != "" {
		if err := validateID("location", req.LocationID); err != nil {
			return err
		}
	}
	return submitVehicle(cmd, "", func(view.VehicleFormData) model.VehicleRequest { return req })
}

func runVehiclesUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := validateID("vehicle", id); err != nil {
		return err
	}
	if loc, _ := cmd.Flags().GetString("location"); cmd.Flags().Changed("location") {
		if err := validateID("location", loc); err != nil {
			return err
		}
	}
	return submitVehicle(cmd, id, func(data view.VehicleFormData) model.VehicleRequest {
		req := model.RequestFrom(*data.Existing)
		applyVehicleFlags(cmd.Flags(), &req, true)
		return req
	})
}

// submitVehicle loads the form, builds the request from it and submits
func submitVehicle(cmd *cobra.Command, id string, build func(view.VehicleFormData) model.VehicleRequest) error {
	printer := newPrinter()

	form := view.NewVehicleFormView(client, id)
	defer form.Unmount()
	data, err := form.Load(cmd.Context())
	if err != nil {
		return apiFailure(err)
	}

	req := build(data)
	if req.LocationID != "" && !hasLocation(data.Locations, req.LocationID) {
		return &output.CLIError{
			Summary:    fmt.Sprintf("unknown location: %s", req.LocationID),
			Suggestion: "Run 'fleetctl locations list' to see available locations",
			ExitCode:   output.ExitValidationError,
		}
	}

	veh, err := form.Submit(cmd.Context(), req)
	if err != nil {
		return apiFailure(err)
	}

	if form.EditMode() {
		printer.Success("Updated %s", printer.Bold(veh.Title()))
		printer.PrintHints("vehicles update")
	} else {
		printer.Success("Created %s (%s)", printer.Bold(veh.Title()), veh.ID)
		printer.PrintHints("vehicles create")
	}
	return nil
}

func hasLocation(locs []model.Location, id string) bool {
	for _, l := range locs {
		if l.ID == id {
			return true
		}
	}
	return false
}

func runVehiclesDelete(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	id := args[0]
	if err := validateID("vehicle", id); err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")

	v := view.NewVehicleDetailView(client)
	defer v.Unmount()
	err := v.Delete(cmd.Context(), id, confirmer(printer, yes))
	if errors.Is(err, view.ErrCancelled) {
		printer.Info("Cancelled")
		return nil
	}
	if err != nil {
		return apiFailure(err)
	}

	printer.Success("Deleted vehicle %s", id)
	return nil
}
