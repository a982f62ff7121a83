package view

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fleetpass/fleetctl/internal/model"
)

// VehiclesAPI is what the vehicle screens call
type VehiclesAPI interface {
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (model.Vehicle, error)
	CreateVehicle(ctx context.Context, req model.VehicleRequest) (model.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, req model.VehicleRequest) (model.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	ListLocations(ctx context.Context) ([]model.Location, error)
}

const deleteVehiclePrompt = "Are you sure you want to delete this vehicle?"

// VehiclesView lists and deletes vehicles
type VehiclesView struct {
	Screen[[]model.Vehicle]
	api VehiclesAPI
}

// NewVehiclesView creates the screen
func NewVehiclesView(api VehiclesAPI) *VehiclesView {
	return &VehiclesView{api: api}
}

// Load fetches every vehicle
func (v *VehiclesView) Load(ctx context.Context) ([]model.Vehicle, error) {
	return v.load(ctx, "Failed to fetch vehicles", v.api.ListVehicles)
}

// Delete removes a vehicle after confirmation and refetches
func (v *VehiclesView) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if !confirm.Confirm(deleteVehiclePrompt) {
		return ErrCancelled
	}
	if err := v.api.DeleteVehicle(ctx, id); err != nil {
		msg := "Failed to delete vehicle"
		v.fail(msg)
		return &Error{Message: msg, Err: err}
	}
	_, err := v.Load(ctx)
	return err
}

// VehicleDetailView shows one vehicle
type VehicleDetailView struct {
	Screen[model.Vehicle]
	api VehiclesAPI
}

// NewVehicleDetailView creates the screen
func NewVehicleDetailView(api VehiclesAPI) *VehicleDetailView {
	return &VehicleDetailView{api: api}
}

// Load fetches the vehicle
func (v *VehicleDetailView) Load(ctx context.Context, id string) (model.Vehicle, error) {
	return v.load(ctx, "Failed to fetch vehicle details", func(ctx context.Context) (model.Vehicle, error) {
		return v.api.GetVehicle(ctx, id)
	})
}

// Delete removes the vehicle after confirmation; the caller navigates back
// to the list on success.
func (v *VehicleDetailView) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if !confirm.Confirm(deleteVehiclePrompt) {
		return ErrCancelled
	}
	if err := v.api.DeleteVehicle(ctx, id); err != nil {
		msg := "Failed to delete vehicle"
		v.fail(msg)
		return &Error{Message: msg, Err: err}
	}
	return nil
}

// VehicleFormData is what the create/edit form needs before it can render
type VehicleFormData struct {
	Locations []model.Location
	// Existing is set in edit mode
	Existing *model.Vehicle
}

// VehicleFormView creates or edits a vehicle
type VehicleFormView struct {
	Screen[VehicleFormData]
	api VehiclesAPI
	id  string
}

// NewVehicleFormView creates the form; id is empty for create mode
func NewVehicleFormView(api VehiclesAPI, id string) *VehicleFormView {
	return &VehicleFormView{api: api, id: id}
}

// EditMode reports whether the form updates an existing vehicle
func (v *VehicleFormView) EditMode() bool {
	return v.id != ""
}

// Load fetches locations and, in edit mode, the vehicle in parallel
func (v *VehicleFormView) Load(ctx context.Context) (VehicleFormData, error) {
	msg := "Failed to fetch locations"
	if v.EditMode() {
		msg = "Failed to fetch vehicle"
	}
	return v.load(ctx, msg, func(ctx context.Context) (VehicleFormData, error) {
		var data VehicleFormData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			locs, err := v.api.ListLocations(gctx)
			data.Locations = locs
			return err
		})
		if v.EditMode() {
			g.Go(func() error {
				veh, err := v.api.GetVehicle(gctx, v.id)
				if err != nil {
					return err
				}
				data.Existing = &veh
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return VehicleFormData{}, err
		}
		return data, nil
	})
}

// Submit validates locally, then creates or updates
func (v *VehicleFormView) Submit(ctx context.Context, req model.VehicleRequest) (model.Vehicle, error) {
	action := "create"
	if v.EditMode() {
		action = "update"
	}
	if err := req.Validate(); err != nil {
		v.fail(err.Error())
		return model.Vehicle{}, &Error{Message: err.Error(), Err: err}
	}
	v.clearErr()

	var (
		out model.Vehicle
		err error
	)
	if v.EditMode() {
		out, err = v.api.UpdateVehicle(ctx, v.id, req)
	} else {
		out, err = v.api.CreateVehicle(ctx, req)
	}
	if err != nil {
		msg := messageFor(err, "Failed to "+action+" vehicle")
		v.fail(msg)
		return model.Vehicle{}, &Error{Message: msg, Err: err}
	}
	return out, nil
}
