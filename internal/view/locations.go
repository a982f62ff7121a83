package view

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fleetpass/fleetctl/internal/model"
)

// LocationsAPI is what the locations screen calls
type LocationsAPI interface {
	ListLocations(ctx context.Context) ([]model.Location, error)
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	CreateLocation(ctx context.Context, req model.CreateLocationRequest) (model.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// LocationsData is the locations collection plus the organizations it refers to
type LocationsData struct {
	Locations     []model.Location
	Organizations []model.Organization
}

// OrganizationName resolves a location's organization reference
func (d LocationsData) OrganizationName(id string) string {
	for _, o := range d.Organizations {
		if o.ID == id {
			return o.Name
		}
	}
	return "Unknown"
}

// DefaultCountry pre-fills new locations
const DefaultCountry = "USA"

// LocationsView lists, creates and deletes locations
type LocationsView struct {
	Screen[LocationsData]
	api LocationsAPI
}

// NewLocationsView creates the screen
func NewLocationsView(api LocationsAPI) *LocationsView {
	return &LocationsView{api: api}
}

// Load fetches locations and organizations in parallel; either may finish first
func (v *LocationsView) Load(ctx context.Context) (LocationsData, error) {
	return v.load(ctx, "Failed to fetch data", v.fetch)
}

func (v *LocationsView) fetch(ctx context.Context) (LocationsData, error) {
	var data LocationsData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		locs, err := v.api.ListLocations(gctx)
		data.Locations = locs
		return err
	})
	g.Go(func() error {
		orgs, err := v.api.ListOrganizations(gctx)
		data.Organizations = orgs
		return err
	})
	if err := g.Wait(); err != nil {
		return LocationsData{}, err
	}
	return data, nil
}

// Create submits a new location and refetches
func (v *LocationsView) Create(ctx context.Context, req model.CreateLocationRequest) error {
	if req.OrganizationID == "" || req.Name == "" {
		msg := "Organization and name are required"
		v.fail(msg)
		return &Error{Message: msg, Err: fmt.Errorf("missing required field")}
	}
	if req.Country == "" {
		req.Country = DefaultCountry
	}
	v.clearErr()
	if _, err := v.api.CreateLocation(ctx, req); err != nil {
		msg := messageFor(err, "Failed to create location")
		v.fail(msg)
		return &Error{Message: msg, Err: err}
	}
	_, err := v.Load(ctx)
	return err
}

// Delete removes a location after confirmation and refetches
func (v *LocationsView) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if !confirm.Confirm("Are you sure you want to delete this location?") {
		return ErrCancelled
	}
	if err := v.api.DeleteLocation(ctx, id); err != nil {
		msg := "Failed to delete location"
		v.fail(msg)
		return &Error{Message: msg, Err: err}
	}
	_, err := v.Load(ctx)
	return err
}
