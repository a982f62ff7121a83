package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fleetpass/fleetctl/internal/model"
)

// ListOrganizations fetches every organization
func (c *Client) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	var out []model.Organization
	if err := c.getJSON(ctx, "/api/organizations", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Organization{}
	}
	return out, nil
}

// CreateOrganization creates an organization
func (c *Client) CreateOrganization(ctx context.Context, req model.CreateOrganizationRequest) (model.Organization, error) {
	var out model.Organization
	err := c.sendJSON(ctx, http.MethodPost, "/api/organizations", req, &out)
	return out, err
}

// DeleteOrganization deletes an organization by id
func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/organizations/"+url.PathEscape(id))
}

// ListLocations fetches every location
func (c *Client) ListLocations(ctx context.Context) ([]model.Location, error) {
	var out []model.Location
	if err := c.getJSON(ctx, "/api/locations", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Location{}
	}
	return out, nil
}

// CreateLocation creates a location
func (c *Client) CreateLocation(ctx context.Context, req model.CreateLocationRequest) (model.Location, error) {
	var out model.Location
	err := c.sendJSON(ctx, http.MethodPost, "/api/locations", req, &out)
	return out, err
}

// DeleteLocation deletes a location by id
func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/locations/"+url.PathEscape(id))
}

// ListVehicles fetches every vehicle
func (c *Client) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	var out []model.Vehicle
	if err := c.getJSON(ctx, "/api/vehicles", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Vehicle{}
	}
	return out, nil
}

// GetVehicle fetches one vehicle
func (c *Client) GetVehicle(ctx context.Context, id string) (model.Vehicle, error) {
	var out model.Vehicle
	err := c.getJSON(ctx, "/api/vehicles/"+url.PathEscape(id), &out)
	return out, err
}

// CreateVehicle creates a vehicle
func (c *Client) CreateVehicle(ctx context.Context, req model.VehicleRequest) (model.Vehicle, error) {
	var out model.Vehicle
	err := c.sendJSON(ctx, http.MethodPost, "/api/vehicles", req, &out)
	return out, err
}

// UpdateVehicle replaces a vehicle's editable fields
func (c *Client) UpdateVehicle(ctx context.Context, id string, req model.VehicleRequest) (model.Vehicle, error) {
	var out model.Vehicle
	err := c.sendJSON(ctx, http.MethodPut, "/api/vehicles/"+url.PathEscape(id), req, &out)
	return out, err
}

// DeleteVehicle deletes a vehicle by id
func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/vehicles/"+url.PathEscape(id))
}
