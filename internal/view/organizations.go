package view

import (
	"context"
	"fmt"

	"github.com/fleetpass/fleetctl/internal/model"
)

// OrganizationsAPI is what the organizations screen calls
type OrganizationsAPI interface {
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	CreateOrganization(ctx context.Context, req model.CreateOrganizationRequest) (model.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
}

// OrganizationsView lists, creates and deletes organizations
type OrganizationsView struct {
	Screen[[]model.Organization]
	api OrganizationsAPI
}

// NewOrganizationsView creates the screen
func NewOrganizationsView(api OrganizationsAPI) *OrganizationsView {
	return &OrganizationsView{api: api}
}

// Load fetches the full collection
func (v *OrganizationsView) Load(ctx context.Context) ([]model.Organization, error) {
	return v.load(ctx, "Failed to fetch organizations", v.api.ListOrganizations)
}

// Create submits a new organization and refetches the list
func (v *OrganizationsView) Create(ctx context.Context, req model.CreateOrganizationRequest) error {
	if req.Name == "" || req.Slug == "" {
		msg := "Name and slug are required"
		v.fail(msg)
		return &Error{Message: msg, Err: fmt.Errorf("missing required field")}
	}
	v.clearErr()
	if _, err := v.api.CreateOrganization(ctx, req); err != nil {
		msg := messageFor(err, "Failed to create organization")
		v.fail(msg)
		return &Error{Message: msg, Err: err}
	}
	_, err := v.Load(ctx)
	return err
}

// Delete removes an organization after confirmation and refetches the list
func (v *OrganizationsView) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if !confirm.Confirm("Are you sure you want to delete this organization?") {
		return ErrCancelled
	}
	if err := v.api.DeleteOrganization(ctx, id); err != nil {
		msg := "Failed to delete organization"
		v.fail(msg)
		return &Error{Message: msg, Err: err}
	}
	_, err := v.Load(ctx)
	return err
}
