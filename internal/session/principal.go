package session

import "slices"

// Role is a permission level assigned to a principal
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
	RoleUser       Role = "user"
	RoleCustomer   Role = "customer"
)

// Principal is the authenticated user as reported by the API.
// It is replaced wholesale on login/restore and never edited in place.
type Principal struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Role           Role     `json:"role,omitempty"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	Permissions    []string `json:"permissions,omitempty"`
	OrganizationID *string  `json:"organization_id,omitempty"`
}

// PrimaryRole returns Role, falling back to the first entry of Roles
func (p Principal) PrimaryRole() Role {
	if p.Role != "" {
		return p.Role
	}
	if len(p.Roles) > 0 {
		return Role(p.Roles[0])
	}
	return ""
}

// HasPermission reports whether the principal carries the named permission
func (p Principal) HasPermission(name string) bool {
	return slices.Contains(p.Permissions, name)
}

// DisplayName returns "First Last" or the email when no name is known
func (p Principal) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	}
	return p.Email
}

func (p Principal) valid() bool {
	return p.ID != "" || p.Email != ""
}
