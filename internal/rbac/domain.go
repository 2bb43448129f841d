package rbac

import "github.com/medistock/medistock/internal/apiclient"

// Role is a backend role with its permission codes.
type Role struct {
	ID          apiclient.ID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

// Permission is an atomic capability code such as "products.create".
type Permission struct {
	ID          apiclient.ID `json:"id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Module      string       `json:"module"`
}

// Key returns the permission code, falling back to its name.
func (p Permission) Key() string {
	if p.Code != "" {
		return p.Code
	}
	return p.Name
}

// Has reports whether the role grants code.
func (r Role) Has(code string) bool {
	for _, p := range r.Permissions {
		if p.Key() == code {
			return true
		}
	}
	return false
}
