// Package users manages dashboard accounts and their role assignments.
package users

import (
	"strings"

	"github.com/medistock/medistock/internal/apiclient"
)

// User is a dashboard account as returned by /users.
type User struct {
	ID          apiclient.ID    `json:"id"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	IsActive    *bool           `json:"isActive"`
	Roles       []apiclient.Ref `json:"roles"`
	Permissions []string        `json:"permissions"`
}

// Name joins first and last name.
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Active treats a missing flag as active.
func (u User) Active() bool { return u.IsActive == nil || *u.IsActive }

// RoleNames lists the assigned role names.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Label())
	}
	return names
}

// RoleIDs lists the assigned role ids.
func (u User) RoleIDs() []string {
	ids := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		ids = append(ids, role.ID.String())
	}
	return ids
}
