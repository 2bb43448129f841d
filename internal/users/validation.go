package users

import (
	"strings"

	"github.com/medistock/medistock/internal/platform/validation"
)

// MsgRoleRequired is shown when no role is selected.
const MsgRoleRequired = "Select at least one role"

// Input is the submitted user form.
type Input struct {
	FirstName string   `form:"firstName" validate:"required,max=100"`
	LastName  string   `form:"lastName" validate:"required,max=100"`
	Email     string   `form:"email" validate:"required,email"`
	Phone     string   `form:"phone" validate:"max=30"`
	Password  string   `form:"password" validate:"omitempty,min=8"`
	RoleIDs   []string `form:"roleIds"`
	IsActive  bool     `form:"isActive"`
}

// InputFrom prefills the edit form. The password is never echoed.
func InputFrom(u User) Input {
	return Input{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		RoleIDs:   u.RoleIDs(),
		IsActive:  u.Active(),
	}
}

// Normalize trims text fields and drops blank role ids.
func (in Input) Normalize() Input {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	roles := in.RoleIDs[:0:0]
	for _, id := range in.RoleIDs {
		if id = strings.TrimSpace(id); id != "" {
			roles = append(roles, id)
		}
	}
	in.RoleIDs = roles
	return in
}

// Validate checks the form. A password is mandatory only when creating.
func (in Input) Validate(creating bool) validation.Errors {
	errs := validation.Struct(in)
	if creating && in.Password == "" {
		errs.Add("password", "Password is required")
	}
	if len(in.RoleIDs) == 0 {
		errs.Add("roleIds", MsgRoleRequired)
	}
	return errs
}

// HasRole reports whether id is selected, for checkbox state.
func (in Input) HasRole(id string) bool {
	for _, selected := range in.RoleIDs {
		if selected == id {
			return true
		}
	}
	return false
}

// Payload is the create/update request body. A blank password is left out
// so updates keep the current one.
func (in Input) Payload() map[string]any {
	payload := map[string]any{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
		"email":     in.Email,
		"roleIds":   in.RoleIDs,
		"isActive":  in.IsActive,
	}
	if in.Phone != "" {
		payload["phone"] = in.Phone
	}
	if in.Password != "" {
		payload["password"] = in.Password
	}
	return payload
}
