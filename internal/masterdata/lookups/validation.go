package lookups

import (
	"strings"

	"github.com/medistock/medistock/internal/platform/validation"
)

// Input is the create/edit form.
type Input struct {
	Name        string `form:"name" json:"name" validate:"required,max=100"`
	Description string `form:"description" json:"description,omitempty" validate:"max=500"`
	IsActive    bool   `form:"isActive" json:"isActive"`
}

// Normalize trims the text fields.
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// Validate checks the form.
func (in Input) Validate() validation.Errors {
	return validation.Struct(in)
}

// InputFrom prefills the edit form.
func InputFrom(l Lookup) Input {
	return Input{Name: l.Name, Description: l.Description, IsActive: l.Active()}
}
