package customers

import (
	mdshared "github.com/medistock/medistock/internal/masterdata/shared"
	"github.com/medistock/medistock/internal/platform/validation"
)

// typeField is the form and wire name of the discriminator.
const typeField = "customerType"

func validate(p mdshared.Party) validation.Errors {
	return p.Validate(typeField)
}
