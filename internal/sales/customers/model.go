package customers

import (
	"github.com/medistock/medistock/internal/apiclient"
	mdshared "github.com/medistock/medistock/internal/masterdata/shared"
)

// Customer is a buyer: a licensed pharmacy or a walk-in patient.
type Customer struct {
	ID           apiclient.ID `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address"`
	CustomerType string       `json:"customerType"`
	mdshared.License
	IsActive *bool `json:"isActive"`
}

// Type returns the licensed / walk-in discriminator.
func (c Customer) Type() string { return c.CustomerType }

// Active treats a missing flag as active.
func (c Customer) Active() bool { return c.IsActive == nil || *c.IsActive }

// Form prefills the edit form.
func (c Customer) Form() mdshared.Party {
	p := mdshared.Party{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
		Type:     c.CustomerType,
		IsActive: c.Active(),
	}
	c.License.Fill(&p)
	return p
}
