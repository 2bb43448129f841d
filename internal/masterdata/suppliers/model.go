package suppliers

import (
	"github.com/medistock/medistock/internal/apiclient"
	mdshared "github.com/medistock/medistock/internal/masterdata/shared"
)

// Supplier is a vendor products are purchased from.
type Supplier struct {
	ID            apiclient.ID `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Address       string       `json:"address"`
	ContactPerson string       `json:"contactPerson"`
	SupplierType  string       `json:"supplierType"`
	mdshared.License
	IsActive *bool `json:"isActive"`
}

// Type returns the licensed / walk-in discriminator.
func (s Supplier) Type() string { return s.SupplierType }

// Active treats a missing flag as active.
func (s Supplier) Active() bool { return s.IsActive == nil || *s.IsActive }

// Form prefills the edit form.
func (s Supplier) Form() mdshared.Party {
	p := mdshared.Party{
		Name:          s.Name,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		ContactPerson: s.ContactPerson,
		Type:          s.SupplierType,
		IsActive:      s.Active(),
	}
	s.License.Fill(&p)
	return p
}
