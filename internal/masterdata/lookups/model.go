// Package lookups manages the small reference lists used by products,
// sales and purchases: categories, manufacturers, units of measure and
// payment methods.
package lookups

import (
	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Lookup is one reference list entry.
type Lookup struct {
	ID          apiclient.ID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsActive    *bool        `json:"isActive,omitempty"`
}

// Active treats a missing flag as active.
func (l Lookup) Active() bool {
	return l.IsActive == nil || *l.IsActive
}

// Kind describes one reference list.
type Kind struct {
	// Slug is the dashboard path segment, e.g. "payment-methods".
	Slug string
	// Resource is the backend path, e.g. "/payment-methods".
	Resource string
	Singular string
	Plural   string
	// Entity names the list in the activity log.
	Entity     string
	ManagePerm string
}

// Kinds served by the dashboard.
var (
	Categories = Kind{
		Slug: "categories", Resource: "/categories", Singular: "Category", Plural: "Categories",
		Entity: "category", ManagePerm: shared.PermCategoriesManage,
	}
	Manufacturers = Kind{
		Slug: "manufacturers", Resource: "/manufacturers", Singular: "Manufacturer", Plural: "Manufacturers",
		Entity: "manufacturer", ManagePerm: shared.PermManufacturersManage,
	}
	Units = Kind{
		Slug: "units", Resource: "/uom", Singular: "Unit of measure", Plural: "Units of measure",
		Entity: "unit", ManagePerm: shared.PermUnitsManage,
	}
	PaymentMethods = Kind{
		Slug: "payment-methods", Resource: "/payment-methods", Singular: "Payment method", Plural: "Payment methods",
		Entity: "payment_method", ManagePerm: shared.PermPaymentMethodManage,
	}
)

// AllKinds lists every reference list.
func AllKinds() []Kind {
	return []Kind{Categories, Manufacturers, Units, PaymentMethods}
}

// BasePath is the dashboard list path.
func (k Kind) BasePath() string {
	return "/masterdata/" + k.Slug
}
