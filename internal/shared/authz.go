package shared

import "strings"

// RoleAdmin bypasses permission checks.
const RoleAdmin = "ADMIN"

// Permission codes issued by the backend and enforced on dashboard routes.
const (
	PermDashboardView = "dashboard.view"

	PermProductsView   = "products.view"
	PermProductsCreate = "products.create"
	PermProductsEdit   = "products.update"
	PermProductsDelete = "products.delete"
	PermProductsImport = "products.import"

	PermCategoriesManage    = "categories.manage"
	PermManufacturersManage = "manufacturers.manage"
	PermUnitsManage         = "uom.manage"
	PermPaymentMethodManage = "payment_methods.manage"
	PermLookupsView         = "lookups.view"

	PermCustomersView   = "customers.view"
	PermCustomersCreate = "customers.create"
	PermCustomersEdit   = "customers.update"
	PermCustomersDelete = "customers.delete"

	PermSuppliersView   = "suppliers.view"
	PermSuppliersCreate = "suppliers.create"
	PermSuppliersEdit   = "suppliers.update"
	PermSuppliersDelete = "suppliers.delete"

	PermSalesView   = "sales.view"
	PermSalesCreate = "sales.create"
	PermSalesDelete = "sales.delete"

	PermPurchasesView   = "purchases.view"
	PermPurchasesCreate = "purchases.create"
	PermPurchasesDelete = "purchases.delete"

	PermQuotationsView   = "quotations.view"
	PermQuotationsCreate = "quotations.create"
	PermQuotationsDelete = "quotations.delete"

	PermCreditsView = "credits.view"
	PermCreditsPay  = "credits.pay"

	PermUsersView = "users.view"
	PermUsersEdit = "users.manage"

	PermAuditView = "audit.view"
)

// AllPermissions lists every permission code known to the dashboard.
func AllPermissions() []string {
	return []string{
		PermDashboardView,
		PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete, PermProductsImport,
		PermCategoriesManage, PermManufacturersManage, PermUnitsManage, PermPaymentMethodManage, PermLookupsView,
		PermCustomersView, PermCustomersCreate, PermCustomersEdit, PermCustomersDelete,
		PermSuppliersView, PermSuppliersCreate, PermSuppliersEdit, PermSuppliersDelete,
		PermSalesView, PermSalesCreate, PermSalesDelete,
		PermPurchasesView, PermPurchasesCreate, PermPurchasesDelete,
		PermQuotationsView, PermQuotationsCreate, PermQuotationsDelete,
		PermCreditsView, PermCreditsPay,
		PermUsersView, PermUsersEdit,
		PermAuditView,
	}
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	for _, role := range p.Roles {
		if strings.EqualFold(strings.TrimSpace(role), RoleAdmin) {
			return true
		}
	}
	return false
}

// Can reports whether the profile holds perm. Admins hold every permission.
func (p Profile) Can(perm string) bool {
	if p.IsAdmin() {
		return true
	}
	perm = normalizePermission(perm)
	for _, held := range p.Permissions {
		if normalizePermission(held) == perm {
			return true
		}
	}
	return false
}

// CanAny reports whether the profile holds at least one of perms. An empty
// list is satisfied by any signed-in profile.
func (p Profile) CanAny(perms ...string) bool {
	if len(perms) == 0 {
		return true
	}
	for _, perm := range perms {
		if p.Can(perm) {
			return true
		}
	}
	return false
}

// CanAll reports whether the profile holds every one of perms.
func (p Profile) CanAll(perms ...string) bool {
	for _, perm := range perms {
		if !p.Can(perm) {
			return false
		}
	}
	return true
}

func normalizePermission(perm string) string {
	return strings.ToLower(strings.TrimSpace(perm))
}
