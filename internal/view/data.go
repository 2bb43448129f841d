package view

import (
	"strings"

	"github.com/medistock/medistock/internal/shared"
)

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flashes     []shared.FlashMessage
	CurrentPath string
	User        *shared.Profile
	Nav         []NavItem
	Data        any
}

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

type navEntry struct {
	label string
	href  string
	perms []string
}

var navEntries = []navEntry{
	{"Dashboard", "/", []string{shared.PermDashboardView}},
	{"Products", "/masterdata/products", []string{shared.PermProductsView}},
	{"Categories", "/masterdata/categories", []string{shared.PermLookupsView, shared.PermCategoriesManage}},
	{"Manufacturers", "/masterdata/manufacturers", []string{shared.PermLookupsView, shared.PermManufacturersManage}},
	{"Units", "/masterdata/units", []string{shared.PermLookupsView, shared.PermUnitsManage}},
	{"Payment methods", "/masterdata/payment-methods", []string{shared.PermLookupsView, shared.PermPaymentMethodManage}},
	{"Customers", "/customers", []string{shared.PermCustomersView}},
	{"Suppliers", "/suppliers", []string{shared.PermSuppliersView}},
	{"Sales", "/sales", []string{shared.PermSalesView}},
	{"Quotations", "/quotations", []string{shared.PermQuotationsView}},
	{"Purchases", "/procurement/purchases", []string{shared.PermPurchasesView}},
	{"Credits", "/credits", []string{shared.PermCreditsView}},
	{"Users", "/users", []string{shared.PermUsersView}},
	{"Roles & permissions", "/permissions", []string{shared.PermUsersView, shared.PermUsersEdit}},
	{"Activity log", "/audit", []string{shared.PermAuditView}},
}

// Can reports whether the signed-in user holds perm.
func (d TemplateData) Can(perm string) bool {
	if d.User == nil {
		return false
	}
	return d.User.Can(perm)
}

// Navigation builds the sidebar for profile, marking the entry owning path.
func Navigation(profile *shared.Profile, path string) []NavItem {
	if profile == nil {
		return nil
	}
	var items []NavItem
	best := -1
	for _, entry := range navEntries {
		if !profile.CanAny(entry.perms...) {
			continue
		}
		items = append(items, NavItem{Label: entry.label, Href: entry.href})
		if matchesPath(entry.href, path) && (best < 0 || len(entry.href) > len(items[best].Href)) {
			best = len(items) - 1
		}
	}
	if best >= 0 {
		items[best].Active = true
	}
	return items
}

func matchesPath(href, path string) bool {
	if href == "/" {
		return path == "/"
	}
	return path == href || strings.HasPrefix(path, href+"/")
}

// Option is one entry of a select input.
type Option struct {
	Value string
	Label string
}
