package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/shared"
)

// MountRoutes registers the sale pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermSalesView))
		r.Get("/", h.List)
		r.Get("/{id}/voucher", h.Voucher)
		r.Get("/{id}/voucher.pdf", h.VoucherPDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermSalesCreate))
		r.Get("/new", h.Form)
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermSalesDelete))
		r.Post("/{id}/delete", h.Delete)
	})
}
