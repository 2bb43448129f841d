package procurement

import (
	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/shared"
)

// MountRoutes registers the purchase pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermPurchasesView))
		r.Get("/", h.List)
		r.Get("/{id}/requisition", h.Requisition)
		r.Get("/{id}/requisition.pdf", h.RequisitionPDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermPurchasesCreate))
		r.Get("/new", h.Form)
		r.Post("/", h.Create)
		r.Post("/{id}/receive", h.Receive)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermPurchasesDelete))
		r.Post("/{id}/delete", h.Delete)
	})
}
