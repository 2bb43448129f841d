package quotations

import (
	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/shared"
)

// MountRoutes registers the quotation pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermQuotationsView))
		r.Get("/", h.List)
		r.Get("/{id}/print", h.Print)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermQuotationsCreate))
		r.Get("/new", h.Form)
		r.Post("/", h.Create)
		r.Post("/{id}/status", h.Status)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermQuotationsView, shared.PermSalesCreate))
		r.Post("/{id}/convert", h.Convert)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermQuotationsDelete))
		r.Post("/{id}/delete", h.Delete)
	})
}
