package suppliers

import (
	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/shared"
)

// MountRoutes registers the supplier pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermSuppliersView, shared.PermPurchasesCreate))
		r.Get("/", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermSuppliersCreate))
		r.Get("/new", h.Form)
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermSuppliersEdit))
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermSuppliersDelete))
		r.Post("/{id}/delete", h.Delete)
	})
}
