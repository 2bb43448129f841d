package customers

import (
	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/shared"
)

// MountRoutes registers the customer pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermCustomersView, shared.PermSalesCreate))
		r.Get("/", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermCustomersCreate))
		r.Get("/new", h.Form)
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermCustomersEdit))
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermCustomersDelete))
		r.Post("/{id}/delete", h.Delete)
	})
}
