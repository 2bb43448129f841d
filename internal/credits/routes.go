package credits

import (
	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/shared"
)

// MountRoutes registers the credit pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermCreditsView))
		r.Get("/", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermCreditsPay))
		r.Get("/{id}/pay", h.PayForm)
		r.Post("/{id}/pay", h.Pay)
	})
}
