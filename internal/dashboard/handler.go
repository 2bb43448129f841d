package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/shared"
)

// Handler serves the landing page.
type Handler struct {
	pages.Deps
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(deps pages.Deps, service *Service) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service}
}

// MountRoutes registers the landing page.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.RBAC.RequireAuth).Get("/", h.Index)
}

type page struct {
	Name       string
	Restricted bool
	Overview   *Overview
	Error      string
	Today      time.Time
}

// Index renders the overview. Users without the dashboard permission get the
// greeting only.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	profile, _ := pages.Profile(r)
	data := page{Name: profile.DisplayName(), Today: h.service.Today()}
	if !profile.Can(shared.PermDashboardView) {
		data.Restricted = true
		h.Views.Render(w, r, http.StatusOK, "pages/dashboard/index.html", "Dashboard", data)
		return
	}
	ov, err := h.service.Overview(r.Context(), profile.ID, r.URL.Query().Get("refresh") != "")
	if err != nil {
		data.Error = h.LoadFailed(r.Context(), err, "load dashboard")
	} else {
		data.Overview = ov
	}
	h.Views.Render(w, r, http.StatusOK, "pages/dashboard/index.html", "Dashboard", data)
}
