package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/medistock/medistock/internal/feedback"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

// PermissionsHandler renders the role and permission matrix.
type PermissionsHandler struct {
	logger  *slog.Logger
	service *Service
	views   *view.Responder
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service, views *view.Responder, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service, views: views, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermUsersView, shared.PermUsersEdit))
		r.Get("/", h.listPermissions)
	})
}

type matrixPage struct {
	Roles       []Role
	Permissions []Permission
	Error       string
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	var page matrixPage
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		roles, err := h.service.ListRoles(ctx)
		page.Roles = roles
		return err
	})
	g.Go(func() error {
		perms, err := h.service.ListPermissions(ctx)
		page.Permissions = perms
		return err
	})
	status := http.StatusOK
	if err := g.Wait(); err != nil {
		page = matrixPage{Error: feedback.HandleError(r.Context(), err, feedback.Options{
			Operation:               "load permissions",
			Method:                  http.MethodGet,
			SuppressForbiddenOnRead: true,
			Logger:                  h.logger,
		})}
		status = http.StatusBadGateway
	}
	h.views.Render(w, r, status, "pages/users/permissions.html", "Roles & permissions", page)
}
