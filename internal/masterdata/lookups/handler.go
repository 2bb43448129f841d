package lookups

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/datatable"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
	"github.com/medistock/medistock/internal/shared"
)

// Handler serves one reference list.
type Handler struct {
	pages.Deps
	service *Service
	kind    Kind
}

// NewHandler constructs a Handler.
func NewHandler(deps pages.Deps, service *Service) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service, kind: service.Kind()}
}

// Kind returns the list served.
func (h *Handler) Kind() Kind { return h.kind }

// MountRoutes registers the list routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermLookupsView, h.kind.ManagePerm))
		r.Get("/", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(h.kind.ManagePerm))
		r.Get("/new", h.Form)
		r.Post("/", h.Create)
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Update)
		r.Post("/{id}/delete", h.Delete)
	})
}

type listPage struct {
	Kind      Kind
	Table     datatable.View
	CanManage bool
}

type formPage struct {
	Kind   Kind
	ID     string
	Input  Input
	Errors validation.Errors
}

func (h *Handler) columns() []datatable.Column[Lookup] {
	return []datatable.Column[Lookup]{
		{Key: "name", Header: "Name", Sortable: true, Value: func(l Lookup) string { return l.Name }},
		{Key: "description", Header: "Description", Hideable: true, Value: func(l Lookup) string { return l.Description }},
		{Key: "isActive", Header: "Status", Hideable: true, HTML: func(l Lookup) template.HTML { return pages.ActiveBadge(l.Active()) }},
	}
}

// List renders the table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "name", false)
	list := h.service.List(r.Context(), state.ListParams())
	opts := datatable.Options[Lookup]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  h.kind.BasePath(),
		RowID:     func(l Lookup) string { return l.ID.String() },
		Detail: func(l Lookup) template.HTML {
			return h.Partial("pages/lookups/list.html", "lookup-detail", map[string]any{"Kind": h.kind, "Item": l})
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list "+h.kind.Entity)
	}
	table := datatable.New(list.Items, h.columns(), state, opts)
	canManage := false
	if profile, ok := pages.Profile(r); ok {
		canManage = profile.Can(h.kind.ManagePerm)
	}
	h.Views.Render(w, r, http.StatusOK, "pages/lookups/list.html", h.kind.Plural, listPage{Kind: h.kind, Table: table.View(), CanManage: canManage})
}

// Form renders the create form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formPage{Kind: h.kind, Input: Input{IsActive: true}, Errors: validation.Errors{}})
}

// Create submits the create form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := inputFromForm(r)
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		errs := h.MutationFailed(r.Context(), err, "create "+h.kind.Entity, http.MethodPost)
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Kind: h.kind, Input: in, Errors: errs})
		return
	}
	entry := audit.Entry{Action: audit.ActionCreate, Entity: h.kind.Entity, Meta: map[string]string{"name": in.Name}}
	if created != nil {
		entry.EntityID = created.ID.String()
	}
	h.Done(w, r, h.kind.BasePath(), h.kind.Singular+" created successfully", entry)
}

// EditForm renders the edit form.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, formPage{Kind: h.kind, ID: id, Input: InputFrom(*item), Errors: validation.Errors{}})
}

// Update submits the edit form.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := pages.ID(r)
	in := inputFromForm(r)
	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		errs := h.MutationFailed(r.Context(), err, "update "+h.kind.Entity, http.MethodPatch)
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Kind: h.kind, ID: id, Input: in, Errors: errs})
		return
	}
	h.Done(w, r, h.kind.BasePath(), h.kind.Singular+" updated successfully",
		audit.Entry{Action: audit.ActionUpdate, Entity: h.kind.Entity, EntityID: id, Meta: map[string]string{"name": in.Name}})
}

// Delete removes an entry.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Failed(w, r, h.kind.BasePath(), err, "delete "+h.kind.Entity, http.MethodDelete)
		return
	}
	h.Done(w, r, h.kind.BasePath(), h.kind.Singular+" deleted successfully",
		audit.Entry{Action: audit.ActionDelete, Entity: h.kind.Entity, EntityID: id})
}

func (h *Handler) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		h.Views.NotFound(w, r)
		return
	}
	h.Failed(w, r, h.kind.BasePath(), err, "load "+h.kind.Entity, http.MethodGet)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data formPage) {
	title := "New " + lower(h.kind.Singular)
	if data.ID != "" {
		title = "Edit " + lower(h.kind.Singular)
	}
	h.Views.Render(w, r, status, "pages/lookups/form.html", title, data)
}

func inputFromForm(r *http.Request) Input {
	return Input{
		Name:        pages.Value(r, "name"),
		Description: pages.Value(r, "description"),
		IsActive:    pages.Checked(r, "isActive"),
	}
}

func lower(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
