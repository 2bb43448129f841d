package suppliers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/datatable"
	mdshared "github.com/medistock/medistock/internal/masterdata/shared"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

const basePath = "/suppliers"

// Handler serves the supplier pages.
type Handler struct {
	pages.Deps
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(deps pages.Deps, service *Service) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service}
}

type listPage struct {
	Screen mdshared.Screen
	Table  datatable.View
}

type formPage struct {
	Screen mdshared.Screen
	ID     string
	Input  mdshared.Party
	Types  []view.Option
	Errors validation.Errors
}

func (h *Handler) screen(r *http.Request) mdshared.Screen {
	s := mdshared.Screen{Singular: "Supplier", Plural: "Suppliers", BasePath: basePath, TypeField: typeField, ContactPerson: true}
	if profile, ok := pages.Profile(r); ok {
		s.CanCreate = profile.Can(shared.PermSuppliersCreate)
		s.CanEdit = profile.Can(shared.PermSuppliersEdit)
		s.CanDelete = profile.Can(shared.PermSuppliersDelete)
	}
	return s
}

func columns() []datatable.Column[Supplier] {
	return []datatable.Column[Supplier]{
		{Key: "name", Header: "Name", Sortable: true, Value: func(s Supplier) string { return s.Name }},
		{Key: "supplierType", Header: "Type", Sortable: true, Hideable: true, HTML: func(s Supplier) template.HTML { return pages.Badge(s.SupplierType) }},
		{Key: "contactPerson", Header: "Contact person", Hideable: true, Value: func(s Supplier) string { return s.ContactPerson }},
		{Key: "phone", Header: "Phone", Hideable: true, Value: func(s Supplier) string { return s.Phone }},
		{Key: "email", Header: "Email", Hideable: true, Hidden: true, Value: func(s Supplier) string { return s.Email }},
		{Key: "licenseExpiryDate", Header: "License expiry", Hideable: true, Hidden: true, Value: func(s Supplier) string { return view.FormatDate(s.LicenseExpiryDate) }},
		{Key: "isActive", Header: "Status", Hideable: true, HTML: func(s Supplier) template.HTML { return pages.ActiveBadge(s.Active()) }},
	}
}

// List renders the supplier table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "name", false, typeField)
	list := h.service.List(r.Context(), state.ListParams())
	screen := h.screen(r)
	opts := datatable.Options[Supplier]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  basePath,
		RowID:     func(s Supplier) string { return s.ID.String() },
		Detail: func(s Supplier) template.HTML {
			return h.Partial("pages/parties/list.html", "party-detail", map[string]any{"Screen": screen, "Item": s})
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list suppliers")
	}
	table := datatable.New(list.Items, columns(), state, opts)
	h.Views.Render(w, r, http.StatusOK, "pages/parties/list.html", "Suppliers", listPage{Screen: screen, Table: table.View()})
}

// Form renders the create form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "", mdshared.Party{Type: mdshared.TypeLicensed, IsActive: true}, validation.Errors{})
}

// Create submits the create form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := partyFromForm(r)
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, "", in, h.MutationFailed(r.Context(), err, "create supplier", http.MethodPost))
		return
	}
	entry := audit.Entry{Action: audit.ActionCreate, Entity: "supplier", Meta: map[string]string{"name": in.Name}}
	if created != nil {
		entry.EntityID = created.ID.String()
	}
	h.Done(w, r, basePath, "Supplier created successfully", entry)
}

// EditForm renders the edit form.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.Views.NotFound(w, r)
			return
		}
		h.Failed(w, r, basePath, err, "load supplier", http.MethodGet)
		return
	}
	h.renderForm(w, r, http.StatusOK, id, item.Form(), validation.Errors{})
}

// Update submits the edit form.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := pages.ID(r)
	in := partyFromForm(r)
	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, in, h.MutationFailed(r.Context(), err, "update supplier", http.MethodPatch))
		return
	}
	h.Done(w, r, basePath, "Supplier updated successfully",
		audit.Entry{Action: audit.ActionUpdate, Entity: "supplier", EntityID: id, Meta: map[string]string{"name": in.Name}})
}

// Delete removes a supplier.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Failed(w, r, basePath, err, "delete supplier", http.MethodDelete)
		return
	}
	h.Done(w, r, basePath, "Supplier deleted successfully", audit.Entry{Action: audit.ActionDelete, Entity: "supplier", EntityID: id})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id string, in mdshared.Party, errs validation.Errors) {
	title := "New supplier"
	if id != "" {
		title = "Edit supplier"
	}
	h.Views.Render(w, r, status, "pages/parties/form.html", title, formPage{
		Screen: h.screen(r),
		ID:     id,
		Input:  in,
		Types:  pages.Options(mdshared.Types(), func(t string) (string, string) { return t, view.Humanize(t) }),
		Errors: errs,
	})
}

func partyFromForm(r *http.Request) mdshared.Party {
	return mdshared.Party{
		Name:              pages.Value(r, "name"),
		Email:             pages.Value(r, "email"),
		Phone:             pages.Value(r, "phone"),
		Address:           pages.Value(r, "address"),
		ContactPerson:     pages.Value(r, "contactPerson"),
		Type:              pages.Value(r, typeField),
		TIN:               pages.Value(r, "tin"),
		LicenseNumber:     pages.Value(r, "licenseNumber"),
		LicenseIssueDate:  pages.Value(r, "licenseIssueDate"),
		LicenseExpiryDate: pages.Value(r, "licenseExpiryDate"),
		IsActive:          pages.Checked(r, "isActive"),
	}
}
