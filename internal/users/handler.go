package users

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/datatable"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
)

// BasePath is where the user pages are mounted.
const BasePath = "/users"

// Handler manages user accounts.
type Handler struct {
	pages.Deps
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(deps pages.Deps, service *Service) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service}
}

type listPage struct {
	Table     datatable.View
	CanManage bool
}

type detailView struct {
	User
	CanManage bool
}

type formPage struct {
	ID     string
	Input  Input
	Roles  []rbac.Role
	Errors validation.Errors
}

func columns() []datatable.Column[User] {
	return []datatable.Column[User]{
		{Key: "firstName", Header: "Name", Sortable: true, Value: User.Name},
		{Key: "email", Header: "Email", Sortable: true, Value: func(u User) string { return u.Email }},
		{Key: "phone", Header: "Phone", Hideable: true, Hidden: true, Value: func(u User) string { return u.Phone }},
		{Key: "roles", Header: "Roles", Hideable: true, Value: func(u User) string { return strings.Join(u.RoleNames(), ", ") }},
		{Key: "isActive", Header: "Status", Hideable: true, HTML: func(u User) template.HTML { return pages.ActiveBadge(u.Active()) }},
	}
}

func canManage(r *http.Request) bool {
	profile, ok := pages.Profile(r)
	return ok && profile.Can(shared.PermUsersEdit)
}

// List renders the user table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "firstName", false, "isActive")
	list := h.service.List(r.Context(), state.ListParams())
	manage := canManage(r)
	opts := datatable.Options[User]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  BasePath,
		RowID:     func(u User) string { return u.ID.String() },
		Detail: func(u User) template.HTML {
			return h.Partial("pages/users/list.html", "user-detail", detailView{User: u, CanManage: manage})
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list users")
	}
	h.Views.Render(w, r, http.StatusOK, "pages/users/list.html", "Users", listPage{
		Table:     datatable.New(list.Items, columns(), state, opts).View(),
		CanManage: manage,
	})
}

// Form renders the create form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "", Input{IsActive: true}, validation.Errors{})
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
		in.Password = ""
		h.renderForm(w, r, http.StatusUnprocessableEntity, "", in, h.MutationFailed(r.Context(), err, "create user", http.MethodPost))
		return
	}
	entry := audit.Entry{Action: audit.ActionCreate, Entity: "user", Meta: map[string]string{"email": in.Email}}
	if created != nil {
		entry.EntityID = created.ID.String()
	}
	h.Done(w, r, BasePath, "User created successfully", entry)
}

// EditForm renders the edit form.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.Views.NotFound(w, r)
			return
		}
		h.Failed(w, r, BasePath, err, "load user", http.MethodGet)
		return
	}
	h.renderForm(w, r, http.StatusOK, id, InputFrom(*user), validation.Errors{})
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
		in.Password = ""
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, in, h.MutationFailed(r.Context(), err, "update user", http.MethodPatch))
		return
	}
	meta := map[string]string{"email": in.Email, "roles": strings.Join(in.RoleIDs, ",")}
	h.Done(w, r, BasePath, "User updated successfully", audit.Entry{Action: audit.ActionUpdate, Entity: "user", EntityID: id, Meta: meta})
}

// Delete removes an account. Users cannot delete themselves.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if profile, ok := pages.Profile(r); ok && profile.ID == id {
		h.Views.RedirectWithFlash(w, r, BasePath, shared.FlashError, "You cannot delete your own account.")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Failed(w, r, BasePath, err, "delete user", http.MethodDelete)
		return
	}
	h.Done(w, r, BasePath, "User deleted successfully", audit.Entry{Action: audit.ActionDelete, Entity: "user", EntityID: id})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id string, in Input, errs validation.Errors) {
	roles, err := h.service.Roles(r.Context())
	if err != nil {
		errs = errs.Merge(validation.Errors{validation.GeneralKey: h.LoadFailed(r.Context(), err, "load roles")})
	}
	title := "New user"
	if id != "" {
		title = "Edit user"
	}
	h.Views.Render(w, r, status, "pages/users/form.html", title, formPage{ID: id, Input: in, Roles: roles, Errors: errs})
}

func inputFromForm(r *http.Request) Input {
	f := pages.NewForm(r)
	return Input{
		FirstName: f.String("firstName"),
		LastName:  f.String("lastName"),
		Email:     f.String("email"),
		Phone:     f.String("phone"),
		Password:  r.PostFormValue("password"),
		RoleIDs:   f.Values("roleIds"),
		IsActive:  f.Bool("isActive"),
	}
}
