package products

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/datatable"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

// BasePath is where the product pages are mounted.
const BasePath = "/masterdata/products"

// Lookups are the reference lists the product form selects from.
type Lookups struct {
	Categories    pages.OptionSource
	Manufacturers pages.OptionSource
	Units         pages.OptionSource
}

// Handler serves the product pages.
type Handler struct {
	pages.Deps
	service *Service
	lookups Lookups
}

// NewHandler constructs a Handler.
func NewHandler(deps pages.Deps, service *Service, lookups Lookups) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service, lookups: lookups}
}

// MountRoutes registers the product pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAny(shared.PermProductsView))
		r.Get("/", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermProductsCreate))
		r.Get("/new", h.Form)
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermProductsEdit))
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermProductsDelete))
		r.Post("/{id}/delete", h.Delete)
	})
}

type listPage struct {
	Table      datatable.View
	Categories []view.Option
	Category   string
	Status     string
	CanCreate  bool
	CanImport  bool
}

type formPage struct {
	ID            string
	Input         Input
	Errors        validation.Errors
	Categories    []view.Option
	Manufacturers []view.Option
	Units         []view.Option
	CanDelete     bool
}

func columns() []datatable.Column[Product] {
	return []datatable.Column[Product]{
		{Key: "name", Header: "Name", Sortable: true, Value: func(p Product) string { return p.Name }},
		{Key: "genericName", Header: "Generic name", Hideable: true, Value: func(p Product) string { return p.GenericName }},
		{Key: "category", Header: "Category", Hideable: true, Value: Product.CategoryName},
		{Key: "manufacturer", Header: "Manufacturer", Hideable: true, Hidden: true, Value: Product.ManufacturerName},
		{Key: "uom", Header: "Unit", Hideable: true, Hidden: true, Value: Product.UOMName},
		{Key: "quantity", Header: "In stock", Sortable: true, Align: "right", HTML: func(p Product) template.HTML {
			qty := template.HTMLEscapeString(view.Number(p.Quantity))
			if p.LowStock() {
				return template.HTML(`<span class="badge badge-danger" title="At or below reorder level">` + qty + `</span>`)
			}
			return template.HTML(qty)
		}},
		{Key: "purchasePrice", Header: "Cost", Hideable: true, Hidden: true, Align: "right", Value: func(p Product) string { return view.Money(p.PurchasePrice) }},
		{Key: "sellingPrice", Header: "Price", Sortable: true, Hideable: true, Align: "right", Value: func(p Product) string { return view.Money(p.SellingPrice) }},
		{Key: "status", Header: "Status", Hideable: true, HTML: func(p Product) template.HTML { return pages.Badge(p.Status) }},
	}
}

// List renders the product table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "name", false, "categoryId", "status")
	var (
		list       apiclient.ListState[Product]
		categories []apiclient.Ref
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		list = h.service.List(ctx, state.ListParams())
		return nil
	})
	if h.lookups.Categories != nil {
		g.Go(func() error {
			refs, err := h.lookups.Categories.Options(ctx)
			if err != nil {
				h.Logger.Warn("load category filter", slog.Any("error", err))
				return nil
			}
			categories = refs
			return nil
		})
	}
	_ = g.Wait()

	opts := datatable.Options[Product]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  BasePath,
		RowID:     func(p Product) string { return p.ID.String() },
		Detail: func(p Product) template.HTML {
			return h.Partial("pages/products/list.html", "product-detail", p)
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list products")
	}
	page := listPage{
		Table:      datatable.New(list.Items, columns(), state, opts).View(),
		Categories: pages.RefOptions(categories),
		Category:   state.Filter("categoryId"),
		Status:     state.Filter("status"),
	}
	if profile, ok := pages.Profile(r); ok {
		page.CanCreate = profile.Can(shared.PermProductsCreate)
		page.CanImport = profile.Can(shared.PermProductsImport)
	}
	h.Views.Render(w, r, http.StatusOK, "pages/products/list.html", "Products", page)
}

// Form renders the create form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formPage{Input: Input{Status: StatusActive}, Errors: validation.Errors{}})
}

// Create submits the create form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in, parseErrs := inputFromForm(r, true)
	if !parseErrs.Empty() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: parseErrs.Merge(in.Normalize().Validate(h.service.now()))})
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: h.MutationFailed(r.Context(), err, "create product", http.MethodPost)})
		return
	}
	entry := audit.Entry{Action: audit.ActionCreate, Entity: "product", Meta: map[string]string{"name": in.Name}}
	if created != nil {
		entry.EntityID = created.ID.String()
	}
	h.Done(w, r, BasePath, "Product created successfully", entry)
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
		h.Failed(w, r, BasePath, err, "load product", http.MethodGet)
		return
	}
	h.renderForm(w, r, http.StatusOK, formPage{ID: id, Input: InputFrom(*item), Errors: validation.Errors{}})
}

// Update submits the edit form.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := pages.ID(r)
	in, parseErrs := inputFromForm(r, false)
	if !parseErrs.Empty() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{ID: id, Input: in, Errors: parseErrs.Merge(in.Normalize().Validate(h.service.now()))})
		return
	}
	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{ID: id, Input: in, Errors: h.MutationFailed(r.Context(), err, "update product", http.MethodPatch)})
		return
	}
	h.Done(w, r, BasePath, "Product updated successfully",
		audit.Entry{Action: audit.ActionUpdate, Entity: "product", EntityID: id, Meta: map[string]string{"name": in.Name}})
}

// Delete removes a product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Failed(w, r, BasePath, err, "delete product", http.MethodDelete)
		return
	}
	h.Done(w, r, BasePath, "Product deleted successfully", audit.Entry{Action: audit.ActionDelete, Entity: "product", EntityID: id})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data formPage) {
	g, ctx := errgroup.WithContext(r.Context())
	load := func(src pages.OptionSource, dst *[]view.Option) {
		if src == nil {
			return
		}
		g.Go(func() error {
			refs, err := src.Options(ctx)
			if err != nil {
				return err
			}
			*dst = pages.RefOptions(refs)
			return nil
		})
	}
	load(h.lookups.Categories, &data.Categories)
	load(h.lookups.Manufacturers, &data.Manufacturers)
	load(h.lookups.Units, &data.Units)
	if err := g.Wait(); err != nil {
		data.Errors.Add(validation.GeneralKey, h.LoadFailed(r.Context(), err, "load product options"))
	}
	if profile, ok := pages.Profile(r); ok {
		data.CanDelete = data.ID != "" && profile.Can(shared.PermProductsDelete)
	}
	title := "New product"
	if data.ID != "" {
		title = "Edit product"
	}
	h.Views.Render(w, r, status, "pages/products/form.html", title, data)
}

func inputFromForm(r *http.Request, withBatch bool) (Input, validation.Errors) {
	f := pages.NewForm(r)
	in := Input{
		Name:           f.String("name"),
		GenericName:    f.String("genericName"),
		Description:    f.String("description"),
		CategoryID:     f.String("categoryId"),
		ManufacturerID: f.String("manufacturerId"),
		UOMID:          f.String("uomId"),
		PurchasePrice:  f.Decimal("purchasePrice"),
		SellingPrice:   f.Decimal("sellingPrice"),
		ReorderLevel:   f.Int("reorderLevel"),
		Status:         f.String("status"),
	}
	if withBatch {
		in.Batch = BatchInput{
			BatchNumber:       f.String("batchNumber"),
			ManufacturingDate: f.String("manufacturingDate"),
			ExpiryDate:        f.String("expiryDate"),
			Quantity:          f.Decimal("batchQuantity"),
		}
	}
	return in, f.Errs
}
