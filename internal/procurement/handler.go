package procurement

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/datatable"
	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

// BasePath is where the purchase pages are mounted.
const BasePath = "/procurement/purchases"

// Refs are the lists the purchase form selects from.
type Refs struct {
	Catalog   salesshared.Catalog
	Suppliers pages.OptionSource
}

// Handler serves the purchase pages.
type Handler struct {
	pages.Deps
	service *Service
	refs    Refs
}

// NewHandler constructs a Handler.
func NewHandler(deps pages.Deps, service *Service, refs Refs) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service, refs: refs}
}

type listPage struct {
	Table     datatable.View
	Status    string
	CanCreate bool
}

type detailView struct {
	Purchase
	CSRF       string
	CanReceive bool
	CanDelete  bool
	PDF        bool
}

type formPage struct {
	Input     Input
	Lines     []salesshared.Line
	Total     string
	Errors    validation.Errors
	Suppliers []view.Option
	Products  []view.Option

	prefill bool
}

func columns() []datatable.Column[Purchase] {
	return []datatable.Column[Purchase]{
		{Key: "referenceNumber", Header: "Reference", Sortable: true, Value: Purchase.Reference},
		{Key: "purchaseDate", Header: "Date", Sortable: true, Value: func(p Purchase) string { return p.PurchaseDate.String() }},
		{Key: "supplier", Header: "Supplier", Value: Purchase.SupplierName},
		{Key: "items", Header: "Lines", Hideable: true, Hidden: true, Align: "right", Value: func(p Purchase) string { return strconv.Itoa(len(p.Items)) }},
		{Key: "totalAmount", Header: "Total", Sortable: true, Align: "right", Value: func(p Purchase) string { return view.Money(p.TotalAmount) }},
		{Key: "balance", Header: "Balance", Hideable: true, Align: "right", Value: func(p Purchase) string { return view.Money(p.Balance()) }},
		{Key: "status", Header: "Status", Hideable: true, HTML: func(p Purchase) template.HTML { return pages.Badge(p.Status) }},
	}
}

// List renders the purchase table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "purchaseDate", true, "status", "supplierId")
	list := h.service.List(r.Context(), state.ListParams())

	profile, _ := pages.Profile(r)
	csrf := h.Views.CSRFToken(r)
	opts := datatable.Options[Purchase]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  BasePath,
		RowID:     func(p Purchase) string { return p.ID.String() },
		Detail: func(p Purchase) template.HTML {
			return h.Partial("pages/purchases/list.html", "purchase-detail", detailView{
				Purchase:   p,
				CSRF:       csrf,
				CanReceive: p.Receivable() && profile.Can(shared.PermPurchasesCreate),
				CanDelete:  profile.Can(shared.PermPurchasesDelete),
				PDF:        h.PDF != nil && h.PDF.Configured(),
			})
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list purchases")
	}
	h.Views.Render(w, r, http.StatusOK, "pages/purchases/list.html", "Purchases", listPage{
		Table:     datatable.New(list.Items, columns(), state, opts).View(),
		Status:    state.Filter("status"),
		CanCreate: profile.Can(shared.PermPurchasesCreate),
	})
}

// Form renders the new purchase form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formPage{Input: NewInput(h.service.Today()), Errors: validation.Errors{}})
}

// Create submits the purchase form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in, parseErrs := inputFromForm(r)
	switch r.PostFormValue("action") {
	case "add-line":
		h.renderForm(w, r, http.StatusOK, formPage{Input: in, Lines: salesshared.Padded(in.Lines, 1, 1), Errors: parseErrs, prefill: true})
		return
	case "recalculate":
		h.renderForm(w, r, http.StatusOK, formPage{Input: in, Errors: parseErrs, prefill: true})
		return
	}
	if !parseErrs.Empty() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: parseErrs.Merge(in.Validate(h.service.Today()))})
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: h.MutationFailed(r.Context(), err, "create purchase", http.MethodPost)})
		return
	}
	entry := audit.Entry{Action: audit.ActionCreate, Entity: "purchase", Meta: map[string]string{
		"supplier": in.SupplierID,
		"total":    in.Total().StringFixed(2),
	}}
	if created != nil {
		entry.EntityID = created.ID.String()
	}
	h.Done(w, r, BasePath, "Purchase created successfully", entry)
}

// Receive marks a purchase as received.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if err := h.service.Receive(r.Context(), id); err != nil {
		h.Failed(w, r, BasePath, err, "receive purchase", http.MethodPatch)
		return
	}
	h.Done(w, r, BasePath, "Purchase marked as received",
		audit.Entry{Action: audit.ActionUpdate, Entity: "purchase", EntityID: id, Meta: map[string]string{"status": StatusReceived}})
}

// Delete removes a purchase.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Failed(w, r, BasePath, err, "delete purchase", http.MethodDelete)
		return
	}
	h.Done(w, r, BasePath, "Purchase deleted successfully", audit.Entry{Action: audit.ActionDelete, Entity: "purchase", EntityID: id})
}

// Requisition renders the printable purchase requisition.
func (h *Handler) Requisition(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	h.Views.RenderPrint(w, r, "pages/purchases/requisition.html", "Requisition "+p.Reference(), p)
}

// RequisitionPDF streams the requisition as a PDF document.
func (h *Handler) RequisitionPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	h.ServePDF(w, r, BasePath, "pages/purchases/requisition.html", "Requisition "+p.Reference(), "requisition-"+p.Reference()+".pdf", p)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Purchase, bool) {
	p, err := h.service.Get(r.Context(), pages.ID(r))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.Views.NotFound(w, r)
			return nil, false
		}
		h.Failed(w, r, BasePath, err, "load purchase", http.MethodGet)
		return nil, false
	}
	return p, true
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data formPage) {
	var catalog []products.Product
	g, ctx := errgroup.WithContext(r.Context())
	if h.refs.Suppliers != nil {
		g.Go(func() error {
			refs, err := h.refs.Suppliers.Options(ctx)
			if err != nil {
				return err
			}
			data.Suppliers = pages.RefOptions(refs)
			return nil
		})
	}
	if h.refs.Catalog != nil {
		g.Go(func() error {
			items, err := h.refs.Catalog.Active(ctx)
			if err != nil {
				return err
			}
			catalog = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		data.Errors.Add(validation.GeneralKey, h.LoadFailed(r.Context(), err, "load purchase options"))
	}
	data.Products = salesshared.ProductOptions(catalog)
	if data.Lines == nil {
		data.Lines = salesshared.Padded(data.Input.Lines, 0, 3)
	}
	if data.prefill {
		salesshared.FillPrices(data.Lines, catalog, salesshared.PurchasePrice)
		data.Input.Lines = data.Lines
	}
	data.Total = view.Money(salesshared.Compute(data.Lines, decimal.Zero).Total)
	h.Views.Render(w, r, status, "pages/purchases/form.html", "New purchase", data)
}

func inputFromForm(r *http.Request) (Input, validation.Errors) {
	f := pages.NewForm(r)
	in := Input{
		SupplierID:   f.String("supplierId"),
		PurchaseDate: f.String("purchaseDate"),
		Status:       f.String("status"),
		PaidAmount:   f.Decimal("paidAmount"),
		Notes:        f.String("notes"),
		Lines:        salesshared.ParseLines(f),
	}
	return in, f.Errs
}
