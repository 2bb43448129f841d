package orders

import (
	"errors"
	"html/template"
		"net/http"
	"strconv"

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

// BasePath is where the sale pages are mounted.
const BasePath = "/sales"

const (
	actionAddLine     = "add-line"
	actionRecalculate = "recalculate"
	minLines          = 3
)

// Refs are the lists the sale form selects from.
type Refs struct {
	Catalog        salesshared.Catalog
	Customers      pages.OptionSource
	PaymentMethods pages.OptionSource
}

// Handler serves the sale pages.
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
	From      string
	To        string
	CanCreate bool
}

type detailView struct {
	Sale
	CSRF      string
	CanDelete bool
	PDF       bool
}

type formPage struct {
	Input          Input
	Lines          []salesshared.Line
	Totals         salesshared.Totals
	Errors         validation.Errors
	Customers      []view.Option
	PaymentMethods []view.Option
	Products       []view.Option
	Batches        []salesshared.BatchGroup

	prefill bool
}

func columns() []datatable.Column[Sale] {
	return []datatable.Column[Sale]{
		{Key: "invoiceNumber", Header: "Invoice", Sortable: true, Value: Sale.Reference},
		{Key: "saleDate", Header: "Date", Sortable: true, Value: func(s Sale) string { return s.SaleDate.String() }},
		{Key: "customer", Header: "Customer", Hideable: true, Value: Sale.CustomerName},
		{Key: "paymentMethod", Header: "Payment", Hideable: true, Hidden: true, Value: Sale.PaymentMethodName},
		{Key: "totalAmount", Header: "Total", Sortable: true, Align: "right", Value: func(s Sale) string { return view.Money(s.TotalAmount) }},
		{Key: "paidAmount", Header: "Paid", Hideable: true, Align: "right", Value: func(s Sale) string { return view.Money(s.PaidAmount) }},
		{Key: "balance", Header: "Balance", Hideable: true, Hidden: true, Align: "right", Value: func(s Sale) string { return view.Money(s.Balance()) }},
		{Key: "status", Header: "Status", Hideable: true, HTML: func(s Sale) template.HTML { return pages.Badge(s.Status) }},
	}
}

// List renders the sale table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "saleDate", true, "status", "startDate", "endDate")
	list := h.service.List(r.Context(), state.ListParams())

	profile, _ := pages.Profile(r)
	csrf := h.Views.CSRFToken(r)
	opts := datatable.Options[Sale]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  BasePath,
		RowID:     func(s Sale) string { return s.ID.String() },
		Detail: func(s Sale) template.HTML {
			return h.Partial("pages/sales/list.html", "sale-detail", detailView{
				Sale:      s,
				CSRF:      csrf,
				CanDelete: profile.Can(shared.PermSalesDelete),
				PDF:       h.PDF != nil && h.PDF.Configured(),
			})
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list sales")
	}
	h.Views.Render(w, r, http.StatusOK, "pages/sales/list.html", "Sales", listPage{
		Table:     datatable.New(list.Items, columns(), state, opts).View(),
		Status:    state.Filter("status"),
		From:      state.Filter("startDate"),
		To:        state.Filter("endDate"),
		CanCreate: profile.Can(shared.PermSalesCreate),
	})
}

// Form renders the new sale form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	in := NewInput(h.service.Today())
	h.renderForm(w, r, http.StatusOK, formPage{Input: in, Errors: validation.Errors{}})
}

// Create submits the sale form. The add-line and recalculate actions
// re-render the form without saving.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in, parseErrs := inputFromForm(r)
	switch r.PostFormValue("action") {
	case actionAddLine:
		h.renderForm(w, r, http.StatusOK, formPage{Input: in, Lines: salesshared.Padded(in.Lines, 1, 1), Errors: parseErrs, prefill: true})
		return
	case actionRecalculate:
		h.renderForm(w, r, http.StatusOK, formPage{Input: in, Errors: parseErrs, prefill: true})
		return
	}
	if !parseErrs.Empty() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: parseErrs.Merge(in.Validate())})
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: h.MutationFailed(r.Context(), err, "create sale", http.MethodPost)})
		return
	}
	entry := audit.Entry{Action: audit.ActionCreate, Entity: "sale", Meta: map[string]string{
		"total": in.Totals().Total.StringFixed(2),
		"items": strconv.Itoa(len(in.Lines)),
	}}
	if created != nil {
		entry.EntityID = created.ID.String()
		if created.InvoiceNumber != "" {
			entry.Meta["invoice"] = created.InvoiceNumber
		}
	}
	h.Done(w, r, BasePath, "Sale created successfully", entry)
}

// Delete removes a sale.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Failed(w, r, BasePath, err, "delete sale", http.MethodDelete)
		return
	}
	h.Done(w, r, BasePath, "Sale deleted successfully", audit.Entry{Action: audit.ActionDelete, Entity: "sale", EntityID: id})
}

// Voucher renders the printable invoice.
func (h *Handler) Voucher(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.load(w, r)
	if !ok {
		return
	}
	h.Views.RenderPrint(w, r, "pages/sales/voucher.html", "Invoice "+sale.Reference(), sale)
}

// VoucherPDF streams the invoice as a PDF document.
func (h *Handler) VoucherPDF(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.load(w, r)
	if !ok {
		return
	}
	h.ServePDF(w, r, BasePath, "pages/sales/voucher.html", "Invoice "+sale.Reference(), "invoice-"+sale.Reference()+".pdf", sale)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Sale, bool) {
	sale, err := h.service.Get(r.Context(), pages.ID(r))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.Views.NotFound(w, r)
			return nil, false
		}
		h.Failed(w, r, BasePath, err, "load sale", http.MethodGet)
		return nil, false
	}
	return sale, true
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data formPage) {
	var catalog []products.Product
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
	load(h.refs.Customers, &data.Customers)
	load(h.refs.PaymentMethods, &data.PaymentMethods)
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
		data.Errors.Add(validation.GeneralKey, h.LoadFailed(r.Context(), err, "load sale options"))
	}
	data.Products = salesshared.ProductOptions(catalog)
	data.Batches = salesshared.BatchGroups(catalog)

	if data.Lines == nil {
		data.Lines = salesshared.Padded(data.Input.Lines, 0, minLines)
	}
	if data.prefill {
		salesshared.FillPrices(data.Lines, catalog, salesshared.SellingPrice)
		data.Input.Lines = data.Lines
	}
	data.Totals = salesshared.Compute(data.Lines, data.Input.Discount)
	h.Views.Render(w, r, status, "pages/sales/form.html", "New sale", data)
}

func inputFromForm(r *http.Request) (Input, validation.Errors) {
	f := pages.NewForm(r)
	in := Input{
		CustomerID:      f.String("customerId"),
		PaymentMethodID: f.String("paymentMethodId"),
		SaleDate:        f.String("saleDate"),
		Discount:        f.Decimal("discount"),
		PaidAmount:      f.Decimal("paidAmount"),
		Notes:           f.String("notes"),
		Lines:           salesshared.ParseLines(f),
	}
	return in, f.Errs
}
