package quotations

import (
	"errors"
	"html/template"
	"net/http"

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

// BasePath is where the quotation pages are mounted.
const BasePath = "/quotations"

// salesPath is where converted quotations are shown.
const salesPath = "/sales"

// Refs are the lists the quotation form selects from.
type Refs struct {
	Catalog   salesshared.Catalog
	Customers pages.OptionSource
}

// Handler serves the quotation pages.
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
	Quotation
	CSRF       string
	CanConvert bool
	CanDelete  bool
	CanStatus  bool
}

type formPage struct {
	Input     Input
	Lines     []salesshared.Line
	Totals    salesshared.Totals
	Errors    validation.Errors
	Customers []view.Option
	Products  []view.Option

	prefill bool
}

func columns() []datatable.Column[Quotation] {
	return []datatable.Column[Quotation]{
		{Key: "quotationNumber", Header: "Quotation", Sortable: true, Value: Quotation.Reference},
		{Key: "quotationDate", Header: "Date", Sortable: true, Value: func(q Quotation) string { return q.QuotationDate.String() }},
		{Key: "validUntil", Header: "Valid until", Sortable: true, Hideable: true, Value: func(q Quotation) string { return q.ValidUntil.String() }},
		{Key: "customer", Header: "Customer", Value: Quotation.CustomerName},
		{Key: "totalAmount", Header: "Total", Sortable: true, Align: "right", Value: func(q Quotation) string { return view.Money(q.TotalAmount) }},
		{Key: "status", Header: "Status", Hideable: true, HTML: func(q Quotation) template.HTML { return pages.Badge(q.Status) }},
	}
}

// List renders the quotation table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "quotationDate", true, "status")
	list := h.service.List(r.Context(), state.ListParams())

	profile, _ := pages.Profile(r)
	csrf := h.Views.CSRFToken(r)
	opts := datatable.Options[Quotation]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  BasePath,
		RowID:     func(q Quotation) string { return q.ID.String() },
		Detail: func(q Quotation) template.HTML {
			return h.Partial("pages/quotations/list.html", "quotation-detail", detailView{
				Quotation:  q,
				CSRF:       csrf,
				CanConvert: q.Convertible() && profile.Can(shared.PermSalesCreate),
				CanDelete:  profile.Can(shared.PermQuotationsDelete),
				CanStatus:  profile.Can(shared.PermQuotationsCreate),
			})
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list quotations")
	}
	h.Views.Render(w, r, http.StatusOK, "pages/quotations/list.html", "Quotations", listPage{
		Table:     datatable.New(list.Items, columns(), state, opts).View(),
		Status:    state.Filter("status"),
		CanCreate: profile.Can(shared.PermQuotationsCreate),
	})
}

// Form renders the new quotation form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formPage{Input: NewInput(h.service.Today()), Errors: validation.Errors{}})
}

// Create submits the quotation form.
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
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: parseErrs.Merge(in.Validate())})
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Input: in, Errors: h.MutationFailed(r.Context(), err, "create quotation", http.MethodPost)})
		return
	}
	entry := audit.Entry{Action: audit.ActionCreate, Entity: "quotation", Meta: map[string]string{"total": in.Totals().Total.StringFixed(2)}}
	if created != nil {
		entry.EntityID = created.ID.String()
	}
	h.Done(w, r, BasePath, "Quotation created successfully", entry)
}

// Status moves a quotation to the submitted status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	status := pages.Value(r, "status")
	if err := h.service.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			h.Views.RedirectWithFlash(w, r, BasePath, shared.FlashError, "This quotation cannot be marked "+view.Humanize(status)+".")
			return
		}
		if errors.Is(err, shared.ErrNotFound) {
			h.Views.NotFound(w, r)
			return
		}
		h.Failed(w, r, BasePath, err, "update quotation status", http.MethodPatch)
		return
	}
	h.Done(w, r, BasePath, "Quotation marked "+view.Humanize(status),
		audit.Entry{Action: audit.ActionUpdate, Entity: "quotation", EntityID: id, Meta: map[string]string{"status": status}})
}

// Convert turns a quotation into a sale.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	saleID, err := h.service.Convert(r.Context(), id)
	if err != nil {
		h.Failed(w, r, BasePath, err, "convert quotation", http.MethodPost)
		return
	}
	location := salesPath
	if saleID != "" {
		location += "?row=" + saleID
	}
	h.Done(w, r, location, "Quotation converted to sale",
		audit.Entry{Action: audit.ActionConvert, Entity: "quotation", EntityID: id, Meta: map[string]string{"sale": saleID}})
}

// Delete removes a quotation.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pages.ID(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.Failed(w, r, BasePath, err, "delete quotation", http.MethodDelete)
		return
	}
	h.Done(w, r, BasePath, "Quotation deleted successfully", audit.Entry{Action: audit.ActionDelete, Entity: "quotation", EntityID: id})
}

// Print renders the printable quotation.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Get(r.Context(), pages.ID(r))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.Views.NotFound(w, r)
			return
		}
		h.Failed(w, r, BasePath, err, "load quotation", http.MethodGet)
		return
	}
	h.Views.RenderPrint(w, r, "pages/quotations/print.html", "Quotation "+q.Reference(), q)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data formPage) {
	var catalog []products.Product
	g, ctx := errgroup.WithContext(r.Context())
	if h.refs.Customers != nil {
		g.Go(func() error {
			refs, err := h.refs.Customers.Options(ctx)
			if err != nil {
				return err
			}
			data.Customers = pages.RefOptions(refs)
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
		data.Errors.Add(validation.GeneralKey, h.LoadFailed(r.Context(), err, "load quotation options"))
	}
	data.Products = salesshared.ProductOptions(catalog)
	if data.Lines == nil {
		data.Lines = salesshared.Padded(data.Input.Lines, 0, 3)
	}
	if data.prefill {
		salesshared.FillPrices(data.Lines, catalog, salesshared.SellingPrice)
		data.Input.Lines = data.Lines
	}
	data.Totals = salesshared.Compute(data.Lines, data.Input.Discount)
	h.Views.Render(w, r, status, "pages/quotations/form.html", "New quotation", data)
}

func inputFromForm(r *http.Request) (Input, validation.Errors) {
	f := pages.NewForm(r)
	in := Input{
		CustomerID:    f.String("customerId"),
		QuotationDate: f.String("quotationDate"),
		ValidUntil:    f.String("validUntil"),
		Discount:      f.Decimal("discount"),
		Notes:         f.String("notes"),
		Lines:         salesshared.ParseLines(f),
	}
	return in, f.Errs
}
