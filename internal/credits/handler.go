package credits

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/datatable"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

// BasePath is where the credit pages are mounted.
const BasePath = "/credits"

// Handler serves the credit pages.
type Handler struct {
	pages.Deps
	service        *Service
	paymentMethods pages.OptionSource
}

// NewHandler constructs a Handler.
func NewHandler(deps pages.Deps, service *Service, paymentMethods pages.OptionSource) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service, paymentMethods: paymentMethods}
}

type listPage struct {
	Table      datatable.View
	Summary    *Summary
	CreditType string
	Status     string
}

type detailView struct {
	Credit
	CanPay  bool
	Overdue bool
}

type payPage struct {
	Credit         *Credit
	Input          PaymentInput
	Errors         validation.Errors
	PaymentMethods []view.Option
}

func (h *Handler) columns() []datatable.Column[Credit] {
	today := h.service.Today()
	return []datatable.Column[Credit]{
		{Key: "document", Header: "Document", Value: Credit.DocumentLabel},
		{Key: "creditType", Header: "Type", Hideable: true, HTML: func(c Credit) template.HTML {
			if c.CreditType == TypePurchase {
				return `<span class="badge badge-muted">Payable</span>`
			}
			return `<span class="badge badge-muted">Receivable</span>`
		}},
		{Key: "party", Header: "Party", Value: Credit.Party},
		{Key: "dueDate", Header: "Due", Sortable: true, Hideable: true, HTML: func(c Credit) template.HTML {
			due := template.HTMLEscapeString(c.DueDate.String())
			if c.Overdue(today) {
				return template.HTML(`<span class="badge badge-danger" title="Overdue">` + due + `</span>`)
			}
			return template.HTML(due)
		}},
		{Key: "totalAmount", Header: "Total", Sortable: true, Hideable: true, Align: "right", Value: func(c Credit) string { return view.Money(c.TotalAmount) }},
		{Key: "paidAmount", Header: "Paid", Hideable: true, Hidden: true, Align: "right", Value: func(c Credit) string { return view.Money(c.PaidAmount) }},
		{Key: "balanceAmount", Header: "Balance", Sortable: true, Align: "right", Value: func(c Credit) string { return view.Money(c.Balance()) }},
		{Key: "status", Header: "Status", Hideable: true, HTML: func(c Credit) template.HTML { return pages.Badge(c.Status) }},
	}
}

// List renders the credit table with the receivable and payable totals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	state := h.State(r, "dueDate", false, "creditType", "status")
	creditType := state.Filter("creditType")

	var (
		list    apiclient.ListState[Credit]
		summary *Summary
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		list = h.service.List(ctx, state.ListParams())
		return nil
	})
	g.Go(func() error {
		s, err := h.service.Summary(ctx, creditType)
		if err != nil {
			h.Logger.Warn("load credit summary", slog.Any("error", err))
			return nil
		}
		summary = s
		return nil
	})
	_ = g.Wait()

	profile, _ := pages.Profile(r)
	today := h.service.Today()
	opts := datatable.Options[Credit]{
		PageCount: datatable.PageCountFor(list.Total, state.PageSize),
		Total:     list.Total,
		BasePath:  BasePath,
		RowID:     func(c Credit) string { return c.ID.String() },
		Detail: func(c Credit) template.HTML {
			return h.Partial("pages/credits/list.html", "credit-detail", detailView{
				Credit:  c,
				CanPay:  !c.Settled() && profile.Can(shared.PermCreditsPay),
				Overdue: c.Overdue(today),
			})
		},
	}
	if list.Err != nil {
		opts.Err = h.LoadFailed(r.Context(), list.Err, "list credits")
	}
	h.Views.Render(w, r, http.StatusOK, "pages/credits/list.html", "Credits", listPage{
		Table:      datatable.New(list.Items, h.columns(), state, opts).View(),
		Summary:    summary,
		CreditType: creditType,
		Status:     state.Filter("status"),
	})
}

// PayForm renders the payment form for one credit.
func (h *Handler) PayForm(w http.ResponseWriter, r *http.Request) {
	credit, ok := h.load(w, r)
	if !ok {
		return
	}
	if credit.Settled() {
		h.Views.RedirectWithFlash(w, r, h.detailPath(credit), shared.FlashInfo, "This credit is already settled.")
		return
	}
	h.renderPay(w, r, http.StatusOK, payPage{
		Credit: credit,
		Input:  NewPaymentInput(credit.Balance(), h.service.Today()),
		Errors: validation.Errors{},
	})
}

// Pay records a payment. The amount is checked against the current balance
// before anything is sent.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	credit, ok := h.load(w, r)
	if !ok {
		return
	}
	f := pages.NewForm(r)
	in := PaymentInput{
		Amount:          f.Decimal("amount"),
		PaymentDate:     f.String("paymentDate"),
		PaymentMethodID: f.String("paymentMethodId"),
		Reference:       f.String("reference"),
		Notes:           f.String("notes"),
	}
	if !f.Errs.Empty() {
		h.renderPay(w, r, http.StatusUnprocessableEntity, payPage{Credit: credit, Input: in, Errors: f.Errs.Merge(in.Validate(credit.Balance()))})
		return
	}
	if err := h.service.Pay(r.Context(), credit, in); err != nil {
		h.renderPay(w, r, http.StatusUnprocessableEntity, payPage{Credit: credit, Input: in, Errors: h.MutationFailed(r.Context(), err, "record payment", http.MethodPost)})
		return
	}
	h.Done(w, r, h.detailPath(credit), "Payment recorded successfully", audit.Entry{
		Action:   audit.ActionPay,
		Entity:   "credit",
		EntityID: credit.ID.String(),
		Meta:     map[string]string{"amount": in.Amount.StringFixed(2), "document": credit.DocumentLabel()},
	})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Credit, bool) {
	credit, err := h.service.Get(r.Context(), pages.ID(r))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.Views.NotFound(w, r)
			return nil, false
		}
		h.Failed(w, r, BasePath, err, "load credit", http.MethodGet)
		return nil, false
	}
	return credit, true
}

func (h *Handler) renderPay(w http.ResponseWriter, r *http.Request, status int, data payPage) {
	if h.paymentMethods != nil {
		refs, err := h.paymentMethods.Options(r.Context())
		if err != nil {
			h.Logger.Warn("load payment methods", slog.Any("error", err))
		}
		data.PaymentMethods = pages.RefOptions(refs)
	}
	h.Views.Render(w, r, status, "pages/credits/pay.html", "Record payment", data)
}

func (h *Handler) detailPath(c *Credit) string {
	return BasePath + "?row=" + c.ID.String()
}
