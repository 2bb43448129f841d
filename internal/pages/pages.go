// Package pages holds the plumbing shared by entity handlers: list loading,
// mutation outcomes, and form helpers.
package pages

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/datatable"
	"github.com/medistock/medistock/internal/feedback"
	"github.com/medistock/medistock/internal/platform/validation"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

// Invalidator drops cached aggregates after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// OptionSource lists the entries of a reference list.
type OptionSource interface {
	Options(ctx context.Context) ([]apiclient.Ref, error)
}

// Deps bundles what entity handlers need.
type Deps struct {
	Logger   *slog.Logger
	Views    *view.Responder
	RBAC     rbac.Middleware
	Audit    audit.Recorder
	Cache    Invalidator
	PDF      PDFConverter
	PageSize int
}

// WithDefaults fills optional dependencies.
func (d Deps) WithDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.PageSize <= 0 {
		d.PageSize = 10
	}
	return d
}

// State parses the table state of r with the handler's page size.
func (d Deps) State(r *http.Request, sort string, desc bool, filters ...string) datatable.State {
	defaults := datatable.State{PageSize: d.PageSize, Sort: sort, Desc: desc}
	st := datatable.ParseState(r.URL.Query(), defaults)
	for _, key := range filters {
		if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
			if st.Filters == nil {
				st.Filters = url.Values{}
			}
			st.Filters.Set(key, v)
		}
	}
	return st
}

// LoadFailed reports a failed read. 403s are not toasted; the message is
// returned for display in place of the content.
func (d Deps) LoadFailed(ctx context.Context, err error, operation string) string {
	return feedback.HandleError(ctx, err, feedback.Options{
		Operation:               operation,
		Method:                  http.MethodGet,
		SuppressForbiddenOnRead: true,
		Logger:                  d.Logger,
	})
}

// MutationFailed turns a failed mutation into form errors. Local validation
// errors are returned as they are; backend errors are toasted and shown as
// the general form error.
func (d Deps) MutationFailed(ctx context.Context, err error, operation, method string) validation.Errors {
	if errs, ok := validation.As(err); ok {
		return errs
	}
	msg := feedback.HandleError(ctx, err, feedback.Options{
		Operation: operation,
		Method:    method,
		Logger:    d.Logger,
	})
	return validation.Errors{validation.GeneralKey: msg}
}

// Done records the audit entry, drops cached aggregates, queues a success
// toast, and redirects to location.
func (d Deps) Done(w http.ResponseWriter, r *http.Request, location, message string, entry audit.Entry) {
	ctx := r.Context()
	if entry.Action != "" {
		d.Audit.Record(ctx, entry)
	}
	if d.Cache != nil {
		d.Cache.Invalidate(ctx)
	}
	feedback.HandleSuccess(ctx, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Failed toasts err and redirects to location. It serves actions without a
// form to re-render, such as delete buttons.
func (d Deps) Failed(w http.ResponseWriter, r *http.Request, location string, err error, operation, method string) {
	feedback.HandleError(r.Context(), err, feedback.Options{Operation: operation, Method: method, Logger: d.Logger})
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Partial renders block of page for the detail drawer, logging failures.
func (d Deps) Partial(page, block string, data any) template.HTML {
	out, err := d.Views.Engine().Partial(page, block, data)
	if err != nil {
		d.Logger.Error("render partial", slog.String("template", page), slog.String("block", block), slog.Any("error", err))
		return ""
	}
	return out
}

// ID returns the {id} route parameter.
func ID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

// Value returns a trimmed form value.
func Value(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

// Checked reports whether a checkbox was submitted.
func Checked(r *http.Request, key string) bool {
	switch strings.ToLower(r.PostFormValue(key)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// Options maps items to select options.
func Options[T any](items []T, fn func(T) (value, label string)) []view.Option {
	out := make([]view.Option, 0, len(items))
	for _, item := range items {
		value, label := fn(item)
		if value == "" {
			continue
		}
		out = append(out, view.Option{Value: value, Label: label})
	}
	return out
}

// RefOptions maps lookup references to select options.
func RefOptions(items []apiclient.Ref) []view.Option {
	return Options(items, func(r apiclient.Ref) (string, string) { return r.ID.String(), r.Name })
}

// Profile returns the signed-in profile of r.
func Profile(r *http.Request) (shared.Profile, bool) {
	return shared.ProfileFromContext(r.Context())
}

// ActiveBadge renders the active/inactive status cell.
func ActiveBadge(active bool) template.HTML {
	if active {
		return `<span class="badge badge-success">Active</span>`
	}
	return `<span class="badge badge-muted">Inactive</span>`
}

// Badge renders a backend status value as a badge.
func Badge(status string) template.HTML {
	if status == "" {
		return ""
	}
	return template.HTML(`<span class="badge ` + view.StatusClass(status) + `">` +
		template.HTMLEscapeString(view.Humanize(status)) + `</span>`)
}

// Link renders an escaped anchor.
func Link(href, text string) template.HTML {
	return template.HTML(`<a href="` + template.HTMLEscapeString(href) + `">` + template.HTMLEscapeString(text) + `</a>`)
}
