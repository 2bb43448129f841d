package view

import (
	"log/slog"
	"net/http"

	"github.com/medistock/medistock/internal/shared"
)

// Responder renders pages with the per-request layout data (CSRF token,
// queued toasts, signed-in profile, navigation).
type Responder struct {
	engine *Engine
	csrf   *shared.CSRFManager
	logger *slog.Logger
}

// NewResponder constructs a Responder.
func NewResponder(engine *Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{engine: engine, csrf: csrf, logger: logger}
}

// Engine exposes the underlying template engine.
func (rs *Responder) Engine() *Engine { return rs.engine }

// Page assembles TemplateData for r. Queued flashes are consumed.
func (rs *Responder) Page(r *http.Request, title string, data any) TemplateData {
	td := TemplateData{Title: title, CurrentPath: r.URL.Path, Data: data}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return td
	}
	if rs.csrf != nil {
		td.CSRFToken, _ = rs.csrf.EnsureToken(r.Context(), sess)
	}
	td.Flashes = sess.DrainFlashes()
	if profile, ok := sess.Profile(); ok && sess.Authenticated() {
		td.User = &profile
		td.Nav = Navigation(&profile, r.URL.Path)
	}
	return td
}

// Render writes page name inside the base layout.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if err := rs.engine.Render(w, status, name, rs.Page(r, title, data)); err != nil {
		rs.logger.Error("render template", slog.Any("error", err), slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// RenderPrint writes page name inside the print layout.
func (rs *Responder) RenderPrint(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	if err := rs.engine.RenderPrint(w, http.StatusOK, name, rs.Page(r, title, data)); err != nil {
		rs.logger.Error("render print template", slog.Any("error", err), slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Document renders page name inside the pdf layout and returns the HTML.
func (rs *Responder) Document(r *http.Request, name, title string, data any) (string, error) {
	td := TemplateData{Title: title, CurrentPath: r.URL.Path, Data: data}
	return rs.engine.RenderPDF(name, td)
}

// CSRFToken returns the session's CSRF token for forms rendered outside a
// page, such as drawer partials.
func (rs *Responder) CSRFToken(r *http.Request) string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || rs.csrf == nil {
		return ""
	}
	token, err := rs.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		rs.logger.Warn("ensure csrf token", slog.Any("error", err))
		return ""
	}
	return token
}

// RedirectWithFlash queues a toast and redirects with 303.
func (rs *Responder) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && message != "" {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Forbidden renders the permission page.
func (rs *Responder) Forbidden(w http.ResponseWriter, r *http.Request) {
	rs.Render(w, r, http.StatusForbidden, "pages/errors/forbidden.html", "Access denied", nil)
}

// NotFound renders the not-found page.
func (rs *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Render(w, r, http.StatusNotFound, "pages/errors/not_found.html", "Not found", nil)
}
