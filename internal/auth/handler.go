package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/feedback"
	"github.com/medistock/medistock/internal/platform/validation"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	views    *view.Responder
	sessions *shared.SessionManager
	audit    audit.Recorder
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, views *view.Responder, sessions *shared.SessionManager, recorder audit.Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{
		logger:   logger,
		service:  service,
		views:    views,
		sessions: sessions,
		audit:    recorder,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors validation.Errors
	Next   string
}

type registerForm struct {
	FirstName       string `form:"firstName" validate:"required,max=100"`
	LastName        string `form:"lastName" validate:"max=100"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

type registerPageData struct {
	Form   registerForm
	Errors validation.Errors
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess.Authenticated() {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}
	data := loginPageData{Errors: validation.Errors{}, Next: safeNext(r.URL.Query().Get("next"))}
	h.views.Render(w, r, http.StatusOK, "pages/auth/login.html", "Sign in", data)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	next := safeNext(r.PostFormValue("next"))
	errs := validation.Struct(form)
	if errs.Empty() {
		session, err := h.service.SignIn(r.Context(), Credentials(form))
		switch {
		case err == nil:
			if err := h.establish(r, session); err != nil {
				h.logger.Error("store session", slog.Any("error", err))
				errs.Add(validation.GeneralKey, feedback.FallbackMessage)
				break
			}
			h.audit.Record(r.Context(), audit.Entry{Action: audit.ActionLogin, Entity: "session"})
			h.views.RedirectWithFlash(w, r, next, shared.FlashSuccess, "Welcome back, "+session.Profile.DisplayName())
			return
		case errors.Is(err, shared.ErrInvalidCredentials):
			errs.Add(validation.GeneralKey, "Invalid email or password")
		default:
			errs.Add(validation.GeneralKey, feedback.HandleError(r.Context(), err, feedback.Options{
				Operation: "sign in",
				Method:    http.MethodPost,
				Silent:    true,
				Logger:    h.logger,
			}))
		}
	}
	form.Password = ""
	h.views.Render(w, r, http.StatusUnprocessableEntity, "pages/auth/login.html", "Sign in", loginPageData{Form: form, Errors: errs, Next: next})
}

func (h *Handler) establish(r *http.Request, session *Session) error {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return errors.New("auth: session missing")
	}
	if err := sess.SetTokens(session.AccessToken, session.RefreshToken); err != nil {
		return err
	}
	sess.SetProfile(*session.Profile)
	// A fresh CSRF token is issued for the authenticated session.
	sess.Delete(shared.CSRFSessionKey)
	return nil
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "pages/auth/register.html", "Create account", registerPageData{Errors: validation.Errors{}})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		FirstName:       strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:        strings.TrimSpace(r.PostFormValue("lastName")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	errs := validation.Struct(form)
	if errs.Has("confirmPassword") {
		errs["confirmPassword"] = "Passwords do not match"
	}
	if errs.Empty() {
		err := h.service.SignUp(r.Context(), Registration{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
			Password:  form.Password,
		})
		if err == nil {
			h.views.RedirectWithFlash(w, r, "/auth/login", shared.FlashSuccess, "Account created. You can sign in now.")
			return
		}
		errs.Add(validation.GeneralKey, feedback.HandleError(r.Context(), err, feedback.Options{
			Operation: "sign up",
			Method:    http.MethodPost,
			Silent:    true,
			Logger:    h.logger,
		}))
	}
	form.Password, form.ConfirmPassword = "", ""
	h.views.Render(w, r, http.StatusUnprocessableEntity, "pages/auth/register.html", "Create account", registerPageData{Form: form, Errors: errs})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.Logout(r.Context(), sess.AccessToken()); err != nil {
			h.logger.Warn("backend logout", slog.Any("error", err))
		}
		h.audit.Record(r.Context(), audit.Entry{Action: audit.ActionLogout, Entity: "session"})
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.HasPrefix(next, "/auth/") {
		return "/"
	}
	return next
}

// ShowLoginForTest exposes showLogin for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes handleLogin for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
